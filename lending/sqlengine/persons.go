package sqlengine

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

const (
	tablePersons       = "persons"
	colID              = "id"
	colKind            = "kind"
	colName            = "name"
	colEmail           = "email"
	colPasswordHash    = "password_hash"
	colAddress         = "address"
	colRegisteredOn    = "registered_on"
	colStatus          = "status"
	colZone            = "zone"
	colEmployeeNumber  = "employee_number"
	actionInsertPerson = "insert person"
	actionGetPerson    = "get person"
	actionUpdatePerson = "update person"
	actionFindPersons  = "find persons"
)

var personColumns = []any{
	colID, colKind, colName, colEmail, colPasswordHash,
	colAddress, colRegisteredOn, colStatus, colZone, colEmployeeNumber,
}

func personRecord(p lending.Person) goqu.Record {
	record := goqu.Record{
		colID:             p.ID,
		colKind:           string(p.Kind),
		colName:           p.Name,
		colEmail:          p.Email,
		colPasswordHash:   p.Credential,
		colAddress:        nil,
		colRegisteredOn:   nil,
		colStatus:         nil,
		colZone:           nil,
		colEmployeeNumber: nil,
	}

	if p.Reader != nil {
		record[colAddress] = p.Reader.Address
		record[colRegisteredOn] = p.Reader.RegisteredOn
		record[colStatus] = string(p.Reader.Status)
		record[colZone] = string(p.Reader.Zone)
	}

	if p.Librarian != nil {
		record[colEmployeeNumber] = p.Librarian.EmployeeNumber
	}

	return record
}

func scanPerson(rows adapters.DBRows) (lending.Person, error) {
	var (
		p              lending.Person
		kind           string
		address        sql.NullString
		registeredOn   lending.Date
		status         sql.NullString
		zone           sql.NullString
		employeeNumber sql.NullString
	)

	err := rows.Scan(
		&p.ID, &kind, &p.Name, &p.Email, &p.Credential,
		&address, &registeredOn, &status, &zone, &employeeNumber,
	)
	if err != nil {
		return lending.Person{}, err
	}

	p.Kind = lending.PersonKind(kind)

	switch p.Kind {
	case lending.PersonKindReader:
		p.Reader = &lending.ReaderProfile{
			Address:      address.String,
			RegisteredOn: registeredOn,
			Status:       lending.ReaderStatus(status.String),
			Zone:         lending.Zone(zone.String),
		}

	case lending.PersonKindLibrarian:
		p.Librarian = &lending.LibrarianProfile{EmployeeNumber: employeeNumber.String}
	}

	return p, nil
}

func (t *tx) InsertPerson(ctx context.Context, person lending.Person) error {
	insert := t.dialect().
		Insert(tablePersons).
		Rows(personRecord(person)).
		Prepared(true)

	_, err := t.exec(ctx, actionInsertPerson, insert)

	return err
}

func (t *tx) GetPerson(ctx context.Context, id uuid.UUID) (lending.Person, error) {
	return t.getPersonWhere(ctx, goqu.C(colID).Eq(id))
}

func (t *tx) GetPersonByEmail(ctx context.Context, email string) (lending.Person, error) {
	return t.getPersonWhere(ctx, goqu.C(colEmail).Eq(lending.NormalizeEmail(email)))
}

func (t *tx) getPersonWhere(ctx context.Context, where exp.Expression) (lending.Person, error) {
	selectStmt := t.dialect().
		From(tablePersons).
		Select(personColumns...).
		Where(where).
		Prepared(true)

	rows, err := t.query(ctx, actionGetPerson, selectStmt)
	if err != nil {
		return lending.Person{}, err
	}

	return first(collect(ctx, t, actionGetPerson, rows, scanPerson))
}

// UpdatePerson overwrites all mutable columns; the kind of a person never changes.
func (t *tx) UpdatePerson(ctx context.Context, person lending.Person) error {
	record := personRecord(person)
	delete(record, colID)
	delete(record, colKind)

	update := t.dialect().
		Update(tablePersons).
		Set(record).
		Where(goqu.C(colID).Eq(person.ID), goqu.C(colKind).Eq(string(person.Kind))).
		Prepared(true)

	rowsAffected, err := t.exec(ctx, actionUpdatePerson, update)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return lending.ErrNotFound
	}

	return nil
}

func (t *tx) FindPersons(ctx context.Context, filter lending.PersonFilter) ([]lending.Person, error) {
	selectStmt := t.dialect().
		From(tablePersons).
		Select(personColumns...).
		Order(goqu.C(colName).Asc(), goqu.C(colID).Asc()).
		Prepared(true)

	if filter.Kind() != "" {
		selectStmt = selectStmt.Where(goqu.C(colKind).Eq(string(filter.Kind())))
	}

	if filter.Status() != "" {
		selectStmt = selectStmt.Where(goqu.C(colStatus).Eq(string(filter.Status())))
	}

	if filter.Zone() != "" {
		selectStmt = selectStmt.Where(goqu.C(colZone).Eq(string(filter.Zone())))
	}

	if filter.Text() != "" {
		selectStmt = selectStmt.Where(t.containsText(filter.Text(), colName, colEmail))
	}

	rows, err := t.query(ctx, actionFindPersons, selectStmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, t, actionFindPersons, rows, scanPerson)
}
