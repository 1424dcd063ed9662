package sqlengine

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

const (
	tableMaterials       = "materials"
	colIntakeDate        = "intake_date"
	colDonor             = "donor"
	colTitle             = "title"
	colPageCount         = "page_count"
	colDescription       = "description"
	colWeight            = "weight"
	colDimensions        = "dimensions"
	actionInsertMaterial = "insert material"
	actionGetMaterial    = "get material"
	actionFindMaterials  = "find materials"
)

var materialColumns = []any{
	colID, colKind, colIntakeDate, colDonor,
	colTitle, colPageCount, colDescription, colWeight, colDimensions,
}

func materialRecord(m lending.Material) goqu.Record {
	record := goqu.Record{
		colID:          m.ID,
		colKind:        string(m.Kind),
		colIntakeDate:  m.IntakeDate,
		colDonor:       m.Donor,
		colTitle:       nil,
		colPageCount:   nil,
		colDescription: nil,
		colWeight:      nil,
		colDimensions:  nil,
	}

	if m.Book != nil {
		record[colTitle] = m.Book.Title
		record[colPageCount] = m.Book.PageCount
	}

	if m.SpecialItem != nil {
		record[colDescription] = m.SpecialItem.Description
		record[colWeight] = m.SpecialItem.Weight
		record[colDimensions] = m.SpecialItem.Dimensions
	}

	return record
}

func scanMaterial(rows adapters.DBRows) (lending.Material, error) {
	var (
		m           lending.Material
		kind        string
		title       sql.NullString
		pageCount   sql.NullInt64
		description sql.NullString
		weight      sql.NullFloat64
		dimensions  sql.NullString
	)

	err := rows.Scan(
		&m.ID, &kind, &m.IntakeDate, &m.Donor,
		&title, &pageCount, &description, &weight, &dimensions,
	)
	if err != nil {
		return lending.Material{}, err
	}

	m.Kind = lending.MaterialKind(kind)

	switch m.Kind {
	case lending.MaterialKindBook:
		m.Book = &lending.BookDetails{
			Title:     title.String,
			PageCount: int(pageCount.Int64),
		}

	case lending.MaterialKindSpecialItem:
		m.SpecialItem = &lending.SpecialItemDetails{
			Description: description.String,
			Weight:      weight.Float64,
			Dimensions:  dimensions.String,
		}
	}

	return m, nil
}

func (t *tx) InsertMaterial(ctx context.Context, material lending.Material) error {
	insert := t.dialect().
		Insert(tableMaterials).
		Rows(materialRecord(material)).
		Prepared(true)

	_, err := t.exec(ctx, actionInsertMaterial, insert)

	return err
}

func (t *tx) GetMaterial(ctx context.Context, id uuid.UUID) (lending.Material, error) {
	selectStmt := t.dialect().
		From(tableMaterials).
		Select(materialColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)

	rows, err := t.query(ctx, actionGetMaterial, selectStmt)
	if err != nil {
		return lending.Material{}, err
	}

	return first(collect(ctx, t, actionGetMaterial, rows, scanMaterial))
}

func (t *tx) FindMaterials(ctx context.Context, filter lending.MaterialFilter) ([]lending.Material, error) {
	selectStmt := t.dialect().
		From(tableMaterials).
		Select(materialColumns...).
		Order(goqu.COALESCE(goqu.C(colTitle), goqu.C(colDescription)).Asc(), goqu.C(colID).Asc()).
		Prepared(true)

	if filter.Kind() != "" {
		selectStmt = selectStmt.Where(goqu.C(colKind).Eq(string(filter.Kind())))
	}

	if filter.Text() != "" {
		selectStmt = selectStmt.Where(
			t.containsText(filter.Text(), colTitle, colDescription, colDimensions, colDonor),
		)
	}

	if !filter.IntakeFrom().IsZero() {
		selectStmt = selectStmt.Where(goqu.C(colIntakeDate).Gte(filter.IntakeFrom()))
	}

	if !filter.IntakeTo().IsZero() {
		selectStmt = selectStmt.Where(goqu.C(colIntakeDate).Lte(filter.IntakeTo()))
	}

	rows, err := t.query(ctx, actionFindMaterials, selectStmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, t, actionFindMaterials, rows, scanMaterial)
}
