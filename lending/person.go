package lending

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending/credential"
)

type PersonKind string

const (
	PersonKindReader    PersonKind = "READER"
	PersonKindLibrarian PersonKind = "LIBRARIAN"
)

type ReaderStatus string

const (
	ReaderActive    ReaderStatus = "ACTIVE"
	ReaderSuspended ReaderStatus = "SUSPENDED"
	ReaderInactive  ReaderStatus = "INACTIVE"
)

// ReaderStatuses lists all statuses in display order.
var ReaderStatuses = []ReaderStatus{ReaderActive, ReaderSuspended, ReaderInactive}

// ParseReaderStatus accepts any letter case.
func ParseReaderStatus(s string) (ReaderStatus, error) {
	status := ReaderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ReaderStatuses {
		if status == known {
			return status, nil
		}
	}

	return "", fmt.Errorf("%w: unknown reader status %q", ErrValidation, s)
}

// CanBorrow reports whether a reader in this status may request loans.
// Only ACTIVE readers may borrow; SUSPENDED and INACTIVE are blocked.
func (s ReaderStatus) CanBorrow() bool {
	return s == ReaderActive
}

// Zone is the library branch a reader is assigned to.
type Zone string

const (
	ZoneCentralLibrary   Zone = "CENTRAL_LIBRARY"
	ZoneEastBranch       Zone = "EAST_BRANCH"
	ZoneWestBranch       Zone = "WEST_BRANCH"
	ZoneChildrensLibrary Zone = "CHILDRENS_LIBRARY"
	ZoneGeneralArchive   Zone = "GENERAL_ARCHIVE"
)

var Zones = []Zone{ZoneCentralLibrary, ZoneEastBranch, ZoneWestBranch, ZoneChildrensLibrary, ZoneGeneralArchive}

func ParseZone(s string) (Zone, error) {
	zone := Zone(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Zones {
		if zone == known {
			return zone, nil
		}
	}

	return "", fmt.Errorf("%w: unknown zone %q", ErrValidation, s)
}

// ReaderProfile holds the reader-specific part of a Person.
type ReaderProfile struct {
	Address      string       `json:"address" validate:"notblank"`
	RegisteredOn Date         `json:"registeredOn"`
	Status       ReaderStatus `json:"status" validate:"oneof=ACTIVE SUSPENDED INACTIVE"`
	Zone         Zone         `json:"zone" validate:"oneof=CENTRAL_LIBRARY EAST_BRANCH WEST_BRANCH CHILDRENS_LIBRARY GENERAL_ARCHIVE"`
}

// LibrarianProfile holds the librarian-specific part of a Person.
type LibrarianProfile struct {
	EmployeeNumber string `json:"employeeNumber" validate:"notblank"`
}

// Person is a reader or a librarian. Exactly one of Reader and Librarian is set,
// matching Kind.
type Person struct {
	ID         uuid.UUID             `json:"id"`
	Kind       PersonKind            `json:"kind"`
	Name       string                `json:"name" validate:"notblank"`
	Email      string                `json:"email" validate:"required,email"`
	Credential credential.Credential `json:"-"`
	Reader     *ReaderProfile        `json:"reader,omitempty"`
	Librarian  *LibrarianProfile     `json:"librarian,omitempty"`
}

// NewReader builds a reader Person. Email is normalized.
func NewReader(id uuid.UUID, name, email string, cred credential.Credential, profile ReaderProfile) Person {
	return Person{
		ID:         id,
		Kind:       PersonKindReader,
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
		Credential: cred,
		Reader:     &profile,
	}
}

// NewLibrarian builds a librarian Person. Email is normalized.
func NewLibrarian(id uuid.UUID, name, email string, cred credential.Credential, employeeNumber string) Person {
	return Person{
		ID:         id,
		Kind:       PersonKindLibrarian,
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
		Credential: cred,
		Librarian:  &LibrarianProfile{EmployeeNumber: strings.TrimSpace(employeeNumber)},
	}
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p Person) IsReader() bool {
	return p.Kind == PersonKindReader && p.Reader != nil
}

func (p Person) IsLibrarian() bool {
	return p.Kind == PersonKindLibrarian && p.Librarian != nil
}

// Validate checks the shared core and the variant matching Kind.
func (p Person) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}

	switch p.Kind {
	case PersonKindReader:
		if p.Reader == nil || p.Librarian != nil {
			return fmt.Errorf("%w: reader requires exactly a reader profile", ErrValidation)
		}

		return validateStruct(p.Reader)

	case PersonKindLibrarian:
		if p.Librarian == nil || p.Reader != nil {
			return fmt.Errorf("%w: librarian requires exactly a librarian profile", ErrValidation)
		}

		return validateStruct(p.Librarian)

	default:
		return fmt.Errorf("%w: unknown person kind %q", ErrValidation, p.Kind)
	}
}
