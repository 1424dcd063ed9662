package lending

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

/***** LoanFilter *****/

type LoanOrder string

const (
	OrderByRequestDate         LoanOrder = "requested_on"
	OrderByEstimatedReturnDate LoanOrder = "estimated_return_on"
)

// LoanFilter selects loans. Criteria that were never set match everything;
// an id criterion that was set always applies, even to uuid.Nil.
// Results are always ordered by the filter's LoanOrder and then by loan id.
type LoanFilter struct {
	readerID    *uuid.UUID
	librarianID *uuid.UUID
	materialID  *uuid.UUID
	states      []LoanState
	dueBefore   Date
	zone        Zone
	order       LoanOrder
}

// ReaderID returns the reader criterion and whether it was set.
func (f LoanFilter) ReaderID() (uuid.UUID, bool)    { return idCriterion(f.readerID) }
func (f LoanFilter) LibrarianID() (uuid.UUID, bool) { return idCriterion(f.librarianID) }
func (f LoanFilter) MaterialID() (uuid.UUID, bool)  { return idCriterion(f.materialID) }
func (f LoanFilter) States() []LoanState            { return f.states }
func (f LoanFilter) DueBefore() Date                { return f.dueBefore }
func (f LoanFilter) Zone() Zone                     { return f.zone }

func idCriterion(id *uuid.UUID) (uuid.UUID, bool) {
	if id == nil {
		return uuid.Nil, false
	}

	return *id, true
}

func (f LoanFilter) Order() LoanOrder {
	if f.order == "" {
		return OrderByRequestDate
	}

	return f.order
}

/***** LoanFilterBuilder *****/

// LoanFilterBuilder builds a LoanFilter:
//
//	filter := lending.BuildLoanFilter().
//		InAnyStateOf(lending.LoanInProgress).
//		DueBefore(today).
//		OrderedByEstimatedReturnDate().
//		Finalize()
type LoanFilterBuilder struct {
	filter LoanFilter
}

func BuildLoanFilter() LoanFilterBuilder {
	return LoanFilterBuilder{}
}

func (b LoanFilterBuilder) ForReader(id uuid.UUID) LoanFilterBuilder {
	b.filter.readerID = &id
	return b
}

func (b LoanFilterBuilder) ForLibrarian(id uuid.UUID) LoanFilterBuilder {
	b.filter.librarianID = &id
	return b
}

func (b LoanFilterBuilder) ForMaterial(id uuid.UUID) LoanFilterBuilder {
	b.filter.materialID = &id
	return b
}

// InAnyStateOf restricts the filter to the given states.
//
// It sanitizes the input:
//   - removing empty states ("")
//   - sorting the states
//   - removing duplicate states
func (b LoanFilterBuilder) InAnyStateOf(state LoanState, states ...LoanState) LoanFilterBuilder {
	all := slices.Concat([]LoanState{state}, states)
	all = slices.DeleteFunc(all, func(s LoanState) bool { return s == "" })
	slices.Sort(all)
	b.filter.states = slices.Compact(all)

	return b
}

// DueBefore matches loans whose estimated return date is strictly before d.
func (b LoanFilterBuilder) DueBefore(d Date) LoanFilterBuilder {
	b.filter.dueBefore = d
	return b
}

// InZone matches loans whose reader is assigned to zone.
func (b LoanFilterBuilder) InZone(zone Zone) LoanFilterBuilder {
	b.filter.zone = zone
	return b
}

func (b LoanFilterBuilder) OrderedByEstimatedReturnDate() LoanFilterBuilder {
	b.filter.order = OrderByEstimatedReturnDate
	return b
}

func (b LoanFilterBuilder) Finalize() LoanFilter {
	return b.filter
}

/***** MaterialFilter *****/

// MaterialFilter selects materials. Text matching is a case-insensitive substring match
// on title, description, dimensions and donor.
// Results are ordered by label (title or description) and then by material id.
type MaterialFilter struct {
	kind       MaterialKind
	text       string
	intakeFrom Date
	intakeTo   Date
}

func (f MaterialFilter) Kind() MaterialKind { return f.kind }
func (f MaterialFilter) Text() string       { return f.text }
func (f MaterialFilter) IntakeFrom() Date   { return f.intakeFrom }
func (f MaterialFilter) IntakeTo() Date     { return f.intakeTo }

type MaterialFilterBuilder struct {
	filter MaterialFilter
}

func BuildMaterialFilter() MaterialFilterBuilder {
	return MaterialFilterBuilder{}
}

func (b MaterialFilterBuilder) OfKind(kind MaterialKind) MaterialFilterBuilder {
	b.filter.kind = kind
	return b
}

// Containing sets the search text, trimmed and lower-cased.
func (b MaterialFilterBuilder) Containing(text string) MaterialFilterBuilder {
	b.filter.text = strings.ToLower(strings.TrimSpace(text))
	return b
}

// IntakeBetween matches materials received within [from, to]; a zero bound is open.
func (b MaterialFilterBuilder) IntakeBetween(from, to Date) MaterialFilterBuilder {
	b.filter.intakeFrom = from
	b.filter.intakeTo = to

	return b
}

func (b MaterialFilterBuilder) Finalize() MaterialFilter {
	return b.filter
}

/***** PersonFilter *****/

// PersonFilter selects persons. Results are ordered by name and then by id.
type PersonFilter struct {
	kind   PersonKind
	status ReaderStatus
	zone   Zone
	text   string
}

func (f PersonFilter) Kind() PersonKind     { return f.kind }
func (f PersonFilter) Status() ReaderStatus { return f.status }
func (f PersonFilter) Zone() Zone           { return f.zone }
func (f PersonFilter) Text() string         { return f.text }

type PersonFilterBuilder struct {
	filter PersonFilter
}

func BuildPersonFilter() PersonFilterBuilder {
	return PersonFilterBuilder{}
}

func (b PersonFilterBuilder) OfKind(kind PersonKind) PersonFilterBuilder {
	b.filter.kind = kind
	return b
}

func (b PersonFilterBuilder) WithStatus(status ReaderStatus) PersonFilterBuilder {
	b.filter.status = status
	return b
}

func (b PersonFilterBuilder) InZone(zone Zone) PersonFilterBuilder {
	b.filter.zone = zone
	return b
}

// Containing matches name or email, case-insensitive.
func (b PersonFilterBuilder) Containing(text string) PersonFilterBuilder {
	b.filter.text = strings.ToLower(strings.TrimSpace(text))
	return b
}

func (b PersonFilterBuilder) Finalize() PersonFilter {
	return b.filter
}
