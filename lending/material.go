package lending

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type MaterialKind string

const (
	MaterialKindBook        MaterialKind = "BOOK"
	MaterialKindSpecialItem MaterialKind = "SPECIAL_ITEM"
)

func ParseMaterialKind(s string) (MaterialKind, error) {
	switch kind := MaterialKind(strings.ToUpper(strings.TrimSpace(s))); kind {
	case MaterialKindBook, MaterialKindSpecialItem:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown material kind %q", ErrValidation, s)
	}
}

type BookDetails struct {
	Title     string `json:"title" validate:"notblank"`
	PageCount int    `json:"pageCount" validate:"gt=0"`
}

type SpecialItemDetails struct {
	Description string  `json:"description" validate:"notblank"`
	Weight      float64 `json:"weight" validate:"gt=0"`
	Dimensions  string  `json:"dimensions" validate:"notblank"`
}

// Material is a single donated physical unit, a book or a special item.
// Exactly one of Book and SpecialItem is set, matching Kind.
type Material struct {
	ID          uuid.UUID           `json:"id"`
	Kind        MaterialKind        `json:"kind"`
	IntakeDate  Date                `json:"intakeDate"`
	Donor       string              `json:"donor"`
	Book        *BookDetails        `json:"book,omitempty"`
	SpecialItem *SpecialItemDetails `json:"specialItem,omitempty"`
}

func NewBook(id uuid.UUID, intakeDate Date, donor string, details BookDetails) Material {
	details.Title = strings.TrimSpace(details.Title)

	return Material{
		ID:         id,
		Kind:       MaterialKindBook,
		IntakeDate: intakeDate,
		Donor:      donorOrAnonymous(donor),
		Book:       &details,
	}
}

func NewSpecialItem(id uuid.UUID, intakeDate Date, donor string, details SpecialItemDetails) Material {
	details.Description = strings.TrimSpace(details.Description)
	details.Dimensions = strings.TrimSpace(details.Dimensions)

	return Material{
		ID:          id,
		Kind:        MaterialKindSpecialItem,
		IntakeDate:  intakeDate,
		Donor:       donorOrAnonymous(donor),
		SpecialItem: &details,
	}
}

func donorOrAnonymous(donor string) string {
	if donor = strings.TrimSpace(donor); donor == "" {
		return Anonymous
	}

	return donor
}

// Label is the descriptive text used for display and ordering:
// the title of a book, the description of a special item.
func (m Material) Label() string {
	switch {
	case m.Book != nil:
		return m.Book.Title
	case m.SpecialItem != nil:
		return m.SpecialItem.Description
	default:
		return ""
	}
}

func (m Material) Validate() error {
	if m.IntakeDate.IsZero() {
		return fmt.Errorf("%w: intake date is required", ErrInvalidDate)
	}

	switch m.Kind {
	case MaterialKindBook:
		if m.Book == nil || m.SpecialItem != nil {
			return fmt.Errorf("%w: book requires exactly book details", ErrValidation)
		}

		return validateStruct(m.Book)

	case MaterialKindSpecialItem:
		if m.SpecialItem == nil || m.Book != nil {
			return fmt.Errorf("%w: special item requires exactly special item details", ErrValidation)
		}

		return validateStruct(m.SpecialItem)

	default:
		return fmt.Errorf("%w: unknown material kind %q", ErrValidation, m.Kind)
	}
}
