package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/shell"
)

const (
	OperationAddBook        = "add_book"
	OperationAddSpecialItem = "add_special_item"
	OperationGetMaterial    = "get_material"
	OperationFindMaterials  = "find_materials"
	OperationListDonations  = "list_donations"
)

var ErrNilClock = errors.New("clock must not be nil")

// AddBookCommand adds a book. A zero IntakeDate means today, an empty Donor means Anonymous.
type AddBookCommand struct {
	Title      string       `json:"title"`
	PageCount  int          `json:"pageCount"`
	Donor      string       `json:"donor,omitempty"`
	IntakeDate lending.Date `json:"intakeDate,omitempty"`
}

// AddSpecialItemCommand adds a special item, with the same defaults as AddBookCommand.
type AddSpecialItemCommand struct {
	Description string       `json:"description"`
	Weight      float64      `json:"weight"`
	Dimensions  string       `json:"dimensions"`
	Donor       string       `json:"donor,omitempty"`
	IntakeDate  lending.Date `json:"intakeDate,omitempty"`
}

// Service runs the inventory operations against a lending.Store.
type Service struct {
	store         lending.Store
	clock         func() time.Time
	retryOptions  []shell.RetryOption
	observability shell.Observability
}

// Option configures a Service in NewService.
type Option func(*Service) error

// WithClock sets the clock that supplies the default intake date. It must not be nil.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithRetryOptions tunes the retry on concurrency conflicts.
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = options
		return nil
	}
}

// WithObservability sets the logger, metrics and tracing collaborators of every operation.
func WithObservability(observability shell.Observability) Option {
	return func(s *Service) error {
		s.observability = observability
		return nil
	}
}

// NewService creates an inventory Service on store.
func NewService(store lending.Store, options ...Option) (*Service, error) {
	if store == nil {
		return nil, lending.ErrNilStore
	}

	s := &Service{store: store, clock: time.Now}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// AddBook validates and stores a donated book.
func (s *Service) AddBook(ctx context.Context, command AddBookCommand) (lending.Material, error) {
	return s.add(ctx, OperationAddBook, func(id uuid.UUID) lending.Material {
		return lending.NewBook(id, s.intakeDateOr(command.IntakeDate), command.Donor, lending.BookDetails{
			Title:     command.Title,
			PageCount: command.PageCount,
		})
	})
}

// AddSpecialItem validates and stores a donated special item.
func (s *Service) AddSpecialItem(ctx context.Context, command AddSpecialItemCommand) (lending.Material, error) {
	return s.add(ctx, OperationAddSpecialItem, func(id uuid.UUID) lending.Material {
		return lending.NewSpecialItem(id, s.intakeDateOr(command.IntakeDate), command.Donor, lending.SpecialItemDetails{
			Description: command.Description,
			Weight:      command.Weight,
			Dimensions:  command.Dimensions,
		})
	})
}

func (s *Service) intakeDateOr(date lending.Date) lending.Date {
	if date.IsZero() {
		return lending.DateOf(s.clock())
	}

	return date
}

func (s *Service) add(ctx context.Context, operation string, build func(uuid.UUID) lending.Material) (lending.Material, error) {
	var material lending.Material

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		candidate := build(id)
		if err := candidate.Validate(); err != nil {
			return err
		}

		if err := s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			return tx.InsertMaterial(ctx, candidate)
		}); err != nil {
			return err
		}

		material = candidate

		return nil
	})

	return material, err
}

// GetMaterial fetches a material by id.
func (s *Service) GetMaterial(ctx context.Context, id uuid.UUID) (lending.Material, error) {
	var material lending.Material

	err := shell.Execute(ctx, s.observability, OperationGetMaterial, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			material, err = tx.GetMaterial(ctx, id)

			return err
		})
	})

	return material, err
}

// FindMaterials returns the matching materials ordered by label, then id.
func (s *Service) FindMaterials(ctx context.Context, filter lending.MaterialFilter) ([]lending.Material, error) {
	return s.find(ctx, OperationFindMaterials, filter)
}

// ListDonations returns the materials taken in between from and to, both inclusive.
func (s *Service) ListDonations(ctx context.Context, from, to lending.Date) ([]lending.Material, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("%w: donation range %s..%s", lending.ErrInvalidDate, from, to)
	}

	return s.find(ctx, OperationListDonations, lending.BuildMaterialFilter().IntakeBetween(from, to).Finalize())
}

func (s *Service) find(ctx context.Context, operation string, filter lending.MaterialFilter) ([]lending.Material, error) {
	var materials []lending.Material

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			materials, err = tx.FindMaterials(ctx, filter)

			return err
		})
	})

	return materials, err
}
