package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
	"github.com/AntonStoeckl/library-loans-go/shell"
)

var (
	ErrNilHasher = errors.New("hasher must not be nil")
	ErrNilClock  = errors.New("clock must not be nil")
)

// absentPersonPassword feeds the comparison made for unknown emails.
const absentPersonPassword = "no person has this credential"

// Service runs the identity operations against a lending.Store.
type Service struct {
	store         lending.Store
	hasher        credential.Hasher
	absent        credential.Credential
	clock         func() time.Time
	retryOptions  []shell.RetryOption
	observability shell.Observability
}

// Option configures a Service in NewService.
type Option func(*Service) error

// WithClock sets the clock that dates registrations. It must not be nil.
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

// NewService creates an identity Service. Store and hasher are required.
func NewService(store lending.Store, hasher credential.Hasher, options ...Option) (*Service, error) {
	if store == nil {
		return nil, lending.ErrNilStore
	}

	if hasher == nil {
		return nil, ErrNilHasher
	}

	s := &Service{store: store, hasher: hasher, clock: time.Now}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	absent, err := credential.New(hasher, absentPersonPassword)
	if err != nil {
		return nil, err
	}
	s.absent = absent

	return s, nil
}

// RegisterReader stores a new reader registered today.
func (s *Service) RegisterReader(ctx context.Context, command RegisterReaderCommand) (lending.Person, error) {
	status := command.Status
	if status == "" {
		status = lending.ReaderActive
	}

	profile := lending.ReaderProfile{
		Address:      command.Address,
		RegisteredOn: lending.DateOf(s.clock()),
		Status:       status,
		Zone:         command.Zone,
	}

	return s.register(ctx, OperationRegisterReader, command.Password, func(id uuid.UUID) lending.Person {
		return lending.NewReader(id, command.Name, command.Email, credential.Credential{}, profile)
	})
}

// RegisterLibrarian stores a new librarian. Email and employee number must be unique.
func (s *Service) RegisterLibrarian(ctx context.Context, command RegisterLibrarianCommand) (lending.Person, error) {
	return s.register(ctx, OperationRegisterLibrarian, command.Password, func(id uuid.UUID) lending.Person {
		return lending.NewLibrarian(id, command.Name, command.Email, credential.Credential{}, command.EmployeeNumber)
	})
}

// register validates the person before hashing, so invalid input never pays for bcrypt.
func (s *Service) register(
	ctx context.Context,
	operation string,
	password string,
	build func(id uuid.UUID) lending.Person,
) (lending.Person, error) {
	var person lending.Person

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		candidate := build(id)
		if err := candidate.Validate(); err != nil {
			return err
		}

		if candidate.Credential, err = credential.New(s.hasher, password); err != nil {
			return err
		}

		if err := s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			return tx.InsertPerson(ctx, candidate)
		}); err != nil {
			return err
		}

		person = candidate

		return nil
	})

	return person, err
}

// VerifyCredential reports whether plain matches the credential stored for email.
// An unknown email is a mismatch, not an error. It still costs one hash comparison,
// so timing does not tell known and unknown emails apart.
func (s *Service) VerifyCredential(ctx context.Context, email string, plain string) (bool, error) {
	var stored credential.Credential
	found := false

	err := shell.Execute(ctx, s.observability, OperationVerifyCredential, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			person, err := tx.GetPersonByEmail(ctx, email)
			if errors.Is(err, lending.ErrNotFound) {
				return nil
			}

			if err != nil {
				return err
			}

			stored = person.Credential
			found = true

			return nil
		})
	})
	if err != nil {
		return false, err
	}

	if !found {
		_ = s.absent.Verify(s.hasher, plain)
		return false, nil
	}

	return stored.Verify(s.hasher, plain), nil
}

// ChangeCredential replaces the credential of any person.
func (s *Service) ChangeCredential(ctx context.Context, id uuid.UUID, plain string) error {
	return shell.Execute(ctx, s.observability, OperationChangeCredential, s.retryOptions, func(ctx context.Context) error {
		cred, err := credential.New(s.hasher, plain)
		if err != nil {
			return err
		}

		return s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			person, err := tx.GetPerson(ctx, id)
			if err != nil {
				return err
			}

			person.Credential = cred

			return tx.UpdatePerson(ctx, person)
		})
	})
}

// ChangeReaderStatus sets the status of a reader; librarians are not found.
func (s *Service) ChangeReaderStatus(ctx context.Context, id uuid.UUID, status lending.ReaderStatus) (lending.Person, error) {
	return s.updateReader(ctx, OperationChangeReaderStatus, id, func(person lending.Person) (lending.Person, error) {
		return ChangeStatus(person, status)
	})
}

// ChangeReaderZone moves a reader to another zone.
func (s *Service) ChangeReaderZone(ctx context.Context, id uuid.UUID, zone lending.Zone) (lending.Person, error) {
	return s.updateReader(ctx, OperationChangeReaderZone, id, func(person lending.Person) (lending.Person, error) {
		return ChangeZone(person, zone)
	})
}

func (s *Service) updateReader(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	decide func(lending.Person) (lending.Person, error),
) (lending.Person, error) {
	var updated lending.Person

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			person, err := tx.GetPerson(ctx, id)
			if err != nil {
				return err
			}

			next, err := decide(person)
			if err != nil {
				return err
			}

			if err := tx.UpdatePerson(ctx, next); err != nil {
				return err
			}

			updated = next

			return nil
		})
	})

	return updated, err
}

// GetPerson fetches a reader or librarian by id.
func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (lending.Person, error) {
	var person lending.Person

	err := shell.Execute(ctx, s.observability, OperationGetPerson, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			person, err = tx.GetPerson(ctx, id)

			return err
		})
	})

	return person, err
}

// ListReaders returns readers ordered by name.
func (s *Service) ListReaders(ctx context.Context, query ReaderQuery) ([]lending.Person, error) {
	filter := lending.BuildPersonFilter().
		OfKind(lending.PersonKindReader).
		WithStatus(query.Status).
		InZone(query.Zone).
		Containing(query.Text).
		Finalize()

	return s.find(ctx, OperationListReaders, filter)
}

// ListLibrarians returns librarians ordered by name, optionally narrowed by text in name or email.
func (s *Service) ListLibrarians(ctx context.Context, text string) ([]lending.Person, error) {
	filter := lending.BuildPersonFilter().
		OfKind(lending.PersonKindLibrarian).
		Containing(text).
		Finalize()

	return s.find(ctx, OperationListLibrarians, filter)
}

func (s *Service) find(ctx context.Context, operation string, filter lending.PersonFilter) ([]lending.Person, error) {
	var persons []lending.Person

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			persons, err = tx.FindPersons(ctx, filter)

			return err
		})
	})

	return persons, err
}
