package helper

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine"
	"github.com/AntonStoeckl/library-loans-go/shell/config"
)

// GivenPlainPassword is the password of every fixture person.
const GivenPlainPassword = "correct horse battery staple"

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FakeNow is the wall clock of all fixtures: 2026-03-10 09:00 UTC.
func FakeNow() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func FakeToday() lending.Date {
	return lending.DateOf(FakeNow())
}

// FakeClock is a settable clock, safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *FakeClock) AdvanceDays(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.AddDate(0, 0, days)
}

// GivenFastHasher returns a bcrypt hasher with the minimum cost.
func GivenFastHasher(t testing.TB) credential.BcryptHasher {
	hasher, err := credential.NewBcryptHasher(credential.WithCost(bcrypt.MinCost))
	require.NoError(t, err, "error in arranging test data")

	return hasher
}

// NewSQLiteStore creates a migrated store on a fresh SQLite file in t.TempDir().
func NewSQLiteStore(t testing.TB, options ...sqlengine.Option) *sqlengine.Store {
	ctx := context.Background()

	db, err := config.SQLiteSQLDB(ctx, filepath.Join(t.TempDir(), "lending.db"))
	require.NoError(t, err, "error opening sqlite database in test setup")
	t.Cleanup(func() { _ = db.Close() })

	store, err := sqlengine.NewStoreFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))...)
	require.NoError(t, err, "error creating store in test setup")
	require.NoError(t, store.Migrate(ctx), "error migrating sqlite database in test setup")

	return store
}

func givenCredential(t testing.TB) credential.Credential {
	cred, err := credential.New(GivenFastHasher(t), GivenPlainPassword)
	require.NoError(t, err, "error in arranging test data")

	return cred
}

func insert(t testing.TB, store lending.Store, fn lending.TxFunc) {
	require.NoError(t, store.Transact(context.Background(), fn), "error in arranging test data")
}

// FixtureReader builds, but does not store, a reader registered on FakeToday.
func FixtureReader(t testing.TB, status lending.ReaderStatus, zone lending.Zone) lending.Person {
	id := GivenUniqueID(t)

	return lending.NewReader(
		id,
		"Reader "+id.String()[:8],
		"reader-"+id.String()+"@example.org",
		givenCredential(t),
		lending.ReaderProfile{
			Address:      "Main Street 1",
			RegisteredOn: FakeToday(),
			Status:       status,
			Zone:         zone,
		},
	)
}

func GivenReader(t testing.TB, store lending.Store, status lending.ReaderStatus, zone lending.Zone) lending.Person {
	reader := FixtureReader(t, status, zone)
	insert(t, store, func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertPerson(ctx, reader)
	})

	return reader
}

func GivenActiveReader(t testing.TB, store lending.Store) lending.Person {
	return GivenReader(t, store, lending.ReaderActive, lending.ZoneCentralLibrary)
}

func GivenLibrarian(t testing.TB, store lending.Store) lending.Person {
	id := GivenUniqueID(t)
	librarian := lending.NewLibrarian(
		id,
		"Librarian "+id.String()[:8],
		"librarian-"+id.String()+"@example.org",
		givenCredential(t),
		"EMP-"+id.String(),
	)

	insert(t, store, func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertPerson(ctx, librarian)
	})

	return librarian
}

func GivenBook(t testing.TB, store lending.Store, title string) lending.Material {
	book := lending.NewBook(GivenUniqueID(t), FakeToday(), "", lending.BookDetails{Title: title, PageCount: 320})
	insert(t, store, func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertMaterial(ctx, book)
	})

	return book
}

func GivenSpecialItem(t testing.TB, store lending.Store, description string) lending.Material {
	item := lending.NewSpecialItem(GivenUniqueID(t), FakeToday(), "City Museum", lending.SpecialItemDetails{
		Description: description,
		Weight:      2.5,
		Dimensions:  "30x20x10 cm",
	})
	insert(t, store, func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertMaterial(ctx, item)
	})

	return item
}

// GivenLoan stores a loan directly, bypassing the loan service checks.
func GivenLoan(
	t testing.TB,
	store lending.Store,
	readerID, librarianID, materialID uuid.UUID,
	requestedOn, estimatedReturnDate lending.Date,
	state lending.LoanState,
) lending.Loan {
	loan := lending.Loan{
		ID:                  GivenUniqueID(t),
		RequestedOn:         requestedOn,
		EstimatedReturnDate: estimatedReturnDate,
		State:               state,
		ReaderID:            readerID,
		LibrarianID:         librarianID,
		MaterialID:          materialID,
	}

	insert(t, store, func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertLoan(ctx, loan)
	})

	return loan
}
