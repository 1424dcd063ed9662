package sqlengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper"
)

func Test_InsertPerson_When_ReaderIsStored_It_RoundTrips(t *testing.T) {
	// setup
	ctx := context.Background()
	store := helper.NewSQLiteStore(t)
	reader := helper.GivenReader(t, store, lending.ReaderSuspended, lending.ZoneChildrensLibrary)

	// act
	var byID, byEmail lending.Person
	err := store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
		var err error
		if byID, err = tx.GetPerson(ctx, reader.ID); err != nil {
			return err
		}

		byEmail, err = tx.GetPersonByEmail(ctx, "  "+reader.Email+" ")

		return err
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, reader.Reader, byID.Reader)
	assert.Nil(t, byID.Librarian)
	assert.Equal(t, reader.ID, byEmail.ID)
	assert.True(t, byID.Credential.Verify(helper.GivenFastHasher(t), helper.GivenPlainPassword))
}

func Test_InsertPerson_When_LibrarianIsStored_It_RoundTrips(t *testing.T) {
	// setup
	store := helper.NewSQLiteStore(t)
	librarian := helper.GivenLibrarian(t, store)

	// act
	var stored lending.Person
	err := store.View(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		var err error
		stored, err = tx.GetPerson(ctx, librarian.ID)
		return err
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, librarian.Librarian, stored.Librarian)
	assert.Nil(t, stored.Reader)
}

func Test_InsertPerson_When_EmailExists(t *testing.T) {
	// setup
	store := helper.NewSQLiteStore(t)
	existing := helper.GivenActiveReader(t, store)

	// arrange
	duplicate := helper.FixtureReader(t, lending.ReaderActive, lending.ZoneEastBranch)
	duplicate.Email = existing.Email

	// act
	err := store.Transact(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertPerson(ctx, duplicate)
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrDuplicateEmail)
}

func Test_InsertPerson_When_EmployeeNumberExists(t *testing.T) {
	// setup
	store := helper.NewSQLiteStore(t)
	existing := helper.GivenLibrarian(t, store)

	// arrange
	duplicate := lending.NewLibrarian(helper.GivenUniqueID(t), "Twin", "twin@example.org", existing.Credential,
		existing.Librarian.EmployeeNumber)

	// act
	err := store.Transact(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.InsertPerson(ctx, duplicate)
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrDuplicateEmployeeNumber)
}

func Test_GetPerson_When_PersonDoesNotExist(t *testing.T) {
	// setup
	store := helper.NewSQLiteStore(t)

	// act
	err := store.View(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		_, err := tx.GetPerson(ctx, helper.GivenUniqueID(t))
		return err
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_UpdatePerson_When_PersonDoesNotExist(t *testing.T) {
	// setup
	store := helper.NewSQLiteStore(t)
	ghost := helper.FixtureReader(t, lending.ReaderActive, lending.ZoneEastBranch)

	// act
	err := store.Transact(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.UpdatePerson(ctx, ghost)
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_FindPersons_When_Filtering(t *testing.T) {
	// setup
	ctx := context.Background()
	store := helper.NewSQLiteStore(t)

	// arrange
	alice := helper.FixtureReader(t, lending.ReaderActive, lending.ZoneEastBranch)
	alice.Name = "Alice Archer"
	bob := helper.FixtureReader(t, lending.ReaderInactive, lending.ZoneEastBranch)
	bob.Name = "Bob Baker"
	carol := helper.FixtureReader(t, lending.ReaderActive, lending.ZoneWestBranch)
	carol.Name = "Carol Archer"

	require.NoError(t, store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
		for _, p := range []lending.Person{bob, carol, alice} {
			if err := tx.InsertPerson(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))
	helper.GivenLibrarian(t, store)

	find := func(filter lending.PersonFilter) []string {
		var persons []lending.Person
		require.NoError(t, store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			persons, err = tx.FindPersons(ctx, filter)
			return err
		}))

		names := make([]string, 0, len(persons))
		for _, p := range persons {
			names = append(names, p.Name)
		}

		return names
	}

	// act & assert
	assert.Equal(t, []string{"Alice Archer", "Bob Baker", "Carol Archer"},
		find(lending.BuildPersonFilter().OfKind(lending.PersonKindReader).Finalize()))
	assert.Equal(t, []string{"Alice Archer", "Bob Baker"},
		find(lending.BuildPersonFilter().InZone(lending.ZoneEastBranch).Finalize()))
	assert.Equal(t, []string{"Alice Archer", "Carol Archer"},
		find(lending.BuildPersonFilter().Containing("ARCHER").Finalize()))
	assert.Equal(t, []string{"Alice Archer", "Carol Archer"},
		find(lending.BuildPersonFilter().WithStatus(lending.ReaderActive).Finalize()))
	assert.Empty(t, find(lending.BuildPersonFilter().OfKind(lending.PersonKindLibrarian).Containing("archer").Finalize()))
}
