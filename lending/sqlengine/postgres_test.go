package sqlengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper/postgreswrapper"
)

func Test_Postgres_When_StoringAndClassifying(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	store := wrapper.GetStore()

	// arrange
	reader := helper.GivenReader(t, store, lending.ReaderActive, lending.ZoneGeneralArchive)
	librarian := helper.GivenLibrarian(t, store)
	book := helper.GivenBook(t, store, "Piranesi")
	loan := helper.GivenLoan(t, store, reader.ID, librarian.ID, book.ID,
		helper.FakeToday(), helper.FakeToday().AddDays(10), lending.LoanPending)

	// act
	var stored lending.Loan
	viewErr := store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
		var err error
		stored, err = tx.GetLoan(ctx, loan.ID)
		return err
	})

	duplicateEmailErr := store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
		twin := helper.FixtureReader(t, lending.ReaderActive, lending.ZoneEastBranch)
		twin.Email = reader.Email
		return tx.InsertPerson(ctx, twin)
	})

	secondOpenLoanErr := store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
		second := loan
		second.ID = helper.GivenUniqueID(t)
		return tx.InsertLoan(ctx, second)
	})

	readOnlyErr := store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.DeleteLoan(ctx, loan.ID)
	})

	var counts map[lending.LoanState]int
	countErr := store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
		var err error
		counts, err = tx.CountLoansByState(ctx)
		return err
	})

	// assert
	require.NoError(t, viewErr)
	assert.Equal(t, loan, stored)
	assert.ErrorIs(t, duplicateEmailErr, lending.ErrDuplicateEmail)
	assert.ErrorIs(t, secondOpenLoanErr, lending.ErrMaterialUnavailable)
	assert.Error(t, readOnlyErr)
	require.NoError(t, countErr)
	assert.Equal(t, 1, counts[lending.LoanPending])
	assert.Equal(t, 0, counts[lending.LoanReturned])
}
