package loans_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/library-loans-go/features/loans"
	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine"
	"github.com/AntonStoeckl/library-loans-go/shell"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper"
)

type fixture struct {
	store     *sqlengine.Store
	clock     *helper.FakeClock
	service   *Service
	reader    lending.Person
	librarian lending.Person
	book      lending.Material
}

func givenFixture(t *testing.T, options ...Option) fixture {
	store := helper.NewSQLiteStore(t)
	clock := helper.NewFakeClock(helper.FakeNow())

	service, err := NewService(store, append([]Option{
		WithClock(clock.Now),
		WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	}, options...)...)
	require.NoError(t, err, "error creating loan service in test setup")

	return fixture{
		store:     store,
		clock:     clock,
		service:   service,
		reader:    helper.GivenActiveReader(t, store),
		librarian: helper.GivenLibrarian(t, store),
		book:      helper.GivenBook(t, store, "The Left Hand of Darkness"),
	}
}

func (f fixture) requestFor(material lending.Material, dueInDays int) RequestLoanCommand {
	return BuildRequestLoanCommand(f.reader.ID, f.librarian.ID, material.ID, helper.FakeToday().AddDays(dueInDays))
}

func (f fixture) countLoansOf(t *testing.T, material lending.Material) int {
	t.Helper()

	var count int
	require.NoError(t, f.store.View(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		var err error
		count, err = tx.CountLoans(ctx, lending.BuildLoanFilter().ForMaterial(material.ID).Finalize())
		return err
	}))

	return count
}

func Test_NewService_When_StoreIsNil(t *testing.T) {
	// act
	_, err := NewService(nil)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilStore)
}

func Test_NewService_When_OptionsAreInvalid(t *testing.T) {
	store := helper.NewSQLiteStore(t)

	_, err := NewService(store, WithHorizonYears(0))
	assert.ErrorIs(t, err, ErrInvalidHorizonYears)

	_, err = NewService(store, WithMaxOpenLoans(-1))
	assert.ErrorIs(t, err, ErrNegativeMaxOpenLoans)

	_, err = NewService(store, WithClock(nil))
	assert.ErrorIs(t, err, ErrNilClock)
}

func Test_RequestLoan_When_AllChecksPass(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// act
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 21))

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.LoanPending, loan.State)
	assert.Equal(t, helper.FakeToday(), loan.RequestedOn)
	assert.Equal(t, helper.FakeToday().AddDays(21), loan.EstimatedReturnDate)

	stored, err := f.service.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan, stored)
}

func Test_RequestLoan_When_DueToday(t *testing.T) {
	// setup
	f := givenFixture(t)

	// act
	_, err := f.service.RequestLoan(context.Background(), f.requestFor(f.book, 0))

	// assert
	assert.NoError(t, err)
}

func Test_RequestLoan_When_DateIsInThePast(t *testing.T) {
	// setup
	f := givenFixture(t)

	// act
	_, err := f.service.RequestLoan(context.Background(), f.requestFor(f.book, -1))

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidDate)
}

func Test_RequestLoan_When_DateIsBeyondTheConfiguredHorizon(t *testing.T) {
	// setup
	f := givenFixture(t, WithHorizonYears(1))

	// act
	_, err := f.service.RequestLoan(context.Background(), f.requestFor(f.book, 400))

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidDate)
}

func Test_RequestLoan_When_ReaderIsNotActive(t *testing.T) {
	for _, status := range []lending.ReaderStatus{lending.ReaderSuspended, lending.ReaderInactive} {
		t.Run(string(status), func(t *testing.T) {
			// setup
			ctx := context.Background()
			f := givenFixture(t)
			blocked := helper.GivenReader(t, f.store, status, lending.ZoneWestBranch)

			// arrange
			command := BuildRequestLoanCommand(blocked.ID, f.librarian.ID, f.book.ID, helper.FakeToday().AddDays(7))

			// act
			_, err := f.service.RequestLoan(ctx, command)

			// assert
			assert.ErrorIs(t, err, lending.ErrReaderNotEligible)
			assert.Equal(t, 0, f.countLoansOf(t, f.book))
		})
	}
}

func Test_RequestLoan_When_LibrarianIsActuallyAReader(t *testing.T) {
	// setup
	f := givenFixture(t)
	other := helper.GivenActiveReader(t, f.store)

	// arrange
	command := BuildRequestLoanCommand(f.reader.ID, other.ID, f.book.ID, helper.FakeToday().AddDays(7))

	// act
	_, err := f.service.RequestLoan(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_RequestLoan_When_MaterialDoesNotExist(t *testing.T) {
	// setup
	f := givenFixture(t)

	// arrange
	command := BuildRequestLoanCommand(f.reader.ID, f.librarian.ID, helper.GivenUniqueID(t), helper.FakeToday().AddDays(7))

	// act
	_, err := f.service.RequestLoan(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_RequestLoan_When_MaterialIsAlreadyRequested(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)
	other := helper.GivenActiveReader(t, f.store)

	// arrange
	_, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	// act
	command := BuildRequestLoanCommand(other.ID, f.librarian.ID, f.book.ID, helper.FakeToday().AddDays(7))
	_, err = f.service.RequestLoan(ctx, command)

	// assert
	assert.ErrorIs(t, err, lending.ErrMaterialUnavailable)
}

func Test_RequestLoan_When_PreviousLoanWasCancelled(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	first, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, first.ID)
	require.NoError(t, err)

	// act
	second, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func Test_RequestLoan_When_ReaderReachedTheLoanLimit(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t, WithMaxOpenLoans(1))
	secondBook := helper.GivenBook(t, f.store, "Solaris")

	// arrange
	_, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	// act
	_, err = f.service.RequestLoan(ctx, f.requestFor(secondBook, 7))

	// assert
	assert.ErrorIs(t, err, lending.ErrLoanLimitReached)
}

func Test_RequestLoan_When_TwoReadersRaceForTheSameMaterial(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)
	other := helper.GivenActiveReader(t, f.store)

	// arrange
	commands := []RequestLoanCommand{
		f.requestFor(f.book, 7),
		BuildRequestLoanCommand(other.ID, f.librarian.ID, f.book.ID, helper.FakeToday().AddDays(7)),
	}

	// act
	errs := make([]error, len(commands))
	var wg sync.WaitGroup
	for i, command := range commands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.RequestLoan(ctx, command)
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, lending.ErrMaterialUnavailable)
	}
	assert.Equal(t, 1, succeeded)

	assert.Equal(t, 1, f.countLoansOf(t, f.book))
}

func Test_Lifecycle_When_ApprovedAndReturned(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	// act
	approved, approveErr := f.service.Approve(ctx, loan.ID)
	other := helper.GivenActiveReader(t, f.store)
	_, whileLentErr := f.service.RequestLoan(ctx, BuildRequestLoanCommand(other.ID, f.librarian.ID, f.book.ID, helper.FakeToday().AddDays(7)))
	returned, returnErr := f.service.Return(ctx, loan.ID)

	// assert
	require.NoError(t, approveErr)
	assert.ErrorIs(t, whileLentErr, lending.ErrMaterialUnavailable, "an IN_PROGRESS loan blocks the material")
	require.NoError(t, returnErr)
	assert.Equal(t, lending.LoanInProgress, approved.State)
	assert.Equal(t, lending.LoanReturned, returned.State)

	_, err = f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	assert.NoError(t, err, "a returned material is available again")
}

func Test_Approve_When_AlreadyApproved(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, loan.ID)
	require.NoError(t, err)

	// act
	_, err = f.service.Approve(ctx, loan.ID)

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidTransition)

	stored, getErr := f.service.GetLoan(ctx, loan.ID)
	require.NoError(t, getErr)
	assert.Equal(t, lending.LoanInProgress, stored.State)
}

func Test_Cancel_When_LoanIsInProgress(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, loan.ID)
	require.NoError(t, err)

	// act
	_, err = f.service.Cancel(ctx, loan.ID)

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidTransition)
}

func Test_Approve_When_LoanDoesNotExist(t *testing.T) {
	// setup
	f := givenFixture(t)

	// act
	_, err := f.service.Approve(context.Background(), helper.GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_ChangeState_When_TargetIsInvalid(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	for _, target := range []lending.LoanState{lending.LoanReturned, lending.LoanPending, lending.LoanState("LOST")} {
		t.Run(string(target), func(t *testing.T) {
			// act
			_, err := f.service.ChangeState(ctx, loan.ID, target)

			// assert
			assert.ErrorIs(t, err, lending.ErrInvalidTransition)
		})
	}
}

func Test_ChangeState_When_TargetIsTheNextState(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	// act
	changed, err := f.service.ChangeState(ctx, loan.ID, lending.LoanCancelled)

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.LoanCancelled, changed.State)
}

func Test_IsOverdue_When_TimePasses(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 1))
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, loan.ID)
	require.NoError(t, err)

	// act
	f.clock.AdvanceDays(1)
	dueToday, errDueToday := f.service.IsOverdue(ctx, loan.ID)

	f.clock.AdvanceDays(1)
	pastDue, errPastDue := f.service.IsOverdue(ctx, loan.ID)

	// assert
	require.NoError(t, errDueToday)
	require.NoError(t, errPastDue)
	assert.False(t, dueToday, "a loan due today is not overdue")
	assert.True(t, pastDue)
}

func Test_IsOverdue_When_LoanIsStillPending(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 1))
	require.NoError(t, err)
	f.clock.AdvanceDays(30)

	// act
	overdue, err := f.service.IsOverdue(ctx, loan.ID)

	// assert
	require.NoError(t, err)
	assert.False(t, overdue)
}

func Test_DeleteLoan_When_LoanExists(t *testing.T) {
	// setup
	ctx := context.Background()
	f := givenFixture(t)

	// arrange
	loan, err := f.service.RequestLoan(ctx, f.requestFor(f.book, 7))
	require.NoError(t, err)

	// act
	err = f.service.DeleteLoan(ctx, loan.ID)

	// assert
	require.NoError(t, err)

	_, err = f.service.GetLoan(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrNotFound)
	assert.ErrorIs(t, f.service.DeleteLoan(ctx, loan.ID), lending.ErrNotFound)
}

func Test_RequestLoan_When_ObservabilityIsConfigured(t *testing.T) {
	// setup
	logSpy := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	tracingSpy := helper.NewTracingCollectorSpy()
	f := givenFixture(t, WithLogger(logSpy.Logger()), WithMetrics(metricsSpy), WithTracing(tracingSpy))

	// act
	_, err := f.service.RequestLoan(context.Background(), f.requestFor(f.book, -5))

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidDate)
	assert.True(t, logSpy.HasInfoLogWithMessage(shell.LogMsgOperationRejected).
		WithAttr(shell.LogAttrOperation, OperationRequestLoan).
		WithAttr(shell.LogAttrStatus, shell.StatusRejected).
		Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric(shell.OperationDurationMetric).
		WithLabel(shell.LogAttrOperation, OperationRequestLoan).
		Assert())

	span, found := tracingSpy.FinishedSpan(shell.SpanNamePrefix + OperationRequestLoan)
	require.True(t, found)
	assert.Equal(t, shell.StatusRejected, span.Status)
}
