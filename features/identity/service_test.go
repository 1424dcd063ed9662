package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/library-loans-go/features/identity"
	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper"
)

func givenService(t *testing.T) (*Service, lending.Store) {
	store := helper.NewSQLiteStore(t)
	clock := helper.NewFakeClock(helper.FakeNow())

	service, err := NewService(store, helper.GivenFastHasher(t), WithClock(clock.Now))
	require.NoError(t, err, "error creating identity service in test setup")

	return service, store
}

func givenRegisterReaderCommand() RegisterReaderCommand {
	return RegisterReaderCommand{
		Name:     "Ursula Reader",
		Email:    "  Ursula@Example.org ",
		Password: helper.GivenPlainPassword,
		Address:  "Harbour Road 7",
		Zone:     lending.ZoneEastBranch,
	}
}

func Test_NewService_When_HasherIsNil(t *testing.T) {
	// act
	_, err := NewService(helper.NewSQLiteStore(t), nil)

	// assert
	assert.ErrorIs(t, err, ErrNilHasher)
}

func Test_RegisterReader_When_InputIsValid(t *testing.T) {
	// setup
	ctx := context.Background()
	service, _ := givenService(t)

	// act
	reader, err := service.RegisterReader(ctx, givenRegisterReaderCommand())

	// assert
	require.NoError(t, err)
	assert.True(t, reader.IsReader())
	assert.Equal(t, "ursula@example.org", reader.Email)
	assert.Equal(t, lending.ReaderActive, reader.Reader.Status)
	assert.Equal(t, helper.FakeToday(), reader.Reader.RegisteredOn)

	stored, err := service.GetPerson(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, reader.Reader, stored.Reader)
	assert.Equal(t, reader.Email, stored.Email)
}

func Test_RegisterReader_When_InputIsInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*RegisterReaderCommand)
		wantErr error
	}{
		{name: "blank name", mutate: func(c *RegisterReaderCommand) { c.Name = "  " }, wantErr: lending.ErrValidation},
		{name: "malformed email", mutate: func(c *RegisterReaderCommand) { c.Email = "nope" }, wantErr: lending.ErrValidation},
		{name: "missing zone", mutate: func(c *RegisterReaderCommand) { c.Zone = "" }, wantErr: lending.ErrValidation},
		{name: "unknown status", mutate: func(c *RegisterReaderCommand) { c.Status = "BANNED" }, wantErr: lending.ErrValidation},
		{name: "empty password", mutate: func(c *RegisterReaderCommand) { c.Password = "" }, wantErr: credential.ErrInvalidCredential},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			service, _ := givenService(t)

			// arrange
			command := givenRegisterReaderCommand()
			tc.mutate(&command)

			// act
			_, err := service.RegisterReader(context.Background(), command)

			// assert
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_RegisterReader_When_EmailIsTakenInAnotherCase(t *testing.T) {
	// setup
	ctx := context.Background()
	service, _ := givenService(t)

	// arrange
	_, err := service.RegisterReader(ctx, givenRegisterReaderCommand())
	require.NoError(t, err)

	// act
	_, err = service.RegisterLibrarian(ctx, RegisterLibrarianCommand{
		Name:           "Other",
		Email:          "URSULA@example.org",
		Password:       helper.GivenPlainPassword,
		EmployeeNumber: "EMP-7",
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrDuplicateEmail)
}

func Test_RegisterLibrarian_When_EmployeeNumberIsTaken(t *testing.T) {
	// setup
	ctx := context.Background()
	service, _ := givenService(t)

	// arrange
	_, err := service.RegisterLibrarian(ctx, RegisterLibrarianCommand{
		Name: "First", Email: "first@example.org", Password: helper.GivenPlainPassword, EmployeeNumber: "EMP-1",
	})
	require.NoError(t, err)

	// act
	_, err = service.RegisterLibrarian(ctx, RegisterLibrarianCommand{
		Name: "Second", Email: "second@example.org", Password: helper.GivenPlainPassword, EmployeeNumber: "EMP-1",
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrDuplicateEmployeeNumber)
}

func Test_VerifyCredential(t *testing.T) {
	// setup
	ctx := context.Background()
	service, _ := givenService(t)

	// arrange
	_, err := service.RegisterReader(ctx, givenRegisterReaderCommand())
	require.NoError(t, err)

	testCases := []struct {
		name  string
		email string
		plain string
		want  bool
	}{
		{name: "matching password", email: "ursula@example.org", plain: helper.GivenPlainPassword, want: true},
		{name: "email in other case", email: "URSULA@EXAMPLE.ORG", plain: helper.GivenPlainPassword, want: true},
		{name: "wrong password", email: "ursula@example.org", plain: "wrong", want: false},
		{name: "empty password", email: "ursula@example.org", plain: "", want: false},
		{name: "unknown email", email: "nobody@example.org", plain: helper.GivenPlainPassword, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			ok, err := service.VerifyCredential(ctx, tc.email, tc.plain)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

type countingHasher struct {
	credential.Hasher
	compares int
}

func (h *countingHasher) Compare(hash string, plain string) bool {
	h.compares++
	return h.Hasher.Compare(hash, plain)
}

func Test_VerifyCredential_When_EmailIsUnknown(t *testing.T) {
	// setup
	ctx := context.Background()
	store := helper.NewSQLiteStore(t)
	hasher := &countingHasher{Hasher: helper.GivenFastHasher(t)}
	service, err := NewService(store, hasher)
	require.NoError(t, err)

	// act
	ok, err := service.VerifyCredential(ctx, "nobody@example.org", helper.GivenPlainPassword)

	// assert
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, hasher.compares, "an unknown email costs the same comparison as a known one")
}

func Test_ChangeCredential_When_PersonExists(t *testing.T) {
	// setup
	ctx := context.Background()
	service, _ := givenService(t)

	// arrange
	reader, err := service.RegisterReader(ctx, givenRegisterReaderCommand())
	require.NoError(t, err)

	// act
	err = service.ChangeCredential(ctx, reader.ID, "a brand new secret")

	// assert
	require.NoError(t, err)

	oldOK, err := service.VerifyCredential(ctx, reader.Email, helper.GivenPlainPassword)
	require.NoError(t, err)
	newOK, err := service.VerifyCredential(ctx, reader.Email, "a brand new secret")
	require.NoError(t, err)
	assert.False(t, oldOK)
	assert.True(t, newOK)
}

func Test_ChangeCredential_When_PersonDoesNotExist(t *testing.T) {
	// setup
	service, _ := givenService(t)

	// act
	err := service.ChangeCredential(context.Background(), helper.GivenUniqueID(t), "secret")

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_ChangeReaderStatus_When_PersonIsAReader(t *testing.T) {
	// setup
	ctx := context.Background()
	service, store := givenService(t)
	reader := helper.GivenActiveReader(t, store)

	// act
	updated, err := service.ChangeReaderStatus(ctx, reader.ID, lending.ReaderSuspended)

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.ReaderSuspended, updated.Reader.Status)

	stored, err := service.GetPerson(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, lending.ReaderSuspended, stored.Reader.Status)
	assert.Equal(t, reader.Reader.Zone, stored.Reader.Zone)
}

func Test_ChangeReaderStatus_When_PersonIsALibrarian(t *testing.T) {
	// setup
	service, store := givenService(t)
	librarian := helper.GivenLibrarian(t, store)

	// act
	_, err := service.ChangeReaderStatus(context.Background(), librarian.ID, lending.ReaderInactive)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_ChangeReaderZone_When_ZoneIsUnknown(t *testing.T) {
	// setup
	service, store := givenService(t)
	reader := helper.GivenActiveReader(t, store)

	// act
	_, err := service.ChangeReaderZone(context.Background(), reader.ID, lending.Zone("MOON_BASE"))

	// assert
	assert.ErrorIs(t, err, lending.ErrValidation)
}

func Test_ChangeReaderZone_When_ZoneIsKnown(t *testing.T) {
	// setup
	ctx := context.Background()
	service, store := givenService(t)
	reader := helper.GivenActiveReader(t, store)

	// act
	updated, err := service.ChangeReaderZone(ctx, reader.ID, lending.ZoneGeneralArchive)

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.ZoneGeneralArchive, updated.Reader.Zone)
}

func Test_ListReaders_When_FilteredByStatusAndZone(t *testing.T) {
	// setup
	ctx := context.Background()
	service, store := givenService(t)

	// arrange
	wanted := helper.GivenReader(t, store, lending.ReaderSuspended, lending.ZoneWestBranch)
	helper.GivenReader(t, store, lending.ReaderActive, lending.ZoneWestBranch)
	helper.GivenReader(t, store, lending.ReaderSuspended, lending.ZoneEastBranch)
	helper.GivenLibrarian(t, store)

	// act
	readers, err := service.ListReaders(ctx, ReaderQuery{Status: lending.ReaderSuspended, Zone: lending.ZoneWestBranch})

	// assert
	require.NoError(t, err)
	require.Len(t, readers, 1)
	assert.Equal(t, wanted.ID, readers[0].ID)
}

func Test_ListLibrarians_When_NoTextIsGiven(t *testing.T) {
	// setup
	ctx := context.Background()
	service, store := givenService(t)

	// arrange
	helper.GivenLibrarian(t, store)
	helper.GivenLibrarian(t, store)
	helper.GivenActiveReader(t, store)

	// act
	librarians, err := service.ListLibrarians(ctx, "")

	// assert
	require.NoError(t, err)
	assert.Len(t, librarians, 2)
	for _, librarian := range librarians {
		assert.True(t, librarian.IsLibrarian())
	}
}
