package credential_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/lending/credential"
)

func givenFastHasher(t *testing.T) credential.BcryptHasher {
	t.Helper()

	hasher, err := credential.NewBcryptHasher(credential.WithCost(bcrypt.MinCost))
	require.NoError(t, err, "error in arranging test data")

	return hasher
}

func Test_New_When_PlainIsEmpty_It_Fails(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)

	// act
	c, err := credential.New(hasher, "")

	// assert
	assert.ErrorIs(t, err, credential.ErrInvalidCredential)
	assert.False(t, c.IsSet())
}

func Test_New_When_PlainIsTooLongForBcrypt_It_Fails(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)

	// act
	_, err := credential.New(hasher, strings.Repeat("x", 73))

	// assert
	assert.ErrorIs(t, err, credential.ErrInvalidCredential)
}

func Test_Verify_When_PlainMatches(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)
	c, err := credential.New(hasher, "s3cret")
	require.NoError(t, err)

	// act & assert
	assert.True(t, c.Verify(hasher, "s3cret"))
	assert.False(t, c.Verify(hasher, "S3cret"))
	assert.False(t, c.Verify(hasher, ""))
}

func Test_Verify_When_NoHashIsStored_It_ReturnsFalse(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)
	var c credential.Credential

	// act & assert
	assert.False(t, c.Verify(hasher, "anything"))
}

func Test_Credential_NeverRevealsTheHash(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)
	c, err := credential.New(hasher, "s3cret")
	require.NoError(t, err)

	stored, err := c.Value()
	require.NoError(t, err)

	// act
	text, err := c.MarshalText()

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "[credential]", c.String())
	assert.NotContains(t, string(text), stored.(string))
}

func Test_Scan_RestoresAVerifiableCredential(t *testing.T) {
	// arrange
	hasher := givenFastHasher(t)
	original, err := credential.New(hasher, "s3cret")
	require.NoError(t, err)
	stored, err := original.Value()
	require.NoError(t, err)

	// act
	var restored credential.Credential
	err = restored.Scan([]byte(stored.(string)))

	// assert
	assert.NoError(t, err)
	assert.True(t, restored.Verify(hasher, "s3cret"))
}

func Test_NewBcryptHasher_When_CostIsOutOfRange_It_Fails(t *testing.T) {
	// act
	_, err := credential.NewBcryptHasher(credential.WithCost(bcrypt.MaxCost + 1))

	// assert
	assert.ErrorIs(t, err, credential.ErrInvalidCost)
}
