package credential

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Hasher is the hashing collaborator: one-way Hash and constant-time Compare.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash string, plain string) bool
}

// Credential is an opaque password hash.
type Credential struct {
	hash string
}

// New hashes plain with the given hasher.
// It fails with ErrInvalidCredential if plain is empty or rejected by the hasher.
func New(hasher Hasher, plain string) (Credential, error) {
	if plain == "" {
		return Credential{}, ErrInvalidCredential
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		return Credential{}, errors.Join(ErrInvalidCredential, err)
	}

	return Credential{hash: hash}, nil
}

// IsSet reports whether a hash is present.
func (c Credential) IsSet() bool {
	return c.hash != ""
}

// Verify reports whether plain matches the stored hash. It never fails: an absent hash
// or an empty plain simply does not match.
func (c Credential) Verify(hasher Hasher, plain string) bool {
	if c.hash == "" || plain == "" {
		return false
	}

	return hasher.Compare(c.hash, plain)
}

// String never reveals the hash.
func (c Credential) String() string {
	if c.IsSet() {
		return "[credential]"
	}

	return "[no credential]"
}

// MarshalText keeps the hash out of any text or JSON encoding.
func (c Credential) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Value implements driver.Valuer.
func (c Credential) Value() (driver.Value, error) {
	if c.hash == "" {
		return nil, nil
	}

	return c.hash, nil
}

// Scan implements sql.Scanner.
func (c *Credential) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		c.hash = ""
	case string:
		c.hash = v
	case []byte:
		c.hash = string(v)
	default:
		return fmt.Errorf("cannot scan %T into credential.Credential", src)
	}

	return nil
}
