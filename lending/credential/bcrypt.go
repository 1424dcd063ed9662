package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCost = errors.New("bcrypt cost out of range")

// BcryptHasher implements Hasher with golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures a BcryptHasher.
type BcryptOption func(*BcryptHasher) error

// WithCost sets the bcrypt work factor. Tests use bcrypt.MinCost to stay fast.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) error {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return ErrInvalidCost
		}

		h.cost = cost

		return nil
	}
}

// NewBcryptHasher creates a BcryptHasher with bcrypt.DefaultCost unless configured otherwise.
func NewBcryptHasher(options ...BcryptOption) (BcryptHasher, error) {
	h := BcryptHasher{cost: bcrypt.DefaultCost}

	for _, option := range options {
		if err := option(&h); err != nil {
			return BcryptHasher{}, err
		}
	}

	return h, nil
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (h BcryptHasher) Compare(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
