// Package credential is the single password hashing and verification
// interface. There is exactly one implementation; callers never probe for
// alternative compare capabilities at runtime.
package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("credentials do not match")

type Hasher interface {
	Hash(password string) (string, error)
	// Compare reports ErrMismatch when the password does not match the
	// stored hash. The comparison is constant-time.
	Compare(hash, password string) error
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return ErrMismatch
	}
	return nil
}
