package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() ports.PasswordHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.ErrInvalidInput
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Compare(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// A digest bcrypt cannot parse means stored data is damaged, not that
	// the caller guessed wrong.
	return false, domain.ErrCorruptDigest
}
