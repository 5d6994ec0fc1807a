package security

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password does not match hash")

// PasswordHasher wraps bcrypt so tests can run with a cheap cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &PasswordHasher{cost: cost}
}

// stretchInput digests plain to a fixed 44-byte string. bcrypt only reads
// 72 bytes and refuses anything longer, so passwords of any length go
// through SHA-256 first.
func stretchInput(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])

	return out
}

// Hash returns a salted bcrypt hash of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(stretchInput(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares a stored hash with a plaintext candidate.
// Any bcrypt failure other than a mismatch (corrupt hash, bad version) is returned as is.
func (h *PasswordHasher) Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), stretchInput(plain))

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}

	return err
}
