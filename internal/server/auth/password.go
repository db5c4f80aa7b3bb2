package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MsgPasswordTooLong is returned for passwords bcrypt cannot hash.
const MsgPasswordTooLong = "Password must not exceed 72 characters."

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", common.BadRequest(MsgPasswordTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(b), nil
}

// ComparePassword reports whether password matches the stored bcrypt hash.
// Malformed hashes compare as a mismatch.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
