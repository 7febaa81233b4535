// Package auth issues and verifies bearer credentials and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// CredentialService is what the HTTP boundary needs from auth: turn a user
// into a bearer token and a bearer token back into an owner id.
type CredentialService interface {
	Issue(userID, userName string) (string, error)
	Verify(token string) (string, error)
}

// JWTIssuer implements CredentialService with HS256 tokens.
type JWTIssuer struct {
	secret   []byte
	validity time.Duration
}

func NewJWTIssuer(secret string, validity time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), validity: validity}
}

func (j *JWTIssuer) Issue(userID, userName string) (string, error) {
	return GenerateToken(userID, userName, j.secret, j.validity)
}

func (j *JWTIssuer) Verify(token string) (string, error) {
	return GetUserIDFromToken(token, j.secret)
}

// PasswordCost is the bcrypt cost used for new hashes.
var PasswordCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword(password, PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// CheckPassword compares password with hash. A mismatch yields
// common.ErrorInvalidCredentials.
func CheckPassword(hash, password []byte) error {
	err := bcrypt.CompareHashAndPassword(hash, password)
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorInvalidCredentials
	}
	return fmt.Errorf("compare password: %w", err)
}
