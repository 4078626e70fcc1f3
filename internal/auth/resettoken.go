package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const resetTokenBytes = 32

// ResetToken pairs the value mailed to the user with the digest kept in storage.
type ResetToken struct {
	Token string
	Hash  string
}

// NewResetToken generates a 256-bit random reset token.
func NewResetToken() (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	return ResetToken{Token: token, Hash: HashResetToken(token)}, nil
}

// HashResetToken returns the hex SHA-256 digest stored for token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
