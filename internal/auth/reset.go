package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	ResetTokenTTL   = 10 * time.Minute
	resetTokenBytes = 32
)

// ResetToken is a freshly generated password reset token. Raw goes to the
// user and is never stored; only Hash and ExpiresAt are persisted.
type ResetToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

func NewResetToken(now time.Time) (*ResetToken, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	raw := hex.EncodeToString(b)
	return &ResetToken{
		Raw:       raw,
		Hash:      HashResetToken(raw),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

func HashResetToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
