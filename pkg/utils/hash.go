package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// LeadKey identifies a prospect across submissions: the hash of their
// trimmed, lower-cased email, so the CRM never indexes raw addresses.
func LeadKey(email string) string {
	return HashString(strings.ToLower(strings.TrimSpace(email)))
}
