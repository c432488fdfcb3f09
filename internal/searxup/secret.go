package searxup

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// secretPattern matches the only accepted on-disk secret form: 32 bytes
// as lowercase hex.
var secretPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewSecret mints a fresh 32-byte secret rendered as 64 lowercase hex
// characters. The value is written into the env file and the searxng
// settings and nowhere else; it is never logged.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidSecret reports whether s is a usable previously generated secret.
// Re-runs reuse the secret found in an existing env file so a running
// deployment keeps its sessions; a new one is minted only when none
// survives.
func ValidSecret(s string) bool {
	return secretPattern.MatchString(s)
}
