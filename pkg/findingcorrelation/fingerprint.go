package findingcorrelation

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short stable identifier for a raw secret value.
// Returns an empty string for an empty secret so absent values never match
// each other.
func Fingerprint(rawSecret string) string {
	if rawSecret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(rawSecret))
	return hex.EncodeToString(sum[:])[:16]
}
