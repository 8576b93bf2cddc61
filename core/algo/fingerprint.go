package algo

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/huangsam/sqlscope/core/sqltext"
)

// Fingerprint returns the hex sha256 of the normalized sql, or "" when
// nothing is left after normalization.
func Fingerprint(sql string) string {
	return FingerprintNormalized(sqltext.Normalize(sql))
}

// FingerprintNormalized hashes text that is already normalized.
func FingerprintNormalized(normalized string) string {
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
