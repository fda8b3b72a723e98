// Package checksum fingerprints tag pools so reloads can skip unchanged content.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Tags returns the hex-encoded SHA-256 of the ordered tag list.
// Order matters: the pool order feeds the shuffle.
func Tags(tags []string) string {
	h := sha256.Sum256([]byte(strings.Join(tags, "\x00")))
	return hex.EncodeToString(h[:])
}
