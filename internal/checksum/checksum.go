// Package checksum fingerprints appointment lists so unchanged reloads can be ignored.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/parser"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Of returns the digest of appts in their persisted form, so two lists with
// the same entries in the same order share a checksum.
func Of(appts []models.Appointment) string {
	return Sum(parser.Format(appts))
}
