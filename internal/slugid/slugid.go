// Package slugid generates the short URL-safe identifiers Taskcluster uses
// for task and task group IDs.
package slugid

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// New returns a fresh random slugid.
func New() string {
	return Encode(uuid.New())
}

// Encode turns the 16 bytes of a UUID into a 22 character slugid. A leading
// byte of 0xd0 or above would encode to a digit or a '-' or '_', so its high
// bit is cleared to make every slugid start with a letter.
func Encode(id uuid.UUID) string {
	raw := id
	if raw[0] >= 0xd0 {
		raw[0] &= 0x7f
	}
	return base64.RawURLEncoding.EncodeToString(raw[:])
}
