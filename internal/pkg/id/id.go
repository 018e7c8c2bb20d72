// Package id mints the identifiers used for users, OTPs and profiles.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a 26-character ULID. ULIDs sort by creation time, which keeps
// SQL primary-key inserts append-only and spreads DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
