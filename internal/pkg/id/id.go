package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time; issued OTP records carry one so log lines and store items
// can be correlated without exposing the code itself.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
