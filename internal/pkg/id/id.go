package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time, which makes them convenient SMTP Message-ID values when
// correlating delivery logs with issuance logs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
