// Package id generates time-sortable identifiers for trades and journal
// records. ULIDs sort lexicographically by creation time, which keeps
// journal queries and SQLite indexes cheap.
package id

import (
	cryptoRand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = ulid.Monotonic(cryptoRand.Reader, 0)
)

// New returns a ULID string. IDs generated within the same millisecond
// remain lexicographically increasing.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if the entropy source fails or time runs backwards.
		panic(err)
	}
	return id.String()
}
