// Package idgen generates the identifiers the message model needs: sortable,
// monotonic-within-a-millisecond ULIDs for message and correlation ids, and
// RFC 3339 timestamps for the message envelope's time attribute.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// entropy is shared and guarded by mu. ulid.Monotonic wraps crypto/rand so
// ids generated within the same millisecond still sort strictly after one
// another, which is what "sortable, monotonic" in the message model spec
// requires.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new 26-character, lexicographically sortable identifier.
func NewULID() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// ulid.Monotonic only errors when entropy overflows within the same
		// millisecond after 2^80 ids; fall back to a fresh non-monotonic id
		// rather than propagate an error from what callers treat as
		// infallible id generation.
		id, err = ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
		if err != nil {
			panic("idgen: failed to generate ulid: " + err.Error())
		}
	}
	return id.String()
}

// NowRFC3339 returns the current time formatted per RFC 3339 with
// nanosecond precision, the format the message factories stamp onto the
// envelope's time attribute.
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
