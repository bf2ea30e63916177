package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID_Shape(t *testing.T) {
	id := NewULID()
	assert.Len(t, id, 26)
}

func TestNewULID_MonotonicWithinMillisecond(t *testing.T) {
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, NewULID())
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "ids must sort strictly ascending")
	}
}

func TestNowRFC3339_Parseable(t *testing.T) {
	ts := NowRFC3339()
	_, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
}
