package nimbuserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatusCodes(t *testing.T) {
	cases := map[Kind]int{
		InvalidInput: 400,
		Unauthorized: 401,
		Forbidden:    403,
		NotFound:     404,
		Generic:      500,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.StatusCode())
	}
}

func TestNew_CapturesStack(t *testing.T) {
	err := New(NotFound, "Message handler not found")
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, 404, err.StatusCode)
}

func TestFromSchemaIssues(t *testing.T) {
	issues := []Issue{{Path: []string{"data", "aNumber"}, Code: "invalid_type", Expected: "number", Received: "string", Message: "Expected number, received string"}}
	err := FromSchemaIssues("The provided input is invalid", issues)

	assert.Equal(t, InvalidInput, err.Kind)
	require.Contains(t, err.Details, "issues")
	assert.Equal(t, issues, err.Details["issues"])
}

func TestFromError_WrapsForeignError(t *testing.T) {
	cause := errors.New("boom")
	err := FromError(Generic, cause)

	assert.Equal(t, Generic, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestFromError_PreservesExistingTaxonomy(t *testing.T) {
	original := New(NotFound, "Message handler not found")
	wrapped := FromError(Generic, original)

	assert.Same(t, original, wrapped)
	assert.Equal(t, NotFound, wrapped.Kind)
}

func TestKindOf(t *testing.T) {
	err := New(InvalidInput, "bad")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InvalidInput, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorIsComparesKind(t *testing.T) {
	a := New(InvalidInput, "a")
	b := New(InvalidInput, "b")
	c := New(NotFound, "c")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}
