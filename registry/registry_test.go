package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 11 — Registry singleton.
func TestGetRouter_ReturnsSameInstance(t *testing.T) {
	r := New()
	a := r.GetRouter("svc")
	b := r.GetRouter("svc")
	assert.Same(t, a, b)
}

func TestSetupRouter_ReplacesExistingInstance(t *testing.T) {
	r := New()
	a := r.SetupRouter("svc")
	b := r.SetupRouter("svc")
	assert.NotSame(t, a, b)
	assert.Same(t, b, r.GetRouter("svc"))
}

func TestGetEventBus_ReturnsSameInstance(t *testing.T) {
	r := New()
	a := r.GetEventBus("svc")
	b := r.GetEventBus("svc")
	assert.Same(t, a, b)
}

func TestGetRouter_DefaultsEmptyNameToDefault(t *testing.T) {
	r := New()
	a := r.GetRouter("")
	b := r.GetRouter(DefaultName)
	assert.Same(t, a, b)
}

func TestDefaultPackageFunctionsShareDefaultRegistry(t *testing.T) {
	name := "registry-pkg-test-unique-name"
	a := GetRouter(name)
	b := GetRouter(name)
	assert.Same(t, a, b)
}

func TestParseEventBusOptions_FillsPolicyDefaults(t *testing.T) {
	opts, err := ParseEventBusOptions([]byte(`maxRetries: 5`))
	require.NoError(t, err)
	policy := opts.RetryPolicy()
	assert.Equal(t, uint(5), policy.MaxRetries)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.Equal(t, 30*time.Second, policy.MaxDelay)
}

func TestSetupEventBusFromYAML(t *testing.T) {
	r := New()
	bus, err := r.SetupEventBusFromYAML("svc", []byte(`
maxRetries: 1
baseDelayMs: 10
maxDelayMs: 50
useJitter: false
`))
	require.NoError(t, err)
	require.NotNil(t, bus)
	assert.Same(t, bus, r.GetEventBus("svc"))
}
