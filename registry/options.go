package registry

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/nimbus/eventbus"
	"github.com/GoCodeAlone/nimbus/nimbuserr"
)

// EventBusOptions is the YAML-decodable shape of an event bus's default
// retry policy, for deployments that configure instances declaratively
// instead of via functional options in code — mirroring the teacher's own
// config-file-driven module setup.
type EventBusOptions struct {
	MaxRetries uint `yaml:"maxRetries"`
	BaseDelay  int  `yaml:"baseDelayMs"`
	MaxDelay   int  `yaml:"maxDelayMs"`
	UseJitter  bool `yaml:"useJitter"`
}

// ParseEventBusOptions decodes a YAML document into EventBusOptions.
func ParseEventBusOptions(doc []byte) (EventBusOptions, error) {
	var opts EventBusOptions
	if err := yaml.Unmarshal(doc, &opts); err != nil {
		return EventBusOptions{}, nimbuserr.FromError(nimbuserr.InvalidInput, err)
	}
	return opts, nil
}

// RetryPolicy converts the decoded options into an eventbus.RetryPolicy,
// falling back to eventbus.DefaultRetryPolicy's fields when MaxRetries,
// BaseDelay or MaxDelay is zero. UseJitter is taken as decoded, so an
// absent useJitter key yields false rather than the default true.
func (o EventBusOptions) RetryPolicy() eventbus.RetryPolicy {
	defaults := eventbus.DefaultRetryPolicy()
	policy := eventbus.RetryPolicy{
		MaxRetries: o.MaxRetries,
		BaseDelay:  time.Duration(o.BaseDelay) * time.Millisecond,
		MaxDelay:   time.Duration(o.MaxDelay) * time.Millisecond,
		UseJitter:  o.UseJitter,
	}
	if o.MaxRetries == 0 {
		policy.MaxRetries = defaults.MaxRetries
	}
	if o.BaseDelay == 0 {
		policy.BaseDelay = defaults.BaseDelay
	}
	if o.MaxDelay == 0 {
		policy.MaxDelay = defaults.MaxDelay
	}
	return policy
}

// SetupEventBusFromYAML decodes doc and registers an event bus under name
// with the resulting retry policy as its bus-level default.
func (r *Registries) SetupEventBusFromYAML(name string, doc []byte, opts ...eventbus.Option) (*eventbus.Bus, error) {
	parsed, err := ParseEventBusOptions(doc)
	if err != nil {
		return nil, err
	}
	allOpts := append([]eventbus.Option{eventbus.WithDefaultRetryPolicy(parsed.RetryPolicy())}, opts...)
	return r.SetupEventBus(name, allOpts...), nil
}
