package observability

// These names are the public observability contract: downstream dashboards
// are written against them, so they are exported constants rather than
// inline string literals scattered across router/ and eventbus/.
const (
	SpanRouterRoute     = "router.route"
	SpanEventBusPublish = "eventbus.publish"
	SpanEventBusHandle  = "eventbus.handle"

	MetricRouterMessagesRoutedTotal    = "router_messages_routed_total"
	MetricRouterRoutingDurationSeconds = "router_routing_duration_seconds"

	MetricEventBusEventsPublishedTotal      = "eventbus_events_published_total"
	MetricEventBusEventsDeliveredTotal      = "eventbus_events_delivered_total"
	MetricEventBusRetryAttemptsTotal        = "eventbus_retry_attempts_total"
	MetricEventBusEventHandlingDurationSecs = "eventbus_event_handling_duration_seconds"
	MetricEventBusEventSizeBytes            = "eventbus_event_size_bytes"
)

// Common attribute/label keys, also part of the observability contract.
const (
	AttrMessagingSystem      = "messaging.system"
	AttrMessagingRouterName  = "messaging.router_name"
	AttrMessagingBusName     = "messaging.eventbus_name"
	AttrMessagingOperation   = "messaging.operation"
	AttrMessagingDestination = "messaging.destination"
	AttrCorrelationID        = "correlation_id"
	AttrCloudEventID         = "cloudevents.event_id"
	AttrCloudEventSource     = "cloudevents.event_source"

	MessagingSystemRouter   = "nimbusRouter"
	MessagingSystemEventBus = "nimbusEventBus"

	OperationRoute   = "route"
	OperationPublish = "publish"
	OperationProcess = "process"

	StatusSuccess = "success"
	StatusError   = "error"
)
