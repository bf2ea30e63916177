// Package nimbuslog defines the abstract logging capability the router and
// event bus consume. Nothing outside this package formats or writes log
// lines directly — every call site builds a Record and hands it to a
// Logger, so the concrete backend (zap, slog, a test spy) is swappable at
// the edge.
package nimbuslog

// Record is a single structured log entry. Message is the human summary;
// Category groups related log lines for filtering (e.g.
// "router.register", "eventbus.handle.error"); Data carries arbitrary
// structured fields; Err is attached when the record describes a failure;
// CorrelationID joins the record back to the message/event that caused it.
type Record struct {
	Message       string
	Category      string
	Data          map[string]any
	Err           error
	CorrelationID string
}

// Logger is the capability the core consumes for all logging. Implementors
// decide formatting, level filtering, and sinks.
type Logger interface {
	Debug(r Record)
	Info(r Record)
	Warn(r Record)
	Error(r Record)
	Critical(r Record)
}

// Nop is a Logger that discards every record. Useful as a default when no
// logger is configured.
type Nop struct{}

func (Nop) Debug(Record)    {}
func (Nop) Info(Record)     {}
func (Nop) Warn(Record)     {}
func (Nop) Error(Record)    {}
func (Nop) Critical(Record) {}
