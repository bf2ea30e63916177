// Package message defines the three CloudEvents-shaped message kinds the
// framework dispatches — commands, queries, and events — the schema
// primitives used to validate their envelope attributes, and the factory
// functions that fill in defaults. This generalizes the teacher's single
// modular.NewCloudEvent/ValidateCloudEvent helper pair
// (observer_cloudevents.go) into three role-specific constructors.
package message

import (
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/nimbus/nimbuserr"
)

// Kind distinguishes the three roles a message can play.
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
	KindEvent   Kind = "event"
)

// Envelope wraps a cloudevents.Event and is embedded by Command, Query, and
// Event so all three share field access while remaining distinct types the
// compiler won't let callers accidentally interchange.
type Envelope struct {
	cloudevents.Event
	kind Kind
}

// Kind reports which of the three roles this envelope plays.
func (e Envelope) Kind() Kind { return e.kind }

// CorrelationID returns the correlationid extension, generated by the
// factory if the caller didn't supply one.
func (e Envelope) CorrelationID() string {
	v, ok := e.Extensions()["correlationid"]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Command is an imperative write message.
type Command struct{ Envelope }

// Query is a read message. Unlike Command and Event, queries never carry a
// subject.
type Query struct{ Envelope }

// Event is a fact about something that already happened. Unlike Command and
// Query, a subject is mandatory.
type Event struct{ Envelope }

// Input is the caller-supplied data a factory turns into a fully formed
// message. Fields left zero are defaulted by the factory per §4.A.
type Input struct {
	ID              string
	Source          string
	Type            string
	CorrelationID   string
	Time            string
	Data            any
	DataContentType string
	DataSchema      string
	Subject         string
}

// Validate checks the attribute-level constraints common to every message
// kind: specversion, id, source, type, correlationid, data are required;
// time is optional and not checked; dataschema and datacontenttype are
// optional and checked for format when present; subject follows the
// per-kind rule documented on Command/Query/Event.
func (e Envelope) Validate() error {
	if err := e.Event.Validate(); err != nil {
		return nimbuserr.FromError(nimbuserr.InvalidInput, err)
	}
	if e.Event.SpecVersion() != cloudevents.VersionV1 {
		return nimbuserr.New(nimbuserr.InvalidInput, "specversion must be \"1.0\"")
	}
	if e.Event.ID() == "" {
		return nimbuserr.New(nimbuserr.InvalidInput, "id must not be empty")
	}
	if !IsURIReference(e.Event.Source()) {
		return nimbuserr.New(nimbuserr.InvalidInput, "source must be a URI-reference")
	}
	if e.Event.Type() == "" {
		return nimbuserr.New(nimbuserr.InvalidInput, "type must not be empty")
	}
	if e.CorrelationID() == "" {
		return nimbuserr.New(nimbuserr.InvalidInput, "correlationid must not be empty")
	}
	if len(e.Event.Data()) == 0 {
		return nimbuserr.New(nimbuserr.InvalidInput, "data is required")
	}
	if ct := e.Event.DataContentType(); ct != "" && !IsMIMEType(ct) {
		return nimbuserr.New(nimbuserr.InvalidInput, "datacontenttype must be a MIME media type")
	}
	if ds := e.Event.DataSchema(); ds != "" && !IsAbsoluteURI(ds) {
		return nimbuserr.New(nimbuserr.InvalidInput, "dataschema must be an absolute URI")
	}
	switch e.kind {
	case KindEvent:
		if e.Event.Subject() == "" {
			return nimbuserr.New(nimbuserr.InvalidInput, "subject is required for events")
		}
	case KindQuery:
		if e.Event.Subject() != "" {
			return nimbuserr.New(nimbuserr.InvalidInput, "subject must be absent for queries")
		}
	}
	return nil
}

func buildEnvelope(kind Kind, in Input, idFn func() string, nowFn func() string) (Envelope, error) {
	evt := cloudevents.NewEvent()
	evt.SetSpecVersion(cloudevents.VersionV1)

	id := in.ID
	if id == "" {
		id = idFn()
	}
	evt.SetID(id)

	evt.SetSource(in.Source)
	evt.SetType(in.Type)

	correlationID := in.CorrelationID
	if correlationID == "" {
		correlationID = idFn()
	}
	evt.SetExtension("correlationid", correlationID)

	ts := in.Time
	if ts == "" {
		ts = nowFn()
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, ts)
	}
	if err != nil {
		return Envelope{}, nimbuserr.New(nimbuserr.InvalidInput, "time must be an RFC 3339 timestamp")
	}
	evt.SetTime(parsed)

	contentType := in.DataContentType
	if contentType == "" {
		contentType = "application/json"
	}
	if in.Data != nil {
		if err := evt.SetData(contentType, in.Data); err != nil {
			return Envelope{}, nimbuserr.FromError(nimbuserr.InvalidInput, err)
		}
	} else {
		evt.SetDataContentType(contentType)
	}

	if in.DataSchema != "" {
		evt.SetDataSchema(in.DataSchema)
	}
	if in.Subject != "" {
		evt.SetSubject(in.Subject)
	}

	return Envelope{Event: evt, kind: kind}, nil
}
