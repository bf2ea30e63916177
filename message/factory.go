package message

import (
	"github.com/GoCodeAlone/nimbus/idgen"
	"github.com/GoCodeAlone/nimbus/nimbuserr"
)

// NewCommand builds a Command, filling specversion/id/correlationid/time/
// datacontenttype defaults per §4.A. Subject is optional for commands.
func NewCommand(in Input) (Command, error) {
	if in.Source == "" || in.Type == "" {
		return Command{}, nimbuserr.New(nimbuserr.InvalidInput, "source and type are required")
	}
	env, err := buildEnvelope(KindCommand, in, idgen.NewULID, idgen.NowRFC3339)
	if err != nil {
		return Command{}, err
	}
	return Command{Envelope: env}, nil
}

// NewQuery builds a Query the same way NewCommand does. Queries must never
// carry a subject.
func NewQuery(in Input) (Query, error) {
	if in.Source == "" || in.Type == "" {
		return Query{}, nimbuserr.New(nimbuserr.InvalidInput, "source and type are required")
	}
	if in.Subject != "" {
		return Query{}, nimbuserr.New(nimbuserr.InvalidInput, "queries must not carry a subject")
	}
	env, err := buildEnvelope(KindQuery, in, idgen.NewULID, idgen.NowRFC3339)
	if err != nil {
		return Query{}, err
	}
	return Query{Envelope: env}, nil
}

// NewEvent builds an Event. Unlike commands and queries, subject is
// required input with no default — the factory never invents one.
func NewEvent(in Input) (Event, error) {
	if in.Source == "" || in.Type == "" {
		return Event{}, nimbuserr.New(nimbuserr.InvalidInput, "source and type are required")
	}
	if in.Subject == "" {
		return Event{}, nimbuserr.New(nimbuserr.InvalidInput, "subject is required for events")
	}
	env, err := buildEnvelope(KindEvent, in, idgen.NewULID, idgen.NowRFC3339)
	if err != nil {
		return Event{}, err
	}
	return Event{Envelope: env}, nil
}
