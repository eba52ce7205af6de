package engine

import (
	"fmt"

	"github.com/classlens/classlens/internal/artifact"
)

// traceMethod produces the call-site event sequence for a method: a
// linear scan over its invocation records, one event per record, in
// bytecode order. No control-flow or data-flow analysis is attempted, so
// events from unreachable branches are included.
//
// A method whose instruction stream is unavailable or malformed yields a
// recoverable error; the caller records it and continues with an empty
// trace for that method only.
func traceMethod(t *artifact.Type, m *artifact.Method) ([]Event, error) {
	if m.TraceStatus != "" && m.TraceStatus != artifact.TraceOK {
		return nil, fmt.Errorf("instruction stream %s", m.TraceStatus)
	}
	events := make([]Event, 0, len(m.Calls))
	for _, c := range m.Calls {
		events = append(events, Event{
			Receiver: c.Receiver,
			Member:   c.Member,
			Loc:      Location{Class: t.Name, Method: m.Name, Offset: c.Offset},
		})
	}
	return events, nil
}
