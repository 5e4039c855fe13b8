package bot

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventKind identifies a recorded controller decision.
type EventKind string

const (
	EventRequest    EventKind = "request"
	EventReissue    EventKind = "reissue"
	EventForfeit    EventKind = "forfeit"
	EventDesync     EventKind = "desync"
	EventRetry      EventKind = "retry"
	EventTradeStale EventKind = "trade_timeout"
	EventPlan       EventKind = "plan"
	EventFault      EventKind = "fault"
	EventStopped    EventKind = "stopped"
)

// Event is one entry of the decision log. ID correlates a request with the
// retries and timeouts that refer to it.
type Event struct {
	Tick   int
	Kind   EventKind
	Detail string
	ID     string
}

// EventLog is a bounded ring of recent events. It is owned by the agent loop.
type EventLog struct {
	buf  []Event
	next int
	full bool
}

// NewEventLog keeps the last size events.
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = 1
	}
	return &EventLog{buf: make([]Event, size)}
}

// Record appends an event and returns its correlation ID. A blank id gets a
// fresh one.
func (l *EventLog) Record(tick int, kind EventKind, id, format string, args ...any) string {
	if id == "" {
		id = uuid.NewString()
	}
	l.buf[l.next] = Event{Tick: tick, Kind: kind, Detail: fmt.Sprintf(format, args...), ID: id}
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
	return id
}

// Events returns the retained events oldest first.
func (l *EventLog) Events() []Event {
	if !l.full {
		return append([]Event(nil), l.buf[:l.next]...)
	}
	out := make([]Event, 0, len(l.buf))
	out = append(out, l.buf[l.next:]...)
	return append(out, l.buf[:l.next]...)
}

// Last returns the newest event.
func (l *EventLog) Last() (Event, bool) {
	if !l.full && l.next == 0 {
		return Event{}, false
	}
	return l.buf[(l.next-1+len(l.buf))%len(l.buf)], true
}

// MarshalJSON renders the log for debug dumps.
func (l *EventLog) MarshalJSON() ([]byte, error) {
	events := l.Events()
	items := make([]any, 0, len(events))
	for _, e := range events {
		items = append(items, map[string]any{
			"tick":   e.Tick,
			"kind":   string(e.Kind),
			"detail": e.Detail,
			"id":     e.ID,
		})
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, fmt.Errorf("failed to convert event log: %w", err)
	}
	return protojson.Marshal(list)
}
