package tds

import "time"

// EventType represents different lifecycle phases of a token decode
type EventType string

const (
	EventTokenStart  EventType = "token_start"
	EventCekTable    EventType = "cek_table"
	EventColumn      EventType = "column"
	EventSuspend     EventType = "suspend"
	EventTokenEnd    EventType = "token_end"
	EventDecodeError EventType = "decode_error"
)

// Event represents a lifecycle event of one COLMETADATA decode
type Event struct {
	Type      EventType // Type of event
	DecodeID  string    // Identifies the decode for tracing
	Timestamp time.Time // When the event occurred
	Data      any       // Phase-specific data (column count, column, token, error)
}

// Observer interface for event subscribers
type Observer interface {
	OnEvent(event Event)
}

// multiObserver forwards events to multiple observers
type multiObserver []Observer

func (m multiObserver) OnEvent(event Event) {
	for _, o := range m {
		o.OnEvent(event)
	}
}

// Observers fans events out to every non-nil observer
func Observers(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}
