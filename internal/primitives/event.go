// Event is the message primitive exchanged between actors.
//
// An Event is a tag plus an optional payload. Events are passed by value and
// consumers MUST NOT mutate the payload after construction.
package primitives

import "fmt"

type Event struct {
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewEvent creates and returns a new Event.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type: eventType,
		Data: data,
	}
}

func (e Event) String() string {
	if e.Data == nil {
		return e.Type
	}
	return fmt.Sprintf("%s(%v)", e.Type, e.Data)
}

// PayloadAs returns the event payload as T.
func PayloadAs[T any](e Event) (T, bool) {
	v, ok := e.Data.(T)
	return v, ok
}
