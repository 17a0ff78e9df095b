package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart and EventTypeFinal bracket a completion request.
	EventTypeStart EventType = "start"
	EventTypeFinal EventType = "final"
	EventTypeError EventType = "error"

	// EventTypeTurnAppended fires once per turn committed to the store and
	// appended to the in-memory sequence.
	EventTypeTurnAppended EventType = "turn-appended"

	// EventTypeSessionSwitched fires when the active session changes,
	// including a switch to no session at all.
	EventTypeSessionSwitched EventType = "session-switched"
)

// EventMetadata identifies the session an event belongs to.
type EventMetadata struct {
	ID        uuid.UUID `json:"message_id"`
	SessionID string    `json:"session_id,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.SessionID != "" {
		e.Str("session_id", em.SessionID)
	}
}

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// payload is only set when the event was deserialized from JSON
	payload []byte
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

// SetPayload stores the raw JSON the event was decoded from.
func (e *EventImpl) SetPayload(b []byte) {
	e.payload = b
}

var _ Event = &EventImpl{}

// EventStart is published when a completion request is issued.
type EventStart struct {
	EventImpl
	Prompt string `json:"prompt"`
}

func NewStartEvent(metadata EventMetadata, prompt string) *EventStart {
	return &EventStart{
		EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata},
		Prompt:    prompt,
	}
}

var _ Event = &EventStart{}

// EventFinal carries the completion text, which may be the fallback string
// when the completion service failed.
type EventFinal struct {
	EventImpl
	Text     string `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

func NewFinalEvent(metadata EventMetadata, text string, fallback bool) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		Text:      text,
		Fallback:  fallback,
	}
}

var _ Event = &EventFinal{}

// EventError is published when an operation surfaces an error to the caller.
type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	return &EventError{
		EventImpl:   EventImpl{Type_: EventTypeError, Metadata_: metadata},
		ErrorString: err.Error(),
	}
}

var _ Event = &EventError{}

// EventTurnAppended reports a turn that has been persisted and appended.
type EventTurnAppended struct {
	EventImpl
	TurnID  string `json:"turn_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewTurnAppendedEvent(metadata EventMetadata, turnID string, role string, content string) *EventTurnAppended {
	return &EventTurnAppended{
		EventImpl: EventImpl{Type_: EventTypeTurnAppended, Metadata_: metadata},
		TurnID:    turnID,
		Role:      role,
		Content:   content,
	}
}

var _ Event = &EventTurnAppended{}

// EventSessionSwitched reports the new active session id, empty when the
// session was cleared.
type EventSessionSwitched struct {
	EventImpl
	TurnCount int `json:"turn_count"`
}

func NewSessionSwitchedEvent(metadata EventMetadata, turnCount int) *EventSessionSwitched {
	return &EventSessionSwitched{
		EventImpl: EventImpl{Type_: EventTypeSessionSwitched, Metadata_: metadata},
		TurnCount: turnCount,
	}
}

var _ Event = &EventSessionSwitched{}

// NewEventFromJSON reconstructs a concrete event from a serialized payload.
func NewEventFromJSON(b []byte) (Event, error) {
	var e EventImpl
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errors.Wrap(err, "failed to decode event envelope")
	}
	e.payload = b

	var ret Event
	switch e.Type_ {
	case EventTypeStart:
		ret = &EventStart{}
	case EventTypeFinal:
		ret = &EventFinal{}
	case EventTypeError:
		ret = &EventError{}
	case EventTypeTurnAppended:
		ret = &EventTurnAppended{}
	case EventTypeSessionSwitched:
		ret = &EventSessionSwitched{}
	default:
		return nil, errors.Errorf("unknown event type %q", e.Type_)
	}

	if err := json.Unmarshal(b, ret); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s event", e.Type_)
	}
	if impl, ok := ret.(interface{ SetPayload([]byte) }); ok {
		impl.SetPayload(b)
	}

	return ret, nil
}
