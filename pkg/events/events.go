package events

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/go-go-golems/parley/pkg/backend"
	"github.com/go-go-golems/parley/pkg/transcript"
)

// Topic is the single topic all state-change events travel on. Renderers
// subscribe here instead of being called back from network completions.
const Topic = "parley.state"

type EventType string

const (
	// Current session id changed (switch, new chat, delete, lazy guest
	// adoption). SessionID is empty for NoSession.
	EventTypeSessionChanged EventType = "session-changed"
	// The transcript was replaced wholesale (history hydration) or reset.
	EventTypeTranscriptReplaced EventType = "transcript-replaced"
	// One entry was appended to the transcript.
	EventTypeEntryAppended EventType = "entry-appended"
	// A fresh session list arrived from the directory.
	EventTypeSessionList EventType = "session-list"
	// A scoped busy indicator started or cleared.
	EventTypeBusy EventType = "busy"
	// A user-visible error (the alert/inline-message path).
	EventTypeAlert EventType = "alert"
	// The frontend should present the reduced guest interface.
	EventTypeGuestMode EventType = "guest-mode"
	// The frontend should navigate to the given location.
	EventTypeNavigate EventType = "navigate"
)

// Event is the envelope every state change is published as. Only the
// fields relevant to the Type are populated.
type Event struct {
	Type EventType `json:"type"`

	SessionID string             `json:"session_id,omitempty"`
	Entries   []transcript.Entry `json:"entries,omitempty"`
	Entry     *transcript.Entry  `json:"entry,omitempty"`
	Sessions  []backend.Session  `json:"sessions,omitempty"`
	ActiveID  string             `json:"active_id,omitempty"`
	Busy      bool               `json:"busy,omitempty"`
	Scope     string             `json:"scope,omitempty"`
	Message   string             `json:"message,omitempty"`
	Location  string             `json:"location,omitempty"`
}

func NewSessionChanged(sessionID string) Event {
	return Event{Type: EventTypeSessionChanged, SessionID: sessionID}
}

func NewTranscriptReplaced(entries []transcript.Entry) Event {
	return Event{Type: EventTypeTranscriptReplaced, Entries: entries}
}

func NewEntryAppended(entry transcript.Entry) Event {
	return Event{Type: EventTypeEntryAppended, Entry: &entry}
}

func NewSessionList(sessions []backend.Session, activeID string) Event {
	return Event{Type: EventTypeSessionList, Sessions: sessions, ActiveID: activeID}
}

func NewBusy(scope string, busy bool) Event {
	return Event{Type: EventTypeBusy, Scope: scope, Busy: busy}
}

func NewAlert(message string) Event {
	return Event{Type: EventTypeAlert, Message: message}
}

func NewGuestMode() Event {
	return Event{Type: EventTypeGuestMode}
}

func NewNavigate(location string) Event {
	return Event{Type: EventTypeNavigate, Location: location}
}

// Parse decodes an event from a watermill message payload.
func Parse(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, errors.Wrap(err, "parsing state event")
	}
	return e, nil
}
