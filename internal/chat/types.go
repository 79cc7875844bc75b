package chat

import (
	"time"

	"calassist/internal/calendar"
)

type MessageType string

const (
	TypeUser   MessageType = "user"
	TypeAgent  MessageType = "agent"
	TypeSystem MessageType = "system"
)

// Message is one entry of the thread. Content may be empty on a loading
// placeholder.
type Message struct {
	Content   string           `json:"content"`
	Type      MessageType      `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Events    []calendar.Event `json:"events,omitempty"`
	IsLoading bool             `json:"isLoading,omitempty"`
	Custom    any              `json:"customContent,omitempty"`
}

// Notification is transient feedback for the user, shown outside the thread.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

const VariantDestructive = "destructive"

// Notifier receives notifications as they happen.
type Notifier func(Notification)

// Turn is everything one user message produced.
type Turn struct {
	Messages []Message
	// Events are the entries appended to the running event list.
	Events []calendar.Event
	// IntentID names the rule that answered, empty on failure.
	IntentID string
	// Err is the failure that was turned into an apology, if any.
	Err error
}

func (t Turn) Failed() bool { return t.Err != nil }
