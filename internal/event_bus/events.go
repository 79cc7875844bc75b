package event_bus

const (
	// MessageAppended carries a chat.Message each time one lands in a thread.
	MessageAppended EventType = "chat.message_appended"
	// EventsScheduled carries the []calendar.Event appended by one turn.
	EventsScheduled EventType = "chat.events_scheduled"
	// ProcessingChanged carries the new bool value of the processing flag.
	ProcessingChanged EventType = "chat.processing_changed"
	// Notification carries a chat.Notification for transient user feedback.
	Notification EventType = "chat.notification"
	// ThreadReset carries the []chat.Message a thread was reset to.
	ThreadReset EventType = "chat.thread_reset"
	// AuthChanged carries the auth.State after login, logout or bootstrap.
	AuthChanged EventType = "auth.changed"
)
