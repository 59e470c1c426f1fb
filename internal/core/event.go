package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserOnline announces that a user has at least one live connection.
	EventUserOnline EventKind = iota
	// EventUserOffline announces that a user's last connection closed.
	EventUserOffline
	// EventNewMessage delivers a direct message to the receiver's devices.
	EventNewMessage
	// EventMessageSent acknowledges a sent message to the sender only.
	EventMessageSent
	// EventNewNotification delivers a notification to the target's devices.
	EventNewNotification
	// EventUserTyping tells the receiver that a user started typing.
	EventUserTyping
	// EventUserStopTyping tells the receiver that a user stopped typing.
	EventUserStopTyping
	// EventNotificationRead confirms a mark-read to the acting connection.
	EventNotificationRead
	// EventError reports a recoverable per-event failure to the offender.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind           EventKind
	User           string // subject of presence and typing events
	Message        *Message
	Notification   *Notification
	NotificationID string
	// Uncertain marks an acknowledgment whose durable write could not be
	// confirmed after retries.
	Uncertain bool
	Error     *CoreError
}
