package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin binds the connection to a user identity and registers presence.
	CommandJoin CommandKind = iota
	// CommandJoinPost subscribes the connection to a post's fan-out room.
	CommandJoinPost
	// CommandLeavePost unsubscribes the connection from a post's fan-out room.
	CommandLeavePost
	// CommandSendMessage delivers a direct message to another user.
	CommandSendMessage
	// CommandSendNotification delivers a notification to a user.
	CommandSendNotification
	// CommandTyping signals the receiver that the sender is typing.
	CommandTyping
	// CommandStopTyping signals the receiver that the sender stopped typing.
	CommandStopTyping
	// CommandMarkNotificationRead marks a stored notification as read.
	CommandMarkNotificationRead
)

// Command represents an action requested by a client connection.
type Command struct {
	Kind CommandKind

	User     string // join target identity
	Post     string // post room id
	Receiver string // message / typing receiver

	Content string // message or notification body

	// notification fields
	NotifType string
	Title     string

	NotificationID string
}
