package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin          = "join"
	InboundTypeJoinPost      = "join_post"
	InboundTypeLeavePost     = "leave_post"
	InboundTypeTyping        = "typing"
	InboundTypeStopTyping    = "stop_typing"
	InboundTypeSendMessage   = "send_message"
	InboundTypeSendNotif     = "send_notification"
	InboundTypeMarkNotifRead = "mark_notification_read"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// JoinData binds the connection to a user identity.
type JoinData struct {
	User string `json:"userId"`
}

// PostData targets a post fan-out room.
type PostData struct {
	Post string `json:"postId"`
}

// TypingData targets a typing indicator at a receiver.
type TypingData struct {
	ReceiverID string `json:"receiverId"`
}

// SendMessageData is a direct message from the client.
type SendMessageData struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// SendNotificationData asks the server to notify a user.
type SendNotificationData struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MarkNotificationReadData marks a stored notification as read.
type MarkNotificationReadData struct {
	NotificationID string `json:"notificationId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Outbound event names.
const (
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventNewMessage       = "new_message"
	EventMessageSent      = "message_sent"
	EventNewNotification  = "new_notification"
	EventUserTyping       = "user_typing"
	EventUserStopTyping   = "user_stop_typing"
	EventNotificationRead = "notification_marked_read"
)

// PresenceData announces a user's online/offline transition.
type PresenceData struct {
	UserID string `json:"userId"`
}

// MessageData carries a delivered or acknowledged message record.
type MessageData struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	TS         int64  `json:"ts"`
	// Uncertain is set on acknowledgments whose durable write failed.
	Uncertain bool `json:"uncertain,omitempty"`
}

// NotificationData carries a delivered notification record.
type NotificationData struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Read    bool   `json:"read"`
	TS      int64  `json:"ts"`
}

// TypingEventData names the user typing at the receiver.
type TypingEventData struct {
	UserID string `json:"userId"`
}

// NotificationReadData confirms a mark-read to the acting connection.
type NotificationReadData struct {
	NotificationID string `json:"notificationId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
