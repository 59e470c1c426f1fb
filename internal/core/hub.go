package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mavihs13/edunet-realtime/internal/buffer"
	"github.com/mavihs13/edunet-realtime/internal/store"
)

// Payload bounds. Oversized fields degrade to an error event on the
// offending connection; the connection stays open.
const (
	MaxUserIDLen       = 50
	MaxMessageLen      = 1000
	MaxNotifTypeLen    = 100
	MaxNotifTitleLen   = 50
	MaxNotifContentLen = 500
)

// persistAttempts bounds retries of durable-store writes before the
// dispatcher gives up and marks the acknowledgment delivery-uncertain.
const persistAttempts = 3

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub is the event dispatcher and connection lifecycle manager. A single
// Run goroutine owns every mutation of the presence registry and room
// router, so no two commands interleave mid-flight. Per-connection pump
// goroutines feed commands in, preserving each connection's send order.
type Hub struct {
	registry *Registry
	router   *Router
	store    store.Store   // durable persistence collaborator, may be nil
	buffer   buffer.Buffer // offline delivery queue, may be nil
	log      zerolog.Logger

	clients    map[*Client]struct{}
	commands   chan clientCommand
	register   chan *Client
	unregister chan *Client
}

// NewHub creates the dispatcher. Store and buffer are optional collaborators;
// a nil store skips durable writes and a nil buffer skips offline queueing.
func NewHub(st store.Store, buf buffer.Buffer, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry:   NewRegistry(),
		router:     NewRouter(),
		store:      st,
		buffer:     buf,
		log:        logger.With().Str("component", "hub").Logger(),
		clients:    make(map[*Client]struct{}),
		commands:   make(chan clientCommand, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Registry exposes the presence registry for read-only queries.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes all connection events until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			if _, ok := h.clients[cc.client]; !ok {
				continue // command raced with disconnect
			}
			h.dispatch(ctx, cc.client, cc.cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if _, ok := h.clients[c]; ok {
		return
	}
	h.clients[c] = struct{}{}

	// Pump preserves per-connection command ordering; exits when the
	// client's command channel closes on unregister.
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()

	h.log.Debug().Str("conn_id", c.ID).Msg("connection registered")
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return // idempotent disconnect
	}
	delete(h.clients, c)
	h.router.LeaveAll(c)

	userID, last, ok := h.registry.Unregister(c.ID)
	c.close()

	if ok && last {
		h.broadcastAll(&Event{Kind: EventUserOffline, User: userID}, nil)
		h.log.Debug().Str("user_id", userID).Msg("user offline")
	}
	h.log.Debug().Str("conn_id", c.ID).Msg("connection unregistered")
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd.User)
	case CommandJoinPost:
		h.handleJoinPost(c, cmd.Post)
	case CommandLeavePost:
		h.handleLeavePost(c, cmd.Post)
	case CommandSendMessage:
		h.handleSendMessage(ctx, c, cmd.Receiver, cmd.Content)
	case CommandSendNotification:
		h.handleSendNotification(ctx, c, cmd)
	case CommandTyping:
		h.handleTyping(c, cmd.Receiver, EventUserTyping)
	case CommandStopTyping:
		h.handleTyping(c, cmd.Receiver, EventUserStopTyping)
	case CommandMarkNotificationRead:
		h.handleMarkNotificationRead(ctx, c, cmd.NotificationID)
	default:
		h.sendError(c, ErrCodeBadRequest, "unknown command")
	}
}

func (h *Hub) handleJoin(c *Client, userID string) {
	if userID == "" || len(userID) > MaxUserIDLen {
		h.sendError(c, ErrCodeInvalidUser, "user id must be 1-50 characters")
		return
	}

	// Re-join with a different identity rebinds the connection.
	if c.UserID != "" && c.UserID != userID {
		h.router.Leave(c, UserRoom(c.UserID))
		if prev, last, ok := h.registry.Unregister(c.ID); ok && last {
			h.broadcastAll(&Event{Kind: EventUserOffline, User: prev}, nil)
		}
	}

	c.UserID = userID
	h.registry.Register(userID, c.ID)
	h.router.Join(c, UserRoom(userID))

	// Presence change is announced to every live connection, not just the
	// user's social graph.
	h.broadcastAll(&Event{Kind: EventUserOnline, User: userID}, c)
	h.log.Debug().Str("user_id", userID).Str("conn_id", c.ID).Msg("user joined")
}

func (h *Hub) handleJoinPost(c *Client, postID string) {
	if postID == "" || len(postID) > MaxUserIDLen {
		h.sendError(c, ErrCodeInvalidPayload, "post id must be 1-50 characters")
		return
	}
	h.router.Join(c, PostRoom(postID))
}

func (h *Hub) handleLeavePost(c *Client, postID string) {
	if postID == "" {
		return
	}
	h.router.Leave(c, PostRoom(postID))
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, receiverID, content string) {
	if c.UserID == "" {
		h.sendError(c, ErrCodeNotJoined, "join before sending messages")
		return
	}
	if receiverID == "" || len(receiverID) > MaxUserIDLen {
		h.sendError(c, ErrCodeInvalidUser, "receiver id must be 1-50 characters")
		return
	}
	if content == "" || len(content) > MaxMessageLen {
		h.sendError(c, ErrCodeInvalidPayload, "message content must be 1-1000 characters")
		return
	}

	msg := &Message{
		ID:         uuid.NewString(),
		SenderID:   c.UserID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	uncertain := false
	if h.store != nil {
		err := h.persist(ctx, func(ctx context.Context) error {
			return h.store.SaveMessage(ctx, &store.Message{
				ID:         msg.ID,
				SenderID:   msg.SenderID,
				ReceiverID: msg.ReceiverID,
				Content:    msg.Content,
				Read:       msg.Read,
				CreatedAt:  msg.CreatedAt,
			})
		})
		if err != nil {
			uncertain = true
			h.log.Error().Err(err).Str("message_id", msg.ID).Msg("persist message failed")
		}
	}

	delivered := h.router.BroadcastToUser(receiverID, &Event{Kind: EventNewMessage, Message: msg})
	h.send(c, &Event{Kind: EventMessageSent, Message: msg, Uncertain: uncertain})

	// Buffered even when live delivery succeeded: the drain path is the
	// durability fallback and consumers de-duplicate by message id.
	h.enqueue(ctx, buffer.KindMessages, receiverID, msg)

	h.log.Debug().
		Str("message_id", msg.ID).
		Str("receiver_id", receiverID).
		Bool("delivered", delivered).
		Msg("message dispatched")
}

func (h *Hub) handleSendNotification(ctx context.Context, c *Client, cmd *Command) {
	if c.UserID == "" {
		h.sendError(c, ErrCodeNotJoined, "join before sending notifications")
		return
	}
	if cmd.User == "" || len(cmd.User) > MaxUserIDLen {
		h.sendError(c, ErrCodeInvalidUser, "user id must be 1-50 characters")
		return
	}
	if cmd.NotifType == "" || len(cmd.NotifType) > MaxNotifTypeLen {
		h.sendError(c, ErrCodeInvalidPayload, "notification type must be 1-100 characters")
		return
	}
	if len(cmd.Title) > MaxNotifTitleLen {
		h.sendError(c, ErrCodeInvalidPayload, "notification title must be at most 50 characters")
		return
	}
	if cmd.Content == "" || len(cmd.Content) > MaxNotifContentLen {
		h.sendError(c, ErrCodeInvalidPayload, "notification content must be 1-500 characters")
		return
	}

	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    cmd.User,
		Type:      cmd.NotifType,
		Title:     cmd.Title,
		Content:   cmd.Content,
		CreatedAt: time.Now().UTC(),
	}

	if h.store != nil {
		err := h.persist(ctx, func(ctx context.Context) error {
			return h.store.SaveNotification(ctx, &store.Notification{
				ID:        n.ID,
				UserID:    n.UserID,
				Type:      n.Type,
				Title:     n.Title,
				Content:   n.Content,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			})
		})
		if err != nil {
			h.log.Error().Err(err).Str("notification_id", n.ID).Msg("persist notification failed")
		}
	}

	delivered := h.router.BroadcastToUser(n.UserID, &Event{Kind: EventNewNotification, Notification: n})
	if !delivered {
		h.enqueue(ctx, buffer.KindNotifications, n.UserID, n)
	}
}

func (h *Hub) handleTyping(c *Client, receiverID string, kind EventKind) {
	if c.UserID == "" {
		h.sendError(c, ErrCodeNotJoined, "join before typing events")
		return
	}
	if receiverID == "" || len(receiverID) > MaxUserIDLen {
		h.sendError(c, ErrCodeInvalidUser, "receiver id must be 1-50 characters")
		return
	}
	// Ephemeral: dropped when the receiver is offline, never buffered.
	h.router.BroadcastToUser(receiverID, &Event{Kind: kind, User: c.UserID})
}

func (h *Hub) handleMarkNotificationRead(ctx context.Context, c *Client, notificationID string) {
	if c.UserID == "" {
		h.sendError(c, ErrCodeNotJoined, "join before marking notifications")
		return
	}
	if notificationID == "" {
		h.sendError(c, ErrCodeInvalidPayload, "notification id is required")
		return
	}
	if h.store != nil {
		if err := h.store.MarkNotificationRead(ctx, notificationID); err != nil {
			h.log.Error().Err(err).Str("notification_id", notificationID).Msg("mark notification read failed")
			h.sendError(c, ErrCodeStoreError, "failed to mark notification read")
			return
		}
	}
	h.send(c, &Event{Kind: EventNotificationRead, NotificationID: notificationID})
}

// persist runs a durable-store write with bounded retry and short backoff.
// Retrying inline on the hub goroutine is what keeps a sender's messages in
// send order.
func (h *Hub) persist(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < persistAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
		if err = op(ctx); err == nil {
			return nil
		}
	}
	return err
}

func (h *Hub) enqueue(ctx context.Context, kind buffer.Kind, userID string, record any) {
	if h.buffer == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("marshal buffered item")
		return
	}
	if err := h.buffer.Enqueue(ctx, kind, userID, payload); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("enqueue buffered item")
	}
}

// broadcastAll sends the event to every live connection except the excluded
// one.
func (h *Hub) broadcastAll(event *Event, except *Client) {
	for client := range h.clients {
		if client == except {
			continue
		}
		h.send(client, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}

func (h *Hub) sendError(c *Client, code, msg string) {
	h.send(c, &Event{Kind: EventError, Error: coreError(code, msg)})
}
