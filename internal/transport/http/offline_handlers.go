package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mavihs13/edunet-realtime/internal/buffer"
	"github.com/mavihs13/edunet-realtime/internal/core"
)

// OfflineHandlers serves the REST pull path that drains a user's offline
// buffer after a reconnect. The caller always drains their own buffer; the
// identity comes from the verified token, never from the request.
type OfflineHandlers struct {
	buf buffer.Buffer
	log *zerolog.Logger
}

// NewOfflineHandlers creates handlers over the offline buffer.
func NewOfflineHandlers(buf buffer.Buffer, logger *zerolog.Logger) *OfflineHandlers {
	return &OfflineHandlers{buf: buf, log: logger}
}

// DrainResponse carries drained items in arrival order (oldest first).
type DrainResponse struct {
	Items []json.RawMessage `json:"items"`
}

// DrainMessages drains buffered direct messages for the caller.
// GET /api/offline/messages
func (h *OfflineHandlers) DrainMessages(c *gin.Context) {
	h.drain(c, buffer.KindMessages)
}

// DrainNotifications drains buffered notifications for the caller.
// GET /api/offline/notifications
func (h *OfflineHandlers) DrainNotifications(c *gin.Context) {
	h.drain(c, buffer.KindNotifications)
}

func (h *OfflineHandlers) drain(c *gin.Context, kind buffer.Kind) {
	userID := c.GetString(ContextKeyUserID)

	items, err := h.buf.Drain(c.Request.Context(), kind, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("drain offline buffer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := DrainResponse{Items: make([]json.RawMessage, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, json.RawMessage(item))
	}
	c.JSON(http.StatusOK, resp)
}

// PresenceHandlers answers presence queries from the REST surface.
type PresenceHandlers struct {
	registry *core.Registry
}

// NewPresenceHandlers creates handlers over the presence registry.
func NewPresenceHandlers(registry *core.Registry) *PresenceHandlers {
	return &PresenceHandlers{registry: registry}
}

// PresenceResponse reports a single user's online state.
type PresenceResponse struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// Status reports whether a user has a live connection.
// GET /api/presence/:userId
func (h *PresenceHandlers) Status(c *gin.Context) {
	userID := c.Param("userId")
	c.JSON(http.StatusOK, PresenceResponse{
		UserID:   userID,
		IsOnline: h.registry.IsOnline(userID),
	})
}

// OnlineResponse lists all users currently online.
type OnlineResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Online lists the ids of all online users.
// GET /api/presence
func (h *PresenceHandlers) Online(c *gin.Context) {
	users := h.registry.OnlineUsers()
	c.JSON(http.StatusOK, OnlineResponse{Count: len(users), Users: users})
}
