package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mavihs13/edunet-realtime/internal/auth"
	"github.com/mavihs13/edunet-realtime/internal/buffer"
	"github.com/mavihs13/edunet-realtime/internal/config"
	"github.com/mavihs13/edunet-realtime/internal/core"
)

// NewServer builds the HTTP server: websocket endpoint plus the REST pull
// paths for offline drain and presence queries.
func NewServer(hub *core.Hub, jwtConfig *auth.Config, buf buffer.Buffer, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/healthz", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, jwtConfig, logger)))

	limiter := newRateLimiter(cfg.APIRateLimit)
	limiter.startReset(make(chan struct{})) // lives for the process

	offline := NewOfflineHandlers(buf, logger)
	presence := NewPresenceHandlers(hub.Registry())

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(limiter))
	api.Use(AuthMiddleware(jwtConfig, logger))
	{
		api.GET("/offline/messages", offline.DrainMessages)
		api.GET("/offline/notifications", offline.DrainNotifications)
		api.GET("/presence", presence.Online)
		api.GET("/presence/:userId", presence.Status)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
