package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/auth"
	"github.com/huddlehq/huddle-server/internal/callengine"
	"github.com/huddlehq/huddle-server/internal/config"
	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/store"
)

type serverOptions struct {
	engine  callengine.Engine
	status  StatusReader
	updates store.StatusStore
}

// ServerOption configures optional collaborators of the HTTP server.
type ServerOption func(*serverOptions)

// WithCallEngine enables the media relay token endpoint.
func WithCallEngine(e callengine.Engine) ServerOption {
	return func(o *serverOptions) { o.engine = e }
}

// WithStatusReader reads persisted status from r instead of the user table.
func WithStatusReader(r StatusReader) ServerOption {
	return func(o *serverOptions) { o.status = r }
}

// WithStatusStore sends statuses set through the API to s instead of the
// user table.
func WithStatusStore(s store.StatusStore) ServerOption {
	return func(o *serverOptions) { o.updates = s }
}

// NewServer builds the HTTP server. The websocket endpoint sits on the plain
// mux since it hijacks the connection; gin serves the health check and REST API.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger, opts ...ServerOption) *stdhttp.Server {
	o := serverOptions{updates: st}
	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler(hub, logger))

	api := router.Group("/api")
	api.Use(LoggerMiddleware(logger))

	authHandlers := NewAPIHandlers(authService, logger)
	api.POST("/auth/register", authHandlers.Register)
	api.POST("/auth/login", authHandlers.Login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(authService, logger))

	userHandlers := NewUserHandlers(st, o.status, o.updates, hub, logger)
	protected.GET("/users", userHandlers.ListUsers)
	protected.GET("/users/me", userHandlers.Me)
	protected.PATCH("/users/status", userHandlers.UpdateStatus)
	protected.GET("/presence", userHandlers.ListPresence)
	protected.GET("/presence/:userId", userHandlers.GetPresence)

	callsHandlers := NewCallsHandlers(o.engine, logger)
	protected.POST("/calls/media-token", callsHandlers.MediaToken)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// HealthResponse reports liveness and the number of open connections.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func healthHandler(hub *core.Hub, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		n, err := hub.ConnectedClients(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("health check failed")
			c.JSON(stdhttp.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
		c.JSON(stdhttp.StatusOK, HealthResponse{Status: "ok", Connections: n})
	}
}
