package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/callengine"
)

// CallsHandlers hands out media relay credentials.
type CallsHandlers struct {
	engine callengine.Engine
	log    *zerolog.Logger
}

// NewCallsHandlers creates a new calls handlers instance. A nil engine
// disables the media relay.
func NewCallsHandlers(engine callengine.Engine, logger *zerolog.Logger) *CallsHandlers {
	return &CallsHandlers{
		engine: engine,
		log:    logger,
	}
}

// MediaTokenRequest names the other side of the call.
type MediaTokenRequest struct {
	PeerUserID string `json:"peerUserId" binding:"required"`
}

// MediaToken returns credentials for the relay room shared with the peer.
// POST /api/calls/media-token
func (h *CallsHandlers) MediaToken(c *gin.Context) {
	if h.engine == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "media relay is not available"})
		return
	}

	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req MediaTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid media token request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	info, err := h.engine.GenerateJoinInfo(c.Request.Context(), uid, c.GetString(ContextKeyName), req.PeerUserID)
	if err != nil {
		if errors.Is(err, callengine.ErrSamePeer) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot call yourself"})
			return
		}
		h.log.Error().Err(err).Str("user_id", uid).Str("peer_user_id", req.PeerUserID).Msg("failed to generate join info")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("user_id", uid).Str("room", info.RoomName).Msg("media token issued")
	c.JSON(http.StatusOK, info)
}
