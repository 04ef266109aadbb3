package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/store"
)

// StatusReader returns the persisted status of a user when it lives outside
// the user table.
type StatusReader interface {
	UserStatus(ctx context.Context, userID string) (string, error)
}

// UserHandlers provides HTTP handlers for user and presence queries.
type UserHandlers struct {
	users   store.UserStore
	status  StatusReader
	updates store.StatusStore
	hub     *core.Hub
	log     *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance. status may be nil;
// updates receives statuses set through the API.
func NewUserHandlers(users store.UserStore, status StatusReader, updates store.StatusStore, hub *core.Hub, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		users:   users,
		status:  status,
		updates: updates,
		hub:     hub,
		log:     logger,
	}
}

// UpdateStatusRequest sets the caller's persisted status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=online offline away busy"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// PresenceResponse describes where a user is reachable.
type PresenceResponse struct {
	UserID       string `json:"userId"`
	IsOnline     bool   `json:"isOnline"`
	ConnectionID string `json:"connectionId,omitempty"`
	SignalingID  string `json:"signalingId,omitempty"`
}

// Me returns the authenticated user with persisted and live status.
// GET /api/users/me
func (h *UserHandlers) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	u, err := h.users.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", uid).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	resp := userToResponse(u)

	if h.status != nil {
		status, err := h.status.UserStatus(ctx, uid)
		switch {
		case err == nil:
			resp.Status = status
		case !errors.Is(err, store.ErrNotFound):
			h.log.Warn().Err(err).Str("user_id", uid).Msg("failed to read status")
		}
	}

	live, err := h.hub.Lookup(ctx, core.UserID(uid))
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", uid).Msg("presence lookup failed")
	}
	resp.Online = live.Online

	c.JSON(http.StatusOK, resp)
}

// ListUsers returns every other user sorted by name, with live presence.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	users, err := h.users.ListUsers(ctx, uid)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error fetching users"})
		return
	}

	online := make(map[core.UserID]bool)
	entries, err := h.hub.Snapshot(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("presence snapshot failed")
	}
	for _, e := range entries {
		online[e.User] = true
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		item := userToResponse(u)
		if h.status != nil {
			if status, err := h.status.UserStatus(ctx, u.ID); err == nil {
				item.Status = status
			}
		}
		item.Online = online[core.UserID(u.ID)]
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus records a status chosen by the caller.
// PATCH /api/users/status
func (h *UserHandlers) UpdateStatus(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.updates.SetUserStatus(c.Request.Context(), uid, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", uid).Msg("failed to update status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error updating status"})
		return
	}

	h.log.Info().Str("user_id", uid).Str("status", req.Status).Msg("status updated")
	c.JSON(http.StatusOK, MessageResponse{Message: "status updated"})
}

// ListPresence returns every online user.
// GET /api/presence
func (h *UserHandlers) ListPresence(c *gin.Context) {
	entries, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("presence snapshot failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "presence unavailable"})
		return
	}

	resp := make([]PresenceResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, PresenceResponse{
			UserID:       string(e.User),
			IsOnline:     true,
			ConnectionID: string(e.Conn),
			SignalingID:  string(e.Signaling),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetPresence resolves one user.
// GET /api/presence/:userId
func (h *UserHandlers) GetPresence(c *gin.Context) {
	target := c.Param("userId")
	res, err := h.hub.Lookup(c.Request.Context(), core.UserID(target))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", target).Msg("presence lookup failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "presence unavailable"})
		return
	}

	c.JSON(http.StatusOK, PresenceResponse{
		UserID:       target,
		IsOnline:     res.Online,
		ConnectionID: string(res.Conn),
		SignalingID:  string(res.Signaling),
	})
}
