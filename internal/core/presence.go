package core

import "context"

// announceIdentity moves user to Online on connection c (last writer wins).
func (h *Hub) announceIdentity(c *Client, user UserID) {
	if user == "" {
		h.log.Debug().Str("conn_id", string(c.ID)).Msg("announce without user id ignored")
		return
	}
	if c.AuthUser != "" && c.AuthUser != user {
		h.log.Warn().Str("conn_id", string(c.ID)).Str("auth_user", string(c.AuthUser)).Str("user_id", string(user)).Msg("announce for foreign identity ignored")
		return
	}
	if c.user != "" && c.user != user {
		h.goOffline(c, c.user)
	}

	entry, previous := h.registry.Announce(c.ID, user)
	c.user = user
	if previous != "" && previous != c.ID {
		h.log.Info().Str("user_id", string(user)).Str("conn_id", string(c.ID)).Str("previous_conn_id", string(previous)).Msg("presence taken over by newer connection")
	}

	h.persistStatus(user, StatusOnline)
	h.broadcast(&Event{Kind: EventUserStatusChange, User: user, Status: StatusOnline}, "")
	h.send(c.ID, &Event{Kind: EventOnlineUsers, Entries: h.registry.Snapshot()})
	h.broadcast(&Event{
		Kind:      EventUserConnected,
		User:      user,
		Conn:      c.ID,
		Signaling: entry.Signaling,
	}, c.ID)

	h.log.Debug().Str("user_id", string(user)).Str("conn_id", string(c.ID)).Int("online", h.registry.Len()).Msg("user online")
}

// announceSignaling records user's signaling id and tells everyone when it
// changed a live entry.
func (h *Hub) announceSignaling(c *Client, user UserID, sig SignalingID) {
	if user == "" || sig == "" {
		return
	}
	if c.AuthUser != "" && c.AuthUser != user {
		h.log.Warn().Str("conn_id", string(c.ID)).Str("user_id", string(user)).Msg("signaling id for foreign identity ignored")
		return
	}
	if !h.registry.SetSignaling(user, sig) {
		h.log.Debug().Str("user_id", string(user)).Msg("signaling id stored before presence")
		return
	}
	h.broadcast(&Event{Kind: EventPeerUpdated, User: user, Signaling: sig}, "")
}

// goOffline moves user back to Unknown if c still owns its entry.
func (h *Hub) goOffline(c *Client, user UserID) bool {
	if !h.registry.Remove(c.ID, user) {
		h.log.Debug().Str("user_id", string(user)).Str("conn_id", string(c.ID)).Msg("stale connection closed, presence kept")
		return false
	}
	h.persistStatus(user, StatusOffline)
	h.broadcast(&Event{Kind: EventUserStatusChange, User: user, Status: StatusOffline}, "")
	h.broadcast(&Event{Kind: EventUserDisconnected, User: user}, "")
	h.log.Debug().Str("user_id", string(user)).Str("conn_id", string(c.ID)).Int("online", h.registry.Len()).Msg("user offline")
	return true
}

// disconnect tears down everything c held. Its own queue is closed last so
// it never receives the notifications about itself.
func (h *Hub) disconnect(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	rooms := h.rooms.DropConnection(c.ID)
	if c.user != "" {
		h.goOffline(c, c.user)
	}
	close(c.Events)
	h.log.Debug().Str("conn_id", string(c.ID)).Int("rooms", rooms).Int("clients", len(h.clients)).Msg("client unregistered")
}

func (h *Hub) persistStatus(user UserID, status Status) {
	if h.status == nil {
		return
	}
	w := h.status
	h.statusJobs.enqueue(job{
		name: "set_status_" + string(status),
		user: user,
		fn: func(ctx context.Context) error {
			return w.SetUserStatus(ctx, user, status)
		},
	})
}
