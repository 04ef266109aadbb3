package core

// Call signaling is a single-shot relay between two users. Targets are
// resolved through the registry on every call, so an event never reaches a
// connection the target has since replaced.

func (h *Hub) fetchSignaling(c *Client, cmd *Command) {
	res := h.registry.Lookup(cmd.Target)
	h.send(c.ID, &Event{Kind: EventSignalingIdentity, RequestID: cmd.RequestID, User: cmd.Target, Lookup: &res})
}

func (h *Hub) requestCall(c *Client, target UserID) {
	if target == "" {
		return
	}
	conn, ok := h.registry.ConnOf(target)
	if !ok {
		h.send(c.ID, &Event{
			Kind:  EventCallFailed,
			User:  target,
			Call:  &CallEvent{Error: ErrCodeUnavailable},
			Error: coreError(ErrCodeUnavailable, "User is not available"),
		})
		return
	}
	h.send(conn, &Event{
		Kind: EventIncomingCall,
		Call: &CallEvent{From: c.user, FromSignaling: h.liveSignaling(c.user)},
	})
}

func (h *Hub) acceptCall(c *Client, target UserID) {
	h.relay(target, &Event{
		Kind: EventCallAccepted,
		Call: &CallEvent{From: c.user, FromSignaling: h.liveSignaling(c.user)},
	})
}

func (h *Hub) signalError(c *Client, target UserID, reason string) {
	h.relay(target, &Event{Kind: EventCallFailed, Call: &CallEvent{From: c.user, Error: reason}})
}

func (h *Hub) endCall(c *Client, target UserID) {
	h.relay(target, &Event{Kind: EventCallEnded, Call: &CallEvent{From: c.user}})
}

func (h *Hub) rejectCall(c *Client, target UserID) {
	h.relay(target, &Event{Kind: EventCallRejected, Call: &CallEvent{From: c.user}})
}

func (h *Hub) relayAnnotation(c *Client, target UserID, payload any) {
	h.relay(target, &Event{Kind: EventAnnotation, Call: &CallEvent{From: c.user, Payload: payload}})
}

// relay delivers ev to target's connection, dropping it silently when the
// target is offline.
func (h *Hub) relay(target UserID, ev *Event) bool {
	if target == "" {
		return false
	}
	conn, ok := h.registry.ConnOf(target)
	if !ok {
		h.log.Debug().Str("user_id", string(target)).Int("event", int(ev.Kind)).Msg("relay target offline, dropped")
		return false
	}
	return h.send(conn, ev)
}

// liveSignaling is the signaling id on user's presence entry, if online.
func (h *Hub) liveSignaling(user UserID) SignalingID {
	if user == "" {
		return ""
	}
	res := h.registry.Lookup(user)
	if !res.Online {
		return ""
	}
	return res.Signaling
}
