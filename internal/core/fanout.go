package core

import "context"

func (h *Hub) joinRoom(c *Client, room Room) {
	if h.rooms.Join(c.ID, room) {
		h.log.Debug().Str("conn_id", string(c.ID)).Str("room", room.Key()).Msg("joined room")
	}
}

func (h *Hub) leaveRoom(c *Client, room Room) {
	if h.rooms.Leave(c.ID, room) {
		h.log.Debug().Str("conn_id", string(c.ID)).Str("room", room.Key()).Msg("left room")
	}
}

// sendMessage routes a chat message. Direct messages go to the recipient's
// live connection, re-addressed to the sender's direct room, and are echoed
// to the sender unchanged. Room messages go to every member, sender included.
func (h *Hub) sendMessage(c *Client, msg Message) {
	if msg.Room.ID == "" {
		return
	}
	msg.From = c.user

	if msg.Room.IsDirect() {
		if c.user == "" {
			h.log.Debug().Str("conn_id", string(c.ID)).Msg("direct message from anonymous connection ignored")
			return
		}
		if conn, ok := h.registry.ConnOf(msg.Room.Recipient()); ok && conn != c.ID {
			h.send(conn, &Event{Kind: EventRoomMessage, Message: msg.withRoom(DirectRoom(c.user))})
		}
		h.send(c.ID, &Event{Kind: EventRoomMessage, Message: msg})
		h.archive(msg)
		return
	}

	ev := &Event{Kind: EventRoomMessage, Message: msg}
	for _, conn := range h.rooms.Members(msg.Room) {
		h.send(conn, ev)
	}
	h.archive(msg)
}

// relayBoard notifies the other members of a board room. The originating
// client has already applied the change locally, so it is skipped.
func (h *Hub) relayBoard(c *Client, mutation BoardMutation, room Room, payload any) {
	kind, ok := boardEvents[mutation]
	if !ok || room.ID == "" {
		return
	}
	ev := &Event{Kind: kind, User: c.user, Payload: payload}
	for _, conn := range h.rooms.Members(room) {
		if conn == c.ID {
			continue
		}
		h.send(conn, ev)
	}
}

func (h *Hub) archive(msg Message) {
	if h.sink == nil {
		return
	}
	sink := h.sink
	h.archiveJobs.enqueue(job{
		name: "archive_message",
		user: msg.From,
		fn: func(ctx context.Context) error {
			return sink.Archive(ctx, msg)
		},
	})
}
