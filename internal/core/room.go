package core

import "strings"

// UserID identifies an authenticated account.
type UserID string

// ConnID identifies one live websocket connection.
type ConnID string

// SignalingID is the address a peer-signaling client registered with.
type SignalingID string

// Status is the persisted presence status of a user.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// directRoomPrefix marks a direct-message room on the wire.
const directRoomPrefix = "dm-"

// RoomKind distinguishes broadcast scopes.
type RoomKind int

const (
	// RoomChannel is a chat channel subscribed to with join_room.
	RoomChannel RoomKind = iota
	// RoomBoard is a kanban board room.
	RoomBoard
	// RoomDirect is the synthetic room addressing a single user.
	RoomDirect
)

// Room is a broadcast scope. Direct rooms are computed from a user id and
// never stored in the membership table.
type Room struct {
	Kind RoomKind
	ID   string
}

// ChannelRoom returns the room of a chat channel.
func ChannelRoom(id string) Room { return Room{Kind: RoomChannel, ID: id} }

// BoardRoom returns the room of a kanban board.
func BoardRoom(id string) Room { return Room{Kind: RoomBoard, ID: id} }

// DirectRoom returns the direct-message room addressing user.
func DirectRoom(user UserID) Room { return Room{Kind: RoomDirect, ID: string(user)} }

// ParseRoom decodes a wire room id. A "dm-" prefix denotes a direct room;
// anything else is a channel. Empty ids and a bare prefix are rejected.
func ParseRoom(wire string) (Room, bool) {
	if wire == "" {
		return Room{}, false
	}
	if rest, ok := strings.CutPrefix(wire, directRoomPrefix); ok {
		if rest == "" {
			return Room{}, false
		}
		return DirectRoom(UserID(rest)), true
	}
	return ChannelRoom(wire), true
}

// Key is the wire form of the room. Channels and boards share the id
// namespace, so a client that joined a board id via join_room receives the
// board's mutation events.
func (r Room) Key() string {
	if r.Kind == RoomDirect {
		return directRoomPrefix + r.ID
	}
	return r.ID
}

// IsDirect reports whether the room addresses a single user.
func (r Room) IsDirect() bool { return r.Kind == RoomDirect }

// Recipient returns the user a direct room addresses.
func (r Room) Recipient() UserID {
	if r.Kind != RoomDirect {
		return ""
	}
	return UserID(r.ID)
}
