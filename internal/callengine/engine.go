// Package callengine hands out media relay credentials for calls whose
// peer-to-peer connection cannot be established. Signaling itself never
// passes through here.
package callengine

import (
	"context"
	"errors"
	"fmt"
)

// ErrSamePeer is returned when a user asks for a room with themselves.
var ErrSamePeer = errors.New("peer must differ from caller")

// JoinInfo contains information needed to join a media room.
type JoinInfo struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomName string `json:"roomName"`
	Identity string `json:"identity"`
}

// Engine abstracts the media backend.
type Engine interface {
	// GenerateJoinInfo creates credentials for userID to join the room it
	// shares with peerUserID.
	GenerateJoinInfo(ctx context.Context, userID, name, peerUserID string) (*JoinInfo, error)
}

// PairRoomName is the media room shared by two users. Both sides compute the
// same name regardless of who asks first.
func PairRoomName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("huddle-dm-%s-%s", a, b)
}
