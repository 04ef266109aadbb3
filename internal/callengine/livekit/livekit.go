package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/huddlehq/huddle-server/internal/callengine"
)

// LiveKitEngine implements callengine.Engine using LiveKit as the media backend.
type LiveKitEngine struct {
	apiKey    string
	apiSecret string
	wsURL     string
	validFor  time.Duration
}

// New creates a new LiveKitEngine. Tokens are valid for one hour.
func New(apiKey, apiSecret, wsURL string) *LiveKitEngine {
	return &LiveKitEngine{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
		validFor:  time.Hour,
	}
}

// GenerateJoinInfo creates join credentials for the pair room of userID and
// peerUserID. LiveKit creates rooms on demand when the first user joins.
func (e *LiveKitEngine) GenerateJoinInfo(_ context.Context, userID, name, peerUserID string) (*callengine.JoinInfo, error) {
	if userID == peerUserID {
		return nil, callengine.ErrSamePeer
	}

	roomName := callengine.PairRoomName(userID, peerUserID)
	identity := "user-" + userID

	at := auth.NewAccessToken(e.apiKey, e.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(e.validFor)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &callengine.JoinInfo{
		URL:      e.wsURL,
		Token:    token,
		RoomName: roomName,
		Identity: identity,
	}, nil
}

var _ callengine.Engine = (*LiveKitEngine)(nil)
