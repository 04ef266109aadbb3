package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeAnnounceIdentity  = "announce_identity"
	InboundTypeAnnounceSignaling = "announce_signaling_identity"
	InboundTypeFetchSignaling    = "fetch_signaling_identity"
	InboundTypeRequestCall       = "request_call"
	InboundTypeAcceptCall        = "accept_call"
	InboundTypeSignalError       = "signal_error"
	InboundTypeEndCall           = "end_call"
	InboundTypeRejectCall        = "reject_call"
	InboundTypeRelayAnnotation   = "relay_annotation"
	InboundTypeJoinRoom          = "join_room"
	InboundTypeLeaveRoom         = "leave_room"
	InboundTypeSendMessage       = "send_message"
	InboundTypeCardMoved         = "card_moved"
	InboundTypeCardCreated       = "card_created"
	InboundTypeCardDeleted       = "card_deleted"
	InboundTypeSectionUpdated    = "section_updated"
	InboundTypeSectionCreated    = "section_created"
	InboundTypeSectionDeleted    = "section_deleted"

	OutboundTypeEvent = "event"
	OutboundTypeAck   = "ack"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventOnlineUsers      = "online_users_snapshot"
	EventUserConnected    = "user_connected"
	EventUserStatusChange = "user_status_change"
	EventPeerUpdated      = "peer_updated"
	EventUserDisconnected = "user_disconnected"
	EventIncomingCall     = "incoming_call"
	EventCallAccepted     = "call_accepted"
	EventCallFailed       = "call_failed"
	EventCallEnded        = "call_ended"
	EventCallRejected     = "call_rejected"
	EventAnnotation       = "receive_annotation"
	EventMessage          = "receive_message"
	EventCardUpdated      = "card_updated"
	EventNewCard          = "new_card"
	EventSectionChanged   = "section_changed"
	EventNewSection       = "new_section"
	EventDeleteCard       = "delete_card"
	EventDeleteSection    = "delete_section"
)

// Message field names with routing meaning. Every other field of a chat
// message is opaque to the server.
const (
	FieldRoomID  = "roomId"
	FieldContent = "content"
)

// IdentityData announces the user behind a connection. Clients may also send
// the bare user id string.
type IdentityData struct {
	UserID string `json:"userId"`
}

// SignalingData announces the signaling id of a user.
type SignalingData struct {
	UserID      string `json:"userId"`
	SignalingID string `json:"signalingId"`
}

// TargetData addresses a call signaling event to a user.
type TargetData struct {
	TargetUserID string `json:"targetUserId"`
}

// SignalErrorData reports a peer connection failure to the other side.
type SignalErrorData struct {
	TargetUserID string `json:"targetUserId"`
	Error        string `json:"error"`
}

// AnnotationData carries a drawing payload to the other side of a call.
type AnnotationData struct {
	TargetUserID string          `json:"targetUserId"`
	Payload      json.RawMessage `json:"payload"`
}

// RoomData selects a room for join_room and leave_room. Clients may also
// send the bare room id string.
type RoomData struct {
	RoomID string `json:"roomId"`
}

// BoardData is the routing part of a board mutation; the rest of the object
// is relayed verbatim.
type BoardData struct {
	BoardID string `json:"boardId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// OnlineUser is one entry of the online users snapshot.
type OnlineUser struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	SignalingID  string `json:"signalingId,omitempty"`
}

// EventUserStatus announces a persisted presence transition.
type EventUserStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// EventUserConnectedData tells other connections a user came online.
type EventUserConnectedData struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	SignalingID  string `json:"signalingId,omitempty"`
}

// EventPeerUpdatedData announces a new signaling id.
type EventPeerUpdatedData struct {
	UserID      string `json:"userId"`
	SignalingID string `json:"signalingId"`
}

// EventUserRef names the user an event is about.
type EventUserRef struct {
	UserID string `json:"userId"`
}

// SignalingIdentity answers fetch_signaling_identity.
type SignalingIdentity struct {
	SignalingID  string `json:"signalingId,omitempty"`
	IsOnline     bool   `json:"isOnline"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// EventIncomingCallData is delivered to the callee.
type EventIncomingCallData struct {
	CallerID          string `json:"callerId"`
	CallerSignalingID string `json:"callerSignalingId,omitempty"`
}

// EventCallAcceptedData is delivered to the caller.
type EventCallAcceptedData struct {
	AnswererID          string `json:"answererId,omitempty"`
	AnswererSignalingID string `json:"answererSignalingId,omitempty"`
}

// EventCallFailedData reports why a call could not proceed.
type EventCallFailedData struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EventAnnotationData relays an annotation payload.
type EventAnnotationData struct {
	FromUserID string `json:"fromUserId,omitempty"`
	Payload    any    `json:"payload"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
