package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOnlineUsers delivers every presence entry to a freshly announced client.
	EventOnlineUsers EventKind = iota
	// EventUserConnected tells the other clients that a user came online.
	EventUserConnected
	// EventUserStatusChange announces an online/offline transition.
	EventUserStatusChange
	// EventPeerUpdated announces a changed signaling id.
	EventPeerUpdated
	// EventUserDisconnected follows the offline status change.
	EventUserDisconnected
	// EventSignalingIdentity answers a fetch_signaling_identity request.
	EventSignalingIdentity

	// Call signaling
	EventIncomingCall
	EventCallAccepted
	EventCallFailed
	EventCallEnded
	EventCallRejected
	EventAnnotation

	// EventRoomMessage carries a chat message.
	EventRoomMessage

	// Board events
	EventCardUpdated
	EventNewCard
	EventSectionChanged
	EventNewSection
	EventDeleteCard
	EventDeleteSection

	// EventError notifies the client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	RequestID string

	User      UserID
	Conn      ConnID
	Signaling SignalingID
	Status    Status

	Entries []PresenceEntry // EventOnlineUsers
	Lookup  *Lookup         // EventSignalingIdentity
	Call    *CallEvent
	Message Message
	Payload any
	Error   *CoreError
}

// CallEvent holds the fields of a relayed call-signaling event.
type CallEvent struct {
	From          UserID
	FromSignaling SignalingID
	Error         string
	Payload       any
}
