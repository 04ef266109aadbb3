package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAnnounceIdentity binds the connection to a logical user.
	CommandAnnounceIdentity CommandKind = iota
	// CommandAnnounceSignaling records the user's peer-signaling id.
	CommandAnnounceSignaling
	// CommandFetchSignaling asks where a user can be reached.
	CommandFetchSignaling
	// CommandRequestCall rings the target user.
	CommandRequestCall
	// CommandAcceptCall tells the caller the call was answered.
	CommandAcceptCall
	// CommandSignalError forwards a negotiation error to the peer.
	CommandSignalError
	// CommandEndCall tells the peer the call is over.
	CommandEndCall
	// CommandRejectCall tells the caller the call was declined.
	CommandRejectCall
	// CommandRelayAnnotation forwards a drawing payload to the peer.
	CommandRelayAnnotation
	// CommandJoinRoom subscribes the client to a room.
	CommandJoinRoom
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandSendMessage delivers a chat message to a room or a user.
	CommandSendMessage
	// CommandBoardMutation relays a kanban change to the other board members.
	CommandBoardMutation
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	// RequestID correlates a response with the request that produced it.
	RequestID string

	User      UserID
	Signaling SignalingID
	Target    UserID
	Room      Room
	Error     string
	Payload   any
	Message   Message
	Board     BoardMutation
}
