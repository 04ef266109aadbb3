package core

import "sync"

const (
	defaultCommandBuffer = 16
	defaultEventBuffer   = 64
)

// Client is one live connection as seen by the core layer.
//
// The transport writes to Commands and reads from Events. The hub closes
// Events once it has processed the disconnect; the transport signals the
// disconnect by calling Hub.UnregisterClient, after which it must not write
// to Commands again.
type Client struct {
	ID ConnID
	// AuthUser is the user proven at handshake, empty for anonymous
	// connections. When set, the client may only announce that identity.
	AuthUser UserID
	Commands chan *Command
	Events   chan *Event

	// user is the announced identity; only the hub loop touches it.
	user UserID

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels. eventBuffer bounds
// the outbound queue; events beyond it are dropped.
func NewClient(id ConnID, authUser UserID, eventBuffer int) *Client {
	if eventBuffer <= 0 {
		eventBuffer = defaultEventBuffer
	}
	return &Client{
		ID:       id,
		AuthUser: authUser,
		Commands: make(chan *Command, defaultCommandBuffer),
		Events:   make(chan *Event, eventBuffer),
	}
}

func (c *Client) closeCommands() {
	c.closeOnce.Do(func() { close(c.Commands) })
}
