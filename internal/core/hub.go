package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type envelopeKind int

const (
	envRegister envelopeKind = iota
	envCommand
	envUnregister
	envQuery
)

type envelope struct {
	kind   envelopeKind
	client *Client
	cmd    *Command
	query  func()
}

// Hub owns all presence and room state. Every mutation happens on the Run
// goroutine, one inbox item at a time, so none of that state is locked.
type Hub struct {
	inbox    chan envelope
	done     chan struct{}
	stopOnce sync.Once

	clients  map[ConnID]*Client
	registry *Registry
	rooms    *Rooms

	status      StatusWriter
	sink        MessageSink
	statusJobs  *jobQueue
	archiveJobs *jobQueue
	drainGrace  time.Duration

	log *zerolog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithStatusWriter persists presence transitions through w.
func WithStatusWriter(w StatusWriter) Option {
	return func(h *Hub) { h.status = w }
}

// WithMessageSink archives delivered chat messages through s.
func WithMessageSink(s MessageSink) Option {
	return func(h *Hub) { h.sink = s }
}

// WithLogger sets the hub logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHub creates a hub. Without options it keeps presence in memory only.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		inbox:    make(chan envelope),
		done:     make(chan struct{}),
		clients:  make(map[ConnID]*Client),
		registry: NewRegistry(),
		rooms:    NewRooms(),
		log:      &nop,

		drainGrace: defaultDrainGrace,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.statusJobs = newJobQueue("status", 0, 0, h.log)
	h.archiveJobs = newJobQueue("archive", 0, 0, h.log)
	return h
}

// Run processes the inbox until ctx is cancelled. On exit every online user
// is persisted as offline, every client's event channel is closed and the
// pending side effects get a short grace period to finish.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	go h.statusJobs.run()
	go h.archiveJobs.run()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

// RegisterClient adds c to the hub and starts forwarding its commands.
// The registration is processed before any of c's commands.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.inbox <- envelope{kind: envRegister, client: c}:
	case <-h.done:
		return ErrHubStopped
	}
	go h.forward(c)
	return nil
}

// UnregisterClient signals that c's connection closed. Commands already
// written to c.Commands are still processed, then the disconnect.
func (h *Hub) UnregisterClient(c *Client) {
	c.closeCommands()
}

// forward moves c's commands into the shared inbox, preserving their order,
// and queues the disconnect once c.Commands is closed.
func (h *Hub) forward(c *Client) {
	for cmd := range c.Commands {
		if cmd == nil {
			continue
		}
		select {
		case h.inbox <- envelope{kind: envCommand, client: c, cmd: cmd}:
		case <-h.done:
			return
		}
	}
	select {
	case h.inbox <- envelope{kind: envUnregister, client: c}:
	case <-h.done:
	}
}

// Snapshot returns every presence entry.
func (h *Hub) Snapshot(ctx context.Context) ([]PresenceEntry, error) {
	return query(ctx, h, h.registry.Snapshot)
}

// Lookup resolves user to its current connection and signaling id.
func (h *Hub) Lookup(ctx context.Context, user UserID) (Lookup, error) {
	return query(ctx, h, func() Lookup { return h.registry.Lookup(user) })
}

// ConnectedClients returns the number of live connections.
func (h *Hub) ConnectedClients(ctx context.Context) (int, error) {
	return query(ctx, h, func() int { return len(h.clients) })
}

func query[T any](ctx context.Context, h *Hub, fn func() T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case h.inbox <- envelope{kind: envQuery, query: func() { reply <- fn() }}:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.done:
		return zero, ErrHubStopped
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.done:
		return zero, ErrHubStopped
	}
}

func (h *Hub) handle(env envelope) {
	switch env.kind {
	case envRegister:
		h.clients[env.client.ID] = env.client
		h.log.Debug().Str("conn_id", string(env.client.ID)).Int("clients", len(h.clients)).Msg("client registered")
	case envUnregister:
		h.disconnect(env.client)
	case envCommand:
		if _, ok := h.clients[env.client.ID]; !ok {
			return
		}
		h.dispatch(env.client, env.cmd)
	case envQuery:
		env.query()
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandAnnounceIdentity:
		h.announceIdentity(c, cmd.User)
	case CommandAnnounceSignaling:
		h.announceSignaling(c, cmd.User, cmd.Signaling)
	case CommandFetchSignaling:
		h.fetchSignaling(c, cmd)
	case CommandRequestCall:
		h.requestCall(c, cmd.Target)
	case CommandAcceptCall:
		h.acceptCall(c, cmd.Target)
	case CommandSignalError:
		h.signalError(c, cmd.Target, cmd.Error)
	case CommandEndCall:
		h.endCall(c, cmd.Target)
	case CommandRejectCall:
		h.rejectCall(c, cmd.Target)
	case CommandRelayAnnotation:
		h.relayAnnotation(c, cmd.Target, cmd.Payload)
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room)
	case CommandLeaveRoom:
		h.leaveRoom(c, cmd.Room)
	case CommandSendMessage:
		h.sendMessage(c, cmd.Message)
	case CommandBoardMutation:
		h.relayBoard(c, cmd.Board, cmd.Room, cmd.Payload)
	default:
		h.send(c.ID, &Event{Kind: EventError, RequestID: cmd.RequestID, Error: coreError(ErrCodeUnknownType, "unknown command")})
	}
}

// send queues ev for one connection. A full queue drops the event.
func (h *Hub) send(conn ConnID, ev *Event) bool {
	c, ok := h.clients[conn]
	if !ok {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		h.log.Warn().Str("conn_id", string(conn)).Int("event", int(ev.Kind)).Msg("client queue full, dropping event")
		return false
	}
}

// broadcast queues ev for every connection except the one given.
func (h *Hub) broadcast(ev *Event, except ConnID) {
	for id := range h.clients {
		if id == except {
			continue
		}
		h.send(id, ev)
	}
}

func (h *Hub) shutdown() {
	online := h.registry.Snapshot()
	for _, entry := range online {
		h.registry.Remove(entry.Conn, entry.User)
		h.persistStatus(entry.User, StatusOffline)
	}
	for id, c := range h.clients {
		close(c.Events)
		delete(h.clients, id)
	}

	statusDone := h.statusJobs.drain(h.drainGrace)
	archiveDone := h.archiveJobs.drain(h.drainGrace)
	h.log.Info().Int("went_offline", len(online)).Bool("status_drained", statusDone).Bool("archive_drained", archiveDone).Msg("hub stopped")
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
