package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var barrierSeq atomic.Int64

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(opts...)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(ConnID(id), "", 0)
	if err := hub.RegisterClient(c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	return c
}

// announce binds c to user and discards the events that produces.
func announce(t *testing.T, c *Client, user string) {
	t.Helper()

	c.Commands <- &Command{Kind: CommandAnnounceIdentity, User: UserID(user)}
	drain(t, c)
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain returns every event queued for c before a barrier request sent now.
// The hub handles one connection's commands in order, so once the barrier is
// answered every earlier command of c has been fully processed.
func drain(t *testing.T, c *Client) []*Event {
	t.Helper()

	id := fmt.Sprintf("barrier-%d", barrierSeq.Add(1))
	c.Commands <- &Command{Kind: CommandFetchSignaling, RequestID: id}

	var got []*Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events:
			if !ok {
				t.Fatalf("events of %s closed before barrier", c.ID)
			}
			if ev.Kind == EventSignalingIdentity && ev.RequestID == id {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("barrier for %s not answered", c.ID)
		}
	}
}

// waitClosed blocks until the hub has processed c's disconnect.
func waitClosed(t *testing.T, c *Client) {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatalf("events of %s never closed", c.ID)
		}
	}
}

func ofKind(events []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
