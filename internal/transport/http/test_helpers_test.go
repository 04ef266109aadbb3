package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/auth"
	"github.com/huddlehq/huddle-server/internal/config"
	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/proto"
	"github.com/huddlehq/huddle-server/internal/store"
	"github.com/huddlehq/huddle-server/internal/store/sqlite"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	ts      *httptest.Server
	hub     *core.Hub
	auth    *auth.Service
	store   store.Store
	stopHub func()
}

// wireOutbound mirrors proto.Outbound with the data left undecoded.
type wireOutbound struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

var requestSeq atomic.Int64

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.JWTSecret = testJWTSecret
	cfg.RateLimitPerMinute = 0
	return cfg
}

func newTestEnv(t *testing.T, mutate func(*config.Config), opts ...ServerOption) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	})

	hub := core.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, authService, st, &cfg, &disabledLogger, opts...)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	stopHub := func() {
		cancel()
		<-hubDone
	}
	return &testEnv{ts: ts, hub: hub, auth: authService, store: st, stopHub: stopHub}
}

func (e *testEnv) wsURL(query string) string {
	u := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func (e *testEnv) dial(t *testing.T, ctx context.Context, query string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, e.wsURL(query), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ, id string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, ID: id, Data: raw}); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// barrier sends a fetch request and returns every frame received before its
// ack. The hub handles one connection's commands in order, so all earlier
// commands of conn have been processed once the ack arrives.
func barrier(t *testing.T, ctx context.Context, conn *websocket.Conn) []wireOutbound {
	t.Helper()

	id := fmt.Sprintf("barrier-%d", requestSeq.Add(1))
	send(t, ctx, conn, proto.InboundTypeFetchSignaling, id, proto.TargetData{})

	var got []wireOutbound
	for {
		out := read(t, ctx, conn)
		if out.Type == proto.OutboundTypeAck && out.ID == id {
			return got
		}
		got = append(got, out)
	}
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) wireOutbound {
	t.Helper()

	var out wireOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

// announce binds conn to user and discards the resulting frames.
func announce(t *testing.T, ctx context.Context, conn *websocket.Conn, user string) {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypeAnnounceIdentity, "", user)
	barrier(t, ctx, conn)
}

func events(frames []wireOutbound, name string) []wireOutbound {
	var out []wireOutbound
	for _, f := range frames {
		if f.Type == proto.OutboundTypeEvent && f.Event == name {
			out = append(out, f)
		}
	}
	return out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}
