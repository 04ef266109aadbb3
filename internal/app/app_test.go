package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle-server/internal/config"
	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/store/sqlite"
)

func TestStatusWriterAdapter(t *testing.T) {
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	u, err := st.CreateUser(ctx, "Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := statusWriter{store: st}
	if err := w.SetUserStatus(ctx, core.UserID(u.ID), core.StatusOnline); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := st.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != string(core.StatusOnline) {
		t.Fatalf("status = %q, want online", got.Status)
	}
}

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "huddle.db")
	cfg.StatusBackend = config.StatusBackendNone
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	a, err := New(&cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	if len(a.closers) != 0 {
		t.Fatal("resources were not released")
	}
}

func TestAppRedisBackendUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "huddle.db")
	cfg.StatusBackend = config.StatusBackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	logger := zerolog.Nop()
	if _, err := New(&cfg, &logger); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
