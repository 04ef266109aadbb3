package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/huddlehq/huddle-server/internal/store"
)

func TestSetUserStatus(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewWithClient(db)
	fixed := time.Unix(1714564800, 0)
	s.now = func() time.Time { return fixed }

	mock.ExpectHSet("huddle:user:u1", "status", "online", "status_at", fixed.Unix()).SetVal(2)

	if err := s.SetUserStatus(context.Background(), "u1", store.StatusOnline); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetUserStatusError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewWithClient(db)
	fixed := time.Unix(1714564800, 0)
	s.now = func() time.Time { return fixed }

	mock.ExpectHSet("huddle:user:u1", "status", "offline", "status_at", fixed.Unix()).SetErr(errors.New("connection refused"))

	if err := s.SetUserStatus(context.Background(), "u1", store.StatusOffline); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUserStatus(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewWithClient(db)

	mock.ExpectHGet("huddle:user:u1", "status").SetVal("online")
	mock.ExpectHGet("huddle:user:ghost", "status").RedisNil()

	got, err := s.UserStatus(context.Background(), "u1")
	if err != nil {
		t.Fatalf("user status: %v", err)
	}
	if got != store.StatusOnline {
		t.Fatalf("expected online, got %q", got)
	}

	if _, err := s.UserStatus(context.Background(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
