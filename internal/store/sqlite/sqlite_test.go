package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huddlehq/huddle-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "Alice", "Alice@Example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Status != store.StatusOffline || created.StatusAt != nil {
		t.Fatalf("new user should be offline without timestamp, got %q %v", created.Status, created.StatusAt)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "Alice", "alice@example.com", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "Other", "ALICE@example.com", "hash"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUserByID(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUserStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	u, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []string{store.StatusOnline, store.StatusOffline, store.StatusOnline}
	for _, status := range tests {
		if err := s.SetUserStatus(ctx, u.ID, status); err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
		got, err := s.GetUserByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if got.Status != status {
			t.Fatalf("expected status %s, got %s", status, got.Status)
		}
		if got.StatusAt == nil || !got.StatusAt.Equal(fixed) {
			t.Fatalf("expected status_at %v, got %v", fixed, got.StatusAt)
		}
	}

	if err := s.SetUserStatus(ctx, "ghost", store.StatusOnline); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestListUsersExcludesCallerSortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var caller string
	for _, name := range []string{"carol", "Alice", "bob"} {
		u, err := s.CreateUser(ctx, name, name+"@example.com", "hash")
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if name == "bob" {
			caller = u.ID
		}
	}

	users, err := s.ListUsers(ctx, caller)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Alice" || users[1].Name != "carol" {
		t.Fatalf("unexpected order: %s, %s", users[0].Name, users[1].Name)
	}
	for _, u := range users {
		if u.ID == caller {
			t.Fatal("caller must be excluded")
		}
	}
}

func TestListUsersEmpty(t *testing.T) {
	s := newTestStore(t)

	users, err := s.ListUsers(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}
}
