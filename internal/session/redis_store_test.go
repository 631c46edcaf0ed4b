package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func testActor(role string) Actor {
	return Actor{
		UserID:      "usr_1",
		Email:       "dev@example.com",
		DisplayName: "Dev",
		Role:        role,
	}
}

func TestSaveAndLookupSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	if err := store.SaveSession(ctx, "hash-1", testActor("freelancer"), expiresAt); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	actor, err := store.LookupSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LookupSession: %v", err)
	}
	if actor.Email != "dev@example.com" || actor.Role != "freelancer" {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveSession(ctx, "hash-exp", testActor("client"), time.Now().Add(time.Millisecond)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	s.FastForward(2 * time.Millisecond)

	if _, err := store.LookupSession(ctx, "hash-exp"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLookupUnknownSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if _, err := store.LookupSession(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveSession(ctx, "hash-revoke", testActor("client"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := store.RevokeSession(ctx, "hash-revoke"); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, err := store.LookupSession(ctx, "hash-revoke"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after revoke, got %v", err)
	}

	// Revoking a token that does not exist is not an error.
	if err := store.RevokeSession(ctx, "never-existed"); err != nil {
		t.Errorf("RevokeSession unknown: %v", err)
	}
}
