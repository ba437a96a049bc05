package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/session"
)

// Runs against a real server only when NEXO_TEST_REDIS_ADDR is set.
func connect(t *testing.T) *Sessions {
	t.Helper()
	addr := os.Getenv("NEXO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEXO_TEST_REDIS_ADDR not set")
	}
	rdb, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewSessions(rdb, "test-"+t.Name())
	t.Cleanup(func() { _ = s.Delete(context.Background()) })
	return s
}

func TestKey(t *testing.T) {
	if got := Key("ops"); got != "nexo:session:ops" {
		t.Fatalf("Key = %q", got)
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	if got, err := s.Load(ctx); err != nil || got != nil {
		t.Fatalf("empty Load = %v, %v", got, err)
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err := s.Save(ctx, session.Session{Token: tok, User: model.User{Username: "tech"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ttl, err := s.rdb.TTL(ctx, s.key).Result()
	if err != nil || ttl <= 0 || ttl > time.Hour {
		t.Fatalf("TTL = %v, %v", ttl, err)
	}
	got, err := s.Load(ctx)
	if err != nil || got == nil || got.User.Username != "tech" || got.Source != "redis" {
		t.Fatalf("Load = %+v, %v", got, err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
