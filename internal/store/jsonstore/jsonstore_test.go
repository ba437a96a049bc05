package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/session"
)

func TestFileMissingIsNotFound(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nope.json"))
	var v map[string]any
	ok, err := f.Load(&v)
	if err != nil || ok {
		t.Fatalf("Load missing = %v, %v; want false, nil", ok, err)
	}
	if err := f.Delete(); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestSessionsRoundTripAndPerms(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nexo")
	s := NewSessions(home, "default")
	ctx := context.Background()

	in := session.Session{Token: "abc", User: model.User{ID: 1, Username: "admin", IsAdmin: true}}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fi, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("file mode = %v, want 0600", fi.Mode().Perm())
	}
	di, _ := os.Stat(home)
	if di.Mode().Perm() != 0o700 {
		t.Fatalf("dir mode = %v, want 0700", di.Mode().Perm())
	}

	out, err := s.Load(ctx)
	if err != nil || out == nil {
		t.Fatalf("Load = %v, %v", out, err)
	}
	if out.Token != "abc" || out.User.Username != "admin" || out.Source != "file" {
		t.Fatalf("unexpected session %+v", out)
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	out, err = s.Load(ctx)
	if err != nil || out != nil {
		t.Fatalf("Load after delete = %v, %v", out, err)
	}
}

func TestProfileFileName(t *testing.T) {
	if got := filepath.Base(NewSessions("/x", "staging").Path()); got != "session-staging.json" {
		t.Fatalf("got %q", got)
	}
	if got := filepath.Base(NewSessions("/x", "").Path()); got != "session.json" {
		t.Fatalf("got %q", got)
	}
}
