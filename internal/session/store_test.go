package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/nexo/internal/model"
)

type memPersister struct {
	mu      sync.Mutex
	sess    *Session
	saves   int
	deletes int
	loadErr error
}

func (m *memPersister) Load(context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.sess == nil {
		return nil, nil
	}
	s := *m.sess
	return &s, nil
}

func (m *memPersister) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.sess = &s
	return nil
}

func (m *memPersister) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.sess = nil
	return nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, c Credentials) (Session, error) {
	if c.Username == "admin" && c.Password == "admin123" {
		return Session{Token: "tok-admin", User: model.User{ID: 1, Username: "admin", IsAdmin: true}}, nil
	}
	return Session{}, ErrAuth
}

func TestRestore(t *testing.T) {
	p := &memPersister{sess: &Session{Token: "t1", User: model.User{Username: "u"}}}
	s := NewStore(Options{Persister: p})
	if s.State() != Loading {
		t.Fatalf("initial state = %v, want loading", s.State())
	}
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.State() != Present || s.Token() != "t1" {
		t.Fatalf("state=%v token=%q", s.State(), s.Token())
	}
}

func TestRestoreErrorLeavesAbsent(t *testing.T) {
	s := NewStore(Options{Persister: &memPersister{loadErr: errors.New("disk")}})
	if err := s.Restore(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if s.State() != Absent {
		t.Fatalf("state = %v, want absent", s.State())
	}
}

func TestEnvTokenWins(t *testing.T) {
	p := &memPersister{sess: &Session{Token: "file", User: model.User{Username: "u"}}}
	s := NewStore(Options{Persister: p, EnvToken: "Bearer env-tok"})
	_ = s.Restore(context.Background())
	cur, ok := s.Current()
	if !ok || cur.Token != "env-tok" || cur.Source != "env" || cur.User.Username != "u" {
		t.Fatalf("current = %+v, %v", cur, ok)
	}
}

func TestLoginPersistsThenNotifies(t *testing.T) {
	p := &memPersister{}
	s := NewStore(Options{Persister: p, Authenticator: fakeAuth{}})
	_ = s.Restore(context.Background())

	var seen []State
	cancel := s.Subscribe(func(st State) {
		// Persisted before observers run.
		if p.saves != 1 {
			t.Errorf("observer ran before save")
		}
		seen = append(seen, st)
	})
	defer cancel()

	if _, err := s.Login(context.Background(), Credentials{"admin", "admin123"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(seen) != 1 || seen[0] != Present {
		t.Fatalf("seen = %v", seen)
	}
	if s.Token() != "tok-admin" {
		t.Fatalf("token = %q", s.Token())
	}
}

func TestBadLoginKeepsState(t *testing.T) {
	p := &memPersister{}
	s := NewStore(Options{Persister: p, Authenticator: fakeAuth{}})
	_ = s.Restore(context.Background())
	_, err := s.Login(context.Background(), Credentials{"admin", "nope"})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if s.State() != Absent || p.saves != 0 {
		t.Fatalf("state=%v saves=%d", s.State(), p.saves)
	}
}

func TestLogout(t *testing.T) {
	p := &memPersister{}
	s := NewStore(Options{Persister: p, Authenticator: fakeAuth{}})
	_ = s.Restore(context.Background())
	_, _ = s.Login(context.Background(), Credentials{"admin", "admin123"})
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.State() != Absent || s.Token() != "" || p.sess != nil {
		t.Fatalf("state=%v token=%q persisted=%v", s.State(), s.Token(), p.sess)
	}
}

func TestForceLogoutOnce(t *testing.T) {
	p := &memPersister{sess: &Session{Token: "t"}}
	s := NewStore(Options{Persister: p})
	_ = s.Restore(context.Background())

	var notified, transitions atomic.Int32
	s.Subscribe(func(st State) {
		if st == Absent {
			notified.Add(1)
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ForceLogout() {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	if transitions.Load() != 1 || notified.Load() != 1 {
		t.Fatalf("transitions=%d notified=%d, want 1/1", transitions.Load(), notified.Load())
	}
	if p.deletes != 1 {
		t.Fatalf("deletes = %d", p.deletes)
	}
	if s.State() != Absent {
		t.Fatalf("state = %v", s.State())
	}
}

func TestSubscribeCancel(t *testing.T) {
	s := NewStore(Options{})
	n := 0
	cancel := s.Subscribe(func(State) { n++ })
	_ = s.Restore(context.Background())
	cancel()
	_ = s.Restore(context.Background())
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := ExpiresAt(tok)
	if !ok || !got.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, %v; want %v", got, ok, exp)
	}
	if _, ok := ExpiresAt("opaque"); ok {
		t.Fatalf("opaque token reported expiry")
	}
}

func TestStripBearer(t *testing.T) {
	for in, want := range map[string]string{
		"abc":           "abc",
		"Bearer abc":    "abc",
		" bearer  abc ": "abc",
	} {
		if got := StripBearer(in); got != want {
			t.Errorf("StripBearer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogoutLogsWithoutPersister(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(Options{Authenticator: fakeAuth{}, Logger: zerolog.New(&buf)})
	_ = s.Restore(context.Background())
	if _, err := s.Login(context.Background(), Credentials{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"logged out"`) {
		t.Fatalf("log = %s", buf.String())
	}
}

func TestSnapshotPairsStateAndUser(t *testing.T) {
	s := NewStore(Options{Authenticator: fakeAuth{}})
	if st, _ := s.Snapshot(); st != Loading {
		t.Fatalf("initial = %v", st)
	}
	_ = s.Restore(context.Background())
	if _, err := s.Login(context.Background(), Credentials{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if st, cur := s.Snapshot(); st != Present || cur.User.Username != "admin" {
		t.Fatalf("after login = %v %+v", st, cur)
	}
	s.ForceLogout()
	if st, cur := s.Snapshot(); st != Absent || cur.User.Username != "" {
		t.Fatalf("after force logout = %v %+v", st, cur)
	}
}
