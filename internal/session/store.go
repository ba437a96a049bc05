package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/nexo/internal/model"
)

// Options configure a Store.
type Options struct {
	Persister     Persister
	Authenticator Authenticator
	Logger        zerolog.Logger
	// EnvToken, when set, takes precedence over the persisted token.
	EnvToken string
}

// Store is an observable holder of the current session. The session is
// replaced as a whole on every login or logout, never merged.
type Store struct {
	persist Persister
	auth    Authenticator
	log     zerolog.Logger
	env     string

	mu    sync.RWMutex
	state State
	sess  Session

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewStore(opts Options) *Store {
	return &Store{
		persist: opts.Persister,
		auth:    opts.Authenticator,
		log:     opts.Logger,
		env:     StripBearer(opts.EnvToken),
		state:   Loading,
		subs:    make(map[int]func(State)),
	}
}

// Restore rehydrates from the persister. It moves the store out of Loading
// even when reading fails.
func (s *Store) Restore(ctx context.Context) error {
	var (
		loaded *Session
		err    error
	)
	if s.persist != nil {
		loaded, err = s.persist.Load(ctx)
	}

	next := Session{}
	st := Absent
	switch {
	case s.env != "":
		next.Token = s.env
		next.Source = "env"
		if loaded != nil {
			next.User = loaded.User
		}
		st = Present
	case err == nil && loaded != nil && loaded.Token != "":
		next = *loaded
		st = Present
	}

	s.set(st, next)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

// Login authenticates, persists, then swaps the in-memory session. A failed
// login leaves the current session untouched.
func (s *Store) Login(ctx context.Context, c Credentials) (Session, error) {
	if s.auth == nil {
		return Session{}, fmt.Errorf("login: no authenticator configured")
	}
	sess, err := s.auth.Login(ctx, c)
	if err != nil {
		return Session{}, err
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, sess); err != nil {
			return Session{}, fmt.Errorf("save session: %w", err)
		}
	}
	s.set(Present, sess)
	s.log.Info().Int64("user_id", sess.User.ID).Str("role", sess.User.Role).Msg("logged in")
	return sess, nil
}

// Logout clears durable and in-memory state.
func (s *Store) Logout(ctx context.Context) error {
	s.clear()
	s.log.Info().Msg("logged out")
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ForceLogout handles a 401 from any request. Concurrent calls collapse into a
// single Present->Absent transition; it reports whether this call made it.
func (s *Store) ForceLogout() bool {
	s.mu.Lock()
	if s.state != Present {
		s.mu.Unlock()
		return false
	}
	s.state = Absent
	s.sess = Session{}
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Delete(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("forced logout: delete persisted session")
		}
	}
	s.log.Warn().Msg("session rejected by server, logged out")
	s.notify(Absent)
	return true
}

// SetUser refreshes the profile (e.g. after /auth/me) without touching the token.
func (s *Store) SetUser(ctx context.Context, u model.User) error {
	s.mu.Lock()
	if s.state != Present {
		s.mu.Unlock()
		return nil
	}
	s.sess.User = u
	sess := s.sess
	s.mu.Unlock()

	if s.persist != nil && sess.Source != "env" {
		if err := s.persist.Save(ctx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	s.notify(Present)
	return nil
}

// Current returns the session and whether one is present.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess, s.state == Present
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the state and session under a single lock, so a guard
// never pairs a new state with an old user.
func (s *Store) Snapshot() (State, Session) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.sess
}

// Token is read by the HTTP client before every request.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Token
}

// Subscribe registers fn for every state change; call the returned func to stop.
// fn runs synchronously on the goroutine that changed the state.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) clear() {
	s.mu.Lock()
	was := s.state
	s.state = Absent
	s.sess = Session{}
	s.mu.Unlock()
	if was != Absent {
		s.notify(Absent)
	}
}

func (s *Store) set(st State, sess Session) {
	s.mu.Lock()
	s.state = st
	s.sess = sess
	s.mu.Unlock()
	s.notify(st)
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
