// Package session holds the authenticated user for the lifetime of the
// process. Every screen that asks "am I allowed here" subscribes to Store and
// re-evaluates on each change.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Makepad-fr/nexo/internal/model"
)

// ErrAuth is returned by Login when the backend rejects the credentials.
var ErrAuth = errors.New("invalid username or password")

// State is the coarse session status guards look at.
type State int

const (
	// Loading means persisted state has not been read yet.
	Loading State = iota
	Absent
	Present
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Absent:
		return "absent"
	case Present:
		return "present"
	}
	return "unknown"
}

// Session is what gets persisted between runs.
type Session struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	Source    string     `json:"source"`     // "env" | "file" | "redis"
	CreatedAt time.Time  `json:"created_at"` // when we saved it
}

// Credentials are posted form-encoded to /auth/login.
type Credentials struct {
	Username string
	Password string
}

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, c Credentials) (Session, error)
}

// Persister is the durable side of the store.
type Persister interface {
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	// Delete is idempotent.
	Delete(ctx context.Context) error
}

// StripBearer accepts tokens pasted with or without their "Bearer " prefix.
func StripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
