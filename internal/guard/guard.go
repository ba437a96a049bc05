// Package guard decides whether the current session may see a screen.
package guard

import (
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/session"
)

// Level is the capability a screen requires.
type Level int

const (
	Public Level = iota
	Authenticated
	Admin
	SuperAdmin
	// FieldWorker is any technician or sales user; admins pass too.
	FieldWorker
)

func (l Level) String() string {
	switch l {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	case SuperAdmin:
		return "super-admin"
	case FieldWorker:
		return "field"
	}
	return "unknown"
}

// Route names a redirect target.
type Route string

const (
	RouteLogin Route = "login"
	RouteHome  Route = "home"
)

type Outcome int

const (
	Allow Outcome = iota
	Redirect
	// Wait means the session is still loading; show a placeholder.
	Wait
)

type Decision struct {
	Outcome Outcome
	To      Route
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

var (
	allow   = Decision{Outcome: Allow}
	wait    = Decision{Outcome: Wait}
	toLogin = Decision{Outcome: Redirect, To: RouteLogin}
	toHome  = Decision{Outcome: Redirect, To: RouteHome}
)

// Evaluate has no side effects; call it on every navigation and after every
// session change.
func Evaluate(l Level, st session.State, s session.Session) Decision {
	if l == Public {
		return allow
	}
	switch st {
	case session.Loading:
		return wait
	case session.Absent:
		return toLogin
	}
	u := s.User
	switch l {
	case Admin:
		if !u.IsAdmin {
			return toHome
		}
	case SuperAdmin:
		if !u.IsSuperAdmin {
			return toHome
		}
	case FieldWorker:
		// The field app's home is itself guarded, so a denied user goes back
		// to login rather than looping through home.
		if !IsFieldWorker(u) {
			return toLogin
		}
	}
	return allow
}

func IsFieldWorker(u model.User) bool {
	switch u.Role {
	case model.RoleTechnician, model.RoleSales:
		return true
	}
	return u.IsAdmin
}

// Source is anything that can report the current session, such as
// *session.Store.
type Source interface {
	Snapshot() (session.State, session.Session)
}

// Check evaluates l against one consistent read of src.
func Check(l Level, src Source) Decision {
	st, s := src.Snapshot()
	return Evaluate(l, st, s)
}
