package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/session"
)

// Auth talks to /auth and satisfies session.Authenticator.
type Auth struct {
	api API
}

var _ session.Authenticator = (*Auth)(nil)

type loginReply struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

func (a *Auth) Login(ctx context.Context, c session.Credentials) (session.Session, error) {
	form := url.Values{"username": {c.Username}, "password": {c.Password}}
	var reply loginReply
	if err := a.api.PostForm(ctx, "/auth/login", form, &reply); err != nil {
		var serr *api.StatusError
		if errors.As(err, &serr) && (serr.Status == 400 || serr.Status == 401) {
			return session.Session{}, fmt.Errorf("%w: %s", session.ErrAuth, api.MessageOr(err, "login rejected"))
		}
		return session.Session{}, fmt.Errorf("login: %w", err)
	}
	if reply.AccessToken == "" {
		return session.Session{}, fmt.Errorf("login: empty access token")
	}
	return session.Session{Token: reply.AccessToken, User: reply.User, CreatedAt: time.Now()}, nil
}

func (a *Auth) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := a.api.Get(ctx, "/auth/me", nil, &u)
	return u, err
}
