package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/session"
	"github.com/Makepad-fr/nexo/internal/ui"
)

func runAuth(ctx context.Context, e *env, args []string) int {
	usage := "usage: " + e.prog.Name() + " auth <login|logout|status|whoami>"
	if len(args) == 0 {
		ui.Fail(usage)
		return 2
	}
	switch args[0] {
	case "login":
		return e.authLogin(ctx, args[1:])
	case "logout":
		return e.authLogout(ctx)
	case "status":
		return e.authStatus()
	case "whoami":
		return e.authWhoAmI(ctx)
	}
	ui.Fail(usage)
	return 2
}

func (e *env) authLogin(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("auth login", flag.ContinueOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if _, err := parse(fs, args); err != nil {
		return 2
	}

	var err error
	if *user == "" {
		if *user, err = e.in.Line("Username: "); err != nil {
			ui.Fail("read username: " + err.Error())
			return 1
		}
	}
	if *pass == "" {
		if *pass, err = e.in.Password("Password: "); err != nil {
			ui.Fail("read password: " + err.Error())
			return 1
		}
	}
	creds := session.Credentials{Username: strings.TrimSpace(*user), Password: *pass}
	if creds.Username == "" || creds.Password == "" {
		ui.Fail("username and password are required")
		return 2
	}

	sess, err := e.app.Session.Login(ctx, creds)
	if err != nil {
		ui.Fail(api.MessageOr(err, "login failed"))
		return 1
	}
	if e.prog == Field && !guard.IsFieldWorker(sess.User) {
		_ = e.app.Session.Logout(ctx)
		ui.Fail("this account cannot use the field app")
		return 1
	}
	if e.app.Config.Token != "" {
		ui.Warn("NEXO_TOKEN is set and takes precedence on the next run")
	}
	ui.OK(fmt.Sprintf("logged in as %s (%s)", displayName(sess), sess.User.Role))
	return 0
}

func (e *env) authLogout(ctx context.Context) int {
	if s, ok := e.app.Session.Current(); ok && s.Source == "env" {
		ui.OK("token is provided by NEXO_TOKEN env var (nothing to delete)")
		return 0
	}
	if err := e.app.Session.Logout(ctx); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func (e *env) authStatus() int {
	s, ok := e.app.Session.Current()
	if !ok {
		fmt.Fprintln(ui.Out, ui.C(ui.Current().Muted, "not logged in"))
		fmt.Fprintf(ui.Out, "Run: %s auth login\n", e.prog.Name())
		return 0
	}
	fmt.Fprintf(ui.Out, "user: %s (%s)\n", displayName(s), s.User.Role)
	fmt.Fprintf(ui.Out, "source: %s\n", s.Source)
	if exp, ok := session.ExpiresAt(s.Token); ok {
		fmt.Fprintf(ui.Out, "expires: %s\n", exp.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintln(ui.Out, "expires: (unknown)")
	}
	fmt.Fprintf(ui.Out, "backend: %s\n", e.app.Config.SessionBackend)
	fmt.Fprintln(ui.Out, "server:", e.app.API.BaseURL())
	fmt.Fprintln(ui.Out, "env override: NEXO_TOKEN")
	return 0
}

// whoami decodes the JWT locally and asks the server for the live profile.
func (e *env) authWhoAmI(ctx context.Context) int {
	s, ok := e.app.Session.Current()
	if !ok {
		ui.Fail(fmt.Sprintf("not logged in. Run: %s auth login", e.prog.Name()))
		return 2
	}
	if claims, ok := session.Claims(s.Token); ok {
		b, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Fprintln(ui.Out, "JWT payload:")
		fmt.Fprintln(ui.Out, string(b))
	} else {
		fmt.Fprintln(ui.Out, "Opaque token (cannot introspect locally).")
		fmt.Fprintln(ui.Out, "source:", s.Source)
	}
	if err := e.app.RefreshUser(ctx); err != nil {
		ui.Fail(api.MessageOr(err, "profile unavailable"))
		return 1
	}
	if s, ok = e.app.Session.Current(); ok {
		fmt.Fprintf(ui.Out, "profile: %s <%s> %s\n", displayName(s), s.User.Email, s.User.Role)
	}
	return 0
}

func displayName(s session.Session) string {
	if s.User.FullName != "" {
		return s.User.FullName
	}
	if s.User.Username != "" {
		return s.User.Username
	}
	return "(unknown user)"
}
