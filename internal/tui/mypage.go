package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type profileMsg struct{ err error }

type myPage struct {
	e       *env
	message string
}

func newMyPage(e *env) *myPage { return &myPage{e: e} }

func (s *myPage) Level() guard.Level { return s.e.homeLevel() }

func (s *myPage) Init() tea.Cmd {
	e := s.e
	return e.do(s, func() tea.Msg { return profileMsg{e.app.RefreshUser(e.ctx)} })
}

func (s *myPage) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileMsg:
		s.message = ""
		if msg.err != nil {
			s.message = api.MessageOr(msg.err, "profile unavailable")
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			// The session change sends the navigator back to login.
			if err := s.e.app.Session.Logout(s.e.ctx); err != nil {
				s.message = "logout: " + err.Error()
			}
			return s, nil
		case "q", "esc":
			return s, pop
		}
	}
	return s, nil
}

func (s *myPage) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("My page") + "\n\n")
	sess, _ := s.e.app.Session.Current()
	u := sess.User
	for _, kv := range [][2]string{
		{"Name", u.FullName}, {"Username", u.Username}, {"Role", u.Role},
		{"Email", u.Email}, {"Phone", u.Phone}, {"Session", sess.Source},
	} {
		v := kv[1]
		if v == "" {
			v = ui.MutedStyle.Render("-")
		}
		fmt.Fprintf(&b, "%-10s %s\n", kv[0], v)
	}
	if s.message != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(s.message) + "\n")
	}
	b.WriteString("\n" + ui.HelpStyle.Render("l sign out · esc back"))
	return b.String()
}
