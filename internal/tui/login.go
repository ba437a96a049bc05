package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/session"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type loginDoneMsg struct{ err error }

type loginScreen struct {
	e       *env
	inputs  [2]textinput.Model
	focus   int
	busy    bool
	spin    spinner.Model
	message string
}

func newLogin(e *env) *loginScreen {
	s := &loginScreen{e: e, spin: spinner.New()}
	for i := range s.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 64
		s.inputs[i] = ti
	}
	s.inputs[0].Placeholder = "username"
	s.inputs[1].Placeholder = "password"
	s.inputs[1].EchoMode = textinput.EchoPassword
	s.inputs[0].Focus()
	return s
}

func (s *loginScreen) Level() guard.Level { return guard.Public }

func (s *loginScreen) Init() tea.Cmd { return textinput.Blink }

func (s *loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.busy = false
		if msg.err != nil {
			s.message = api.MessageOr(msg.err, "login failed")
			s.inputs[1].SetValue("")
			return s, nil
		}
		return s, home
	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			s.inputs[s.focus].Blur()
			s.focus = 1 - s.focus
			return s, s.inputs[s.focus].Focus()
		case "enter":
			if s.focus == 0 {
				s.inputs[0].Blur()
				s.focus = 1
				return s, s.inputs[1].Focus()
			}
			return s, s.submit()
		case "esc":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *loginScreen) submit() tea.Cmd {
	c := session.Credentials{
		Username: strings.TrimSpace(s.inputs[0].Value()),
		Password: s.inputs[1].Value(),
	}
	if c.Username == "" || c.Password == "" {
		s.message = "username and password are required"
		return nil
	}
	s.busy = true
	s.message = ""
	e := s.e
	return tea.Batch(s.spin.Tick, e.do(s, func() tea.Msg {
		sess, err := e.app.Session.Login(e.ctx, c)
		if err == nil && e.field && !guard.IsFieldWorker(sess.User) {
			_ = e.app.Session.Logout(e.ctx)
			err = errFieldOnly
		}
		return loginDoneMsg{err}
	}))
}

func (s *loginScreen) View() string {
	title := "nexo · sign in"
	if s.e.field {
		title = "nexo field · sign in"
	}
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(title) + "\n\n")
	b.WriteString(s.inputs[0].View() + "\n")
	b.WriteString(s.inputs[1].View() + "\n\n")
	switch {
	case s.busy:
		b.WriteString(s.spin.View() + " signing in…\n")
	case s.message != "":
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("tab switch field · enter sign in · esc quit"))
	return b.String()
}
