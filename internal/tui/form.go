package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/view"
)

type (
	openedMsg struct {
		vals []string
		err  error
	}
	savedMsg   struct{ err error }
	removedMsg struct{ err error }
)

type formScreen struct {
	e     *env
	res   catalog.Resource
	param string
	level guard.Level

	ed      catalog.Editor
	fields  []catalog.Field
	inputs  []textinput.Model
	focus   int
	loaded  bool
	busy    bool
	confirm bool
	message string
}

func newForm(e *env, r catalog.Resource, param string, level guard.Level) *formScreen {
	ed := r.NewEditor(e.app.Resources)
	s := &formScreen{e: e, res: r, param: param, level: level, ed: ed, fields: ed.Fields()}
	s.inputs = make([]textinput.Model, len(s.fields))
	for i, f := range s.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 500
		ti.Width = 40
		if f.Kind == catalog.Secret {
			ti.EchoMode = textinput.EchoPassword
		}
		if f.Help != "" {
			ti.Placeholder = f.Help
		} else if len(f.Options) > 0 {
			ti.Placeholder = strings.Join(f.Options, "|")
		}
		s.inputs[i] = ti
	}
	return s
}

func (s *formScreen) Level() guard.Level { return s.level }

func (s *formScreen) Init() tea.Cmd {
	ed, ctx, param := s.ed, s.e.ctx, s.param
	return s.e.do(s, func() tea.Msg {
		vals, err := ed.Open(ctx, param)
		return openedMsg{vals, err}
	})
}

func (s *formScreen) values() []string {
	out := make([]string, len(s.inputs))
	for i, ti := range s.inputs {
		out[i] = ti.Value()
	}
	return out
}

func (s *formScreen) move(d int) tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}
	s.inputs[s.focus].Blur()
	s.focus = (s.focus + d + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

func (s *formScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.err != nil {
			return s, alert(api.MessageOr(msg.err, "could not load record"))
		}
		for i, v := range msg.vals {
			s.inputs[i].SetValue(v)
		}
		s.loaded = true
		if len(s.inputs) > 0 {
			return s, s.inputs[0].Focus()
		}
		return s, nil
	case savedMsg:
		s.busy = false
		if msg.err != nil {
			s.message = api.Message(msg.err)
			return s, nil
		}
		return s, pop
	case removedMsg:
		s.busy = false
		if msg.err != nil {
			if !errors.Is(msg.err, view.ErrDeclined) {
				s.message = api.MessageOr(msg.err, "delete failed")
			}
			return s, nil
		}
		return s, pop
	case tea.KeyMsg:
		if !s.loaded || s.busy {
			if k := msg.String(); k == "esc" || k == "q" {
				return s, pop
			}
			return s, nil
		}
		if s.confirm {
			s.confirm = false
			if msg.String() != "y" {
				return s, nil
			}
			s.busy = true
			ed, ctx := s.ed, s.e.ctx
			return s, s.e.do(s, func() tea.Msg { return removedMsg{ed.Delete(ctx, confirmed)} })
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.move(1)
		case "shift+tab", "up":
			return s, s.move(-1)
		case "ctrl+s":
			s.busy = true
			s.message = ""
			ed, ctx, vals := s.ed, s.e.ctx, s.values()
			return s, s.e.do(s, func() tea.Msg { return savedMsg{ed.Submit(ctx, vals)} })
		case "ctrl+d":
			if !s.ed.IsNew() {
				s.confirm = true
			}
			return s, nil
		case "esc":
			return s, pop
		}
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *formScreen) View() string {
	var b strings.Builder
	title := s.res.Title + " · new"
	if s.param != view.NewID && view.ParseID(s.param) != 0 {
		title = fmt.Sprintf("%s · #%s", s.res.Title, s.param)
	}
	b.WriteString(ui.TitleStyle.Render(title) + "\n\n")
	if !s.loaded {
		b.WriteString(ui.MutedStyle.Render("loading…") + "\n")
		return b.String()
	}
	for i, f := range s.fields {
		label := fmt.Sprintf("%-16s", f.Label)
		if i == s.focus {
			label = ui.AccentStyle.Render(label)
		}
		b.WriteString(label + " " + s.inputs[i].View() + "\n")
		if f.Kind == catalog.Lines {
			b.WriteString(fmt.Sprintf("%-16s %s\n", "", ui.MutedStyle.Render(catalog.LinesTotal(s.inputs[i].Value()))))
		}
	}
	b.WriteString("\n")
	switch {
	case s.confirm:
		b.WriteString(ui.PendingStyle.Render("Delete this record? (y/n)") + "\n")
	case s.busy:
		b.WriteString(ui.MutedStyle.Render("saving…") + "\n")
	case s.message != "":
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	}
	help := "tab next · ctrl+s save · esc back"
	if !s.ed.IsNew() {
		help += " · ctrl+d delete"
	}
	b.WriteString(ui.HelpStyle.Render(help))
	return b.String()
}
