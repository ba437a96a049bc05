package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/view"
)

type completedMsg struct{ err error }

// completeScreen closes a job with a result text and up to two photos.
type completeScreen struct {
	e       *env
	id      int64
	form    *view.CompletionForm
	result  textarea.Model
	photos  textinput.Model
	focus   int
	busy    bool
	message string
}

func newComplete(e *env, id int64) *completeScreen {
	ta := textarea.New()
	ta.Placeholder = "What was done?"
	ta.SetWidth(60)
	ta.SetHeight(5)
	ta.CharLimit = 2000

	ti := textinput.New()
	ti.Prompt = "photos> "
	ti.Placeholder = "before.jpg, after repair.jpg"
	ti.Width = 50

	return &completeScreen{
		e:      e,
		id:     id,
		form:   view.NewCompletionForm(e.app.Resources.Installations, id),
		result: ta,
		photos: ti,
	}
}

func (s *completeScreen) Level() guard.Level { return guard.FieldWorker }
func (s *completeScreen) Init() tea.Cmd      { return s.result.Focus() }

func (s *completeScreen) input() resource.Completion {
	return resource.Completion{
		ResultText: s.result.Value(),
		Photos:     splitPaths(s.photos.Value()),
	}
}

// splitPaths separates on commas only; file names may contain spaces.
func splitPaths(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *completeScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completedMsg:
		s.busy = false
		if msg.err != nil {
			s.message = s.form.Message()
			return s, nil
		}
		return s, pop
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab":
			if s.focus == 0 {
				s.result.Blur()
				s.focus = 1
				return s, s.photos.Focus()
			}
			s.photos.Blur()
			s.focus = 0
			return s, s.result.Focus()
		case "ctrl+s":
			s.busy = true
			s.message = ""
			form, ctx, in := s.form, s.e.ctx, s.input()
			return s, s.e.do(s, func() tea.Msg {
				_, err := form.Submit(ctx, in)
				return completedMsg{err}
			})
		case "esc":
			return s, pop
		}
	}
	var cmd tea.Cmd
	if s.focus == 0 {
		s.result, cmd = s.result.Update(msg)
	} else {
		s.photos, cmd = s.photos.Update(msg)
	}
	return s, cmd
}

func (s *completeScreen) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Complete job #%d", s.id)) + "\n\n")
	b.WriteString(s.result.View() + "\n\n")
	b.WriteString(s.photos.View() + "\n")
	n := len(splitPaths(s.photos.Value()))
	hint := fmt.Sprintf("%d / %d photos", n, resource.MaxPhotos)
	if n > resource.MaxPhotos {
		b.WriteString(ui.ErrorStyle.Render(hint) + "\n\n")
	} else {
		b.WriteString(ui.MutedStyle.Render(hint) + "\n\n")
	}
	switch {
	case s.busy:
		b.WriteString(ui.MutedStyle.Render("uploading…") + "\n")
	case s.message != "":
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("tab switch · ctrl+s submit · esc back"))
	return b.String()
}
