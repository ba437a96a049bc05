package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/guard"
)

var errFieldOnly = errors.New("this account cannot use the field app")

// entry is one line of the home menu.
type entry struct {
	title, desc string
	level       guard.Level
	open        func() screen
}

func (i entry) Title() string       { return i.title }
func (i entry) Description() string { return i.desc }
func (i entry) FilterValue() string { return i.title }

type homeScreen struct {
	e       *env
	list    list.Model
	entries []entry
}

func newHome(e *env) *homeScreen {
	s := &homeScreen{e: e}
	s.entries = s.menu()
	s.list = list.New(nil, list.NewDefaultDelegate(), e.w-4, e.h-4)
	s.list.SetShowStatusBar(false)
	s.list.SetFilteringEnabled(true)
	s.list.DisableQuitKeybindings()
	s.refill()
	return s
}

func (s *homeScreen) menu() []entry {
	e := s.e
	var out []entry
	if e.field {
		out = append(out,
			entry{"My jobs", "installations and AS assigned to you", guard.FieldWorker, func() screen { return newJobs(e) }},
		)
	} else {
		out = append(out,
			entry{"Dashboard", "today's numbers", guard.Admin, func() screen { return newDashboard(e) }},
		)
	}
	for _, r := range catalog.All() {
		if e.field && !r.Field {
			continue
		}
		lvl := r.Level
		if e.field {
			lvl = guard.FieldWorker
		}
		out = append(out, entry{r.Title, r.Name, lvl, func() screen { return newRecords(e, r, lvl) }})
	}
	if !e.field {
		out = append(out, entry{"Backups", "create, download and delete database dumps", guard.Admin, func() screen { return newBackups(e) }})
	}
	out = append(out,
		entry{"My page", "profile and sign out", e.homeLevel(), func() screen { return newMyPage(e) }},
	)
	return out
}

// refill shows only the entries the current session may open.
func (s *homeScreen) refill() {
	st, sess := s.e.app.Session.Snapshot()
	items := make([]list.Item, 0, len(s.entries))
	for _, it := range s.entries {
		if guard.Evaluate(it.level, st, sess).Allowed() {
			items = append(items, it)
		}
	}
	s.list.SetItems(items)
	s.list.Title = "nexo"
	if s.e.field {
		s.list.Title = "nexo field"
	}
	if sess.User.FullName != "" {
		s.list.Title += " · " + sess.User.FullName
	}
}

func (e *env) homeLevel() guard.Level {
	if e.field {
		return guard.FieldWorker
	}
	return guard.Authenticated
}

func (s *homeScreen) Level() guard.Level { return s.e.homeLevel() }
func (s *homeScreen) Init() tea.Cmd      { return nil }

func (s *homeScreen) Focus() tea.Cmd {
	s.refill()
	return nil
}

func (s *homeScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.list.SetSize(msg.Width-4, msg.Height-4)
	case tea.KeyMsg:
		if s.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if it, ok := s.list.SelectedItem().(entry); ok {
				return s, push(it.open())
			}
		case "q", "esc":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *homeScreen) View() string { return s.list.View() }
