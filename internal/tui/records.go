package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/view"
)

type (
	changedMsg struct{}
	deletedMsg struct {
		id  int64
		err error
	}
)

// confirmed answers yes; the screen already asked.
var confirmed = view.ConfirmFunc(func(string) bool { return true })

type recordsScreen struct {
	e     *env
	res   catalog.Resource
	level guard.Level

	l         catalog.Lister
	snap      catalog.Snapshot
	tbl       table.Model
	search    textinput.Model
	searching bool
	status    int // 0 is every status, otherwise res.Statuses[status-1]
	confirm   int64
	message   string
}

func newRecords(e *env, r catalog.Resource, level guard.Level) *recordsScreen {
	s := &recordsScreen{e: e, res: r, level: level}
	s.search = textinput.New()
	s.search.Prompt = "/ "
	s.search.Placeholder = "search…"
	s.search.CharLimit = 80
	s.tbl = table.New(table.WithFocused(true), table.WithHeight(max(e.h-10, 5)))
	return s
}

func (s *recordsScreen) Level() guard.Level { return s.level }

func (s *recordsScreen) Init() tea.Cmd {
	e := s.e
	s.l = s.res.NewList(e.ctx, e.app.Resources, func() { e.notify(s, changedMsg{}) }, e.app.Config.SearchDebounce)
	s.snap = s.l.Snapshot()
	cols := make([]table.Column, len(s.snap.Headers))
	for i, h := range s.snap.Headers {
		cols[i] = table.Column{Title: h, Width: s.snap.Widths[i]}
	}
	s.tbl.SetColumns(cols)
	s.l.Load(resource.Filter{})
	return nil
}

func (s *recordsScreen) Focus() tea.Cmd {
	if s.l != nil {
		s.l.Reload()
	}
	return nil
}

func (s *recordsScreen) Close() {
	if s.l != nil {
		s.l.Close()
	}
}

func (s *recordsScreen) refresh() {
	s.snap = s.l.Snapshot()
	rows := make([]table.Row, len(s.snap.Rows))
	for i, r := range s.snap.Rows {
		rows[i] = table.Row(r)
	}
	s.tbl.SetRows(rows)
	if c := s.tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
		s.tbl.SetCursor(len(rows) - 1)
	}
}

func (s *recordsScreen) selected() (int64, bool) {
	c := s.tbl.Cursor()
	if c < 0 || c >= len(s.snap.IDs) {
		return 0, false
	}
	return s.snap.IDs[c], true
}

func (s *recordsScreen) statusLabel() string {
	if s.status == 0 {
		return "all"
	}
	return s.res.Statuses[s.status-1]
}

func (s *recordsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		s.refresh()
		return s, nil
	case deletedMsg:
		if msg.err != nil {
			s.message = api.MessageOr(msg.err, "delete failed")
		} else {
			s.message = fmt.Sprintf("deleted #%d", msg.id)
		}
		return s, nil
	case tea.WindowSizeMsg:
		s.tbl.SetHeight(max(msg.Height-10, 5))
		return s, nil
	case tea.KeyMsg:
		if s.searching {
			return s.updateSearch(msg)
		}
		if s.confirm != 0 {
			id := s.confirm
			s.confirm = 0
			if msg.String() != "y" {
				s.message = "cancelled"
				return s, nil
			}
			l := s.l
			ctx := s.e.ctx
			return s, s.e.do(s, func() tea.Msg {
				return deletedMsg{id: id, err: l.Delete(ctx, id, confirmed)}
			})
		}
		s.message = ""
		switch msg.String() {
		case "/":
			s.searching = true
			return s, s.search.Focus()
		case "s":
			if len(s.res.Statuses) == 0 {
				return s, nil
			}
			s.status = (s.status + 1) % (len(s.res.Statuses) + 1)
			f := s.snap.Filter
			f.Skip = 0
			f.Status = ""
			if s.status > 0 {
				f.Status = s.res.Statuses[s.status-1]
			}
			s.l.Load(f)
			return s, nil
		case "r":
			s.l.Reload()
			return s, nil
		case "n":
			return s, push(newForm(s.e, s.res, view.NewID, s.level))
		case "enter":
			if id, ok := s.selected(); ok {
				return s, push(newForm(s.e, s.res, ui.ID(id), s.level))
			}
			return s, nil
		case "d":
			if id, ok := s.selected(); ok {
				s.confirm = id
			}
			return s, nil
		case "q", "esc":
			return s, pop
		}
	}
	var cmd tea.Cmd
	s.tbl, cmd = s.tbl.Update(msg)
	return s, cmd
}

func (s *recordsScreen) updateSearch(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		s.searching = false
		s.search.Blur()
		return s, nil
	}
	before := s.search.Value()
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if v := s.search.Value(); v != before {
		s.l.Search(strings.TrimSpace(v))
	}
	return s, cmd
}

func (s *recordsScreen) View() string {
	var b strings.Builder
	head := ui.TitleStyle.Render(s.res.Title)
	if len(s.res.Statuses) > 0 {
		head += "  " + ui.MutedStyle.Render("status: "+s.statusLabel())
	}
	if s.snap.Loading {
		head += "  " + ui.MutedStyle.Render("loading…")
	}
	b.WriteString(head + "\n")
	if s.searching || s.search.Value() != "" {
		b.WriteString(s.search.View() + "\n")
	}
	if s.snap.Empty {
		b.WriteString(ui.MutedStyle.Render("no records") + "\n")
	} else {
		b.WriteString(s.tbl.View() + "\n")
	}
	switch {
	case s.confirm != 0:
		b.WriteString(ui.PendingStyle.Render(fmt.Sprintf("Delete %s #%d? (y/n)", strings.ToLower(s.res.Title), s.confirm)) + "\n")
	case s.snap.Message != "":
		b.WriteString(ui.ErrorStyle.Render(s.snap.Message) + "\n")
	case s.message != "":
		b.WriteString(ui.SuccessStyle.Render(s.message) + "\n")
	}
	help := "enter open · n new · d delete · / search · r reload · esc back"
	if len(s.res.Statuses) > 0 {
		help = "s status · " + help
	}
	b.WriteString(ui.HelpStyle.Render(help))
	return b.String()
}
