package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
)

var jobFilters = []string{"", model.JobPending, model.JobInProgress, model.JobCompleted}

type jobsMsg struct {
	jobs []model.Installation
	err  error
}

func jobTable(h int) table.Model {
	cols := make([]table.Column, len(catalog.InstallationColumns))
	for i, c := range catalog.InstallationColumns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(max(h-10, 5)))
}

func jobRows(jobs []model.Installation) []table.Row {
	rows := make([]table.Row, len(jobs))
	for i, j := range jobs {
		rows[i] = table.Row(ui.Cells(catalog.InstallationColumns, j))
	}
	return rows
}

// jobsScreen lists the technician's jobs, or one client's history when
// client is set.
type jobsScreen struct {
	e       *env
	client  int64
	filter  int
	jobs    []model.Installation
	tbl     table.Model
	loading bool
	message string
}

func newJobs(e *env) *jobsScreen { return &jobsScreen{e: e, tbl: jobTable(e.h)} }

func newHistory(e *env, clientID int64) *jobsScreen {
	return &jobsScreen{e: e, client: clientID, tbl: jobTable(e.h)}
}

func (s *jobsScreen) Level() guard.Level { return guard.FieldWorker }
func (s *jobsScreen) Init() tea.Cmd      { return s.load() }
func (s *jobsScreen) Focus() tea.Cmd     { return s.load() }

func (s *jobsScreen) load() tea.Cmd {
	s.loading = true
	e, client, status := s.e, s.client, jobFilters[s.filter]
	return e.do(s, func() tea.Msg {
		if client != 0 {
			jobs, err := e.app.Resources.Installations.ClientHistory(e.ctx, client)
			return jobsMsg{jobs, err}
		}
		jobs, err := e.app.Resources.Installations.List(e.ctx, resource.Filter{Status: status, Limit: resource.All.Limit})
		if err != nil {
			return jobsMsg{nil, err}
		}
		sess, _ := e.app.Session.Current()
		return jobsMsg{resource.AssignedTo(jobs, sess.User), nil}
	})
}

func (s *jobsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case jobsMsg:
		s.loading = false
		s.message = ""
		if msg.err != nil {
			s.message = api.MessageOr(msg.err, "could not load jobs")
			return s, nil
		}
		s.jobs = msg.jobs
		s.tbl.SetRows(jobRows(s.jobs))
		return s, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if s.client == 0 {
				s.filter = (s.filter + 1) % len(jobFilters)
				return s, s.load()
			}
		case "r":
			return s, s.load()
		case "enter":
			if c := s.tbl.Cursor(); c >= 0 && c < len(s.jobs) {
				return s, push(newJob(s.e, s.jobs[c].ID))
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

func (s *jobsScreen) View() string {
	var b strings.Builder
	if s.client != 0 {
		b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("History · client #%d", s.client)))
	} else {
		label := jobFilters[s.filter]
		if label == "" {
			label = "all"
		}
		b.WriteString(ui.TitleStyle.Render("My jobs") + "  " + ui.MutedStyle.Render("status: "+label))
	}
	if s.loading {
		b.WriteString("  " + ui.MutedStyle.Render("loading…"))
	}
	b.WriteString("\n")
	switch {
	case s.message != "":
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	case len(s.jobs) == 0 && !s.loading:
		b.WriteString(ui.MutedStyle.Render("no jobs") + "\n")
	default:
		b.WriteString(s.tbl.View() + "\n")
	}
	help := "enter open · r reload · esc back"
	if s.client == 0 {
		help = "s status · " + help
	}
	b.WriteString(ui.HelpStyle.Render(help))
	return b.String()
}

type jobMsg struct {
	job model.Installation
	err error
}

type jobScreen struct {
	e       *env
	id      int64
	job     model.Installation
	loaded  bool
	message string
}

func newJob(e *env, id int64) *jobScreen { return &jobScreen{e: e, id: id} }

func (s *jobScreen) Level() guard.Level { return guard.FieldWorker }
func (s *jobScreen) Init() tea.Cmd      { return s.load() }
func (s *jobScreen) Focus() tea.Cmd     { return s.load() }

func (s *jobScreen) load() tea.Cmd {
	e, id := s.e, s.id
	return e.do(s, func() tea.Msg {
		j, err := e.app.Resources.Installations.Get(e.ctx, id)
		return jobMsg{j, err}
	})
}

func (s *jobScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case jobMsg:
		if msg.err != nil {
			if !s.loaded {
				return s, alert(api.MessageOr(msg.err, "could not load job"))
			}
			s.message = api.MessageOr(msg.err, "could not load job")
			return s, nil
		}
		s.job, s.loaded, s.message = msg.job, true, ""
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if s.loaded && s.job.Status != model.JobCompleted {
				return s, push(newComplete(s.e, s.id))
			}
		case "h":
			if s.loaded && s.job.ClientID != 0 {
				return s, push(newHistory(s.e, s.job.ClientID))
			}
		case "q", "esc":
			return s, pop
		}
	}
	return s, nil
}

func (s *jobScreen) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Job #%d", s.id)) + "\n\n")
	if !s.loaded {
		b.WriteString(ui.MutedStyle.Render("loading…") + "\n\n")
		b.WriteString(ui.HelpStyle.Render("esc back"))
		return b.String()
	}
	j := s.job
	row := func(k, v string) {
		if v == "" {
			v = ui.MutedStyle.Render("-")
		}
		fmt.Fprintf(&b, "%-12s %s\n", k, v)
	}
	row("Type", j.InstallationType)
	row("Status", ui.Status(j.Status))
	row("Client", j.Client.Label())
	row("Scheduled", ui.Date(j.ScheduledDate))
	row("Completed", ui.Date(j.CompletedDate))
	row("Notes", j.Notes)
	row("Result", j.ResultText)
	for _, p := range []string{j.PhotoURL1, j.PhotoURL2} {
		if p != "" {
			row("Photo", p)
		}
	}
	if s.message != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(s.message) + "\n")
	}
	help := "h client history · esc back"
	if j.Status != model.JobCompleted {
		help = "c complete · " + help
	}
	b.WriteString("\n" + ui.HelpStyle.Render(help))
	return b.String()
}
