package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type (
	backupsMsg struct {
		list []model.Backup
		err  error
	}
	// backupDoneMsg reports create, download and delete.
	backupDoneMsg struct {
		text string
		err  error
	}
)

type backupsScreen struct {
	e       *env
	list    []model.Backup
	tbl     table.Model
	pending string // "create" or "delete"
	busy    bool
	message string
	failed  bool
}

func newBackups(e *env) *backupsScreen {
	tbl := table.New(
		table.WithColumns([]table.Column{{Title: "FILE", Width: 36}, {Title: "SIZE", Width: 10}, {Title: "CREATED", Width: 16}}),
		table.WithFocused(true),
		table.WithHeight(max(e.h-10, 5)),
	)
	return &backupsScreen{e: e, tbl: tbl}
}

func (s *backupsScreen) Level() guard.Level { return guard.Admin }

func (s *backupsScreen) Init() tea.Cmd { return s.load() }

func (s *backupsScreen) load() tea.Cmd {
	e := s.e
	return e.do(s, func() tea.Msg {
		list, err := e.app.Resources.Backups.List(e.ctx)
		return backupsMsg{list, err}
	})
}

func (s *backupsScreen) selected() (model.Backup, bool) {
	c := s.tbl.Cursor()
	if c < 0 || c >= len(s.list) {
		return model.Backup{}, false
	}
	return s.list[c], true
}

func (s *backupsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	e := s.e
	switch msg := msg.(type) {
	case backupsMsg:
		if msg.err != nil {
			s.message, s.failed = api.MessageOr(msg.err, "could not list backups"), true
			return s, nil
		}
		s.list = msg.list
		rows := make([]table.Row, len(s.list))
		for i, b := range s.list {
			rows[i] = table.Row{b.Filename, ui.Bytes(b.Size), ui.Ago(b.CreatedAt)}
		}
		s.tbl.SetRows(rows)
		return s, nil
	case backupDoneMsg:
		s.busy = false
		if msg.err != nil {
			s.message, s.failed = api.MessageOr(msg.err, "backup failed"), true
			return s, nil
		}
		s.message, s.failed = msg.text, false
		return s, s.load()
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if s.pending != "" {
			action := s.pending
			s.pending = ""
			if msg.String() != "y" {
				s.message, s.failed = "cancelled", false
				return s, nil
			}
			s.busy = true
			if action == "create" {
				return s, e.do(s, func() tea.Msg {
					res, err := e.app.Resources.Backups.Create(e.ctx)
					return backupDoneMsg{"backup created: " + res.BackupFile, err}
				})
			}
			b, _ := s.selected()
			return s, e.do(s, func() tea.Msg {
				return backupDoneMsg{"removed " + b.Filename, e.app.Resources.Backups.Delete(e.ctx, b.Filename)}
			})
		}
		s.message = ""
		switch msg.String() {
		case "c":
			s.pending = "create"
			return s, nil
		case "d":
			if _, ok := s.selected(); ok {
				s.pending = "delete"
			}
			return s, nil
		case "g":
			if b, ok := s.selected(); ok {
				s.busy = true
				return s, e.do(s, func() tea.Msg { return s.download(b.Filename) })
			}
			return s, nil
		case "r":
			return s, s.load()
		case "q", "esc":
			return s, pop
		}
	}
	var cmd tea.Cmd
	s.tbl, cmd = s.tbl.Update(msg)
	return s, cmd
}

// download saves into the working directory and never overwrites.
func (s *backupsScreen) download(name string) tea.Msg {
	out := filepath.Base(name)
	f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return backupDoneMsg{err: err}
	}
	n, err := s.e.app.Resources.Backups.Download(s.e.ctx, name, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		return backupDoneMsg{err: err}
	}
	return backupDoneMsg{text: fmt.Sprintf("saved %s (%s)", out, ui.Bytes(n))}
}

func (s *backupsScreen) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Backups") + "\n")
	if len(s.list) == 0 {
		b.WriteString(ui.MutedStyle.Render("no backups") + "\n")
	} else {
		b.WriteString(s.tbl.View() + "\n")
	}
	switch {
	case s.pending == "create":
		b.WriteString(ui.PendingStyle.Render("Create a database backup now? (y/n)") + "\n")
	case s.pending == "delete":
		sel, _ := s.selected()
		b.WriteString(ui.PendingStyle.Render("Delete backup "+sel.Filename+"? (y/n)") + "\n")
	case s.busy:
		b.WriteString(ui.MutedStyle.Render("working…") + "\n")
	case s.message != "" && s.failed:
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	case s.message != "":
		b.WriteString(ui.SuccessStyle.Render(s.message) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("c create · g download · d delete · r reload · esc back"))
	return b.String()
}
