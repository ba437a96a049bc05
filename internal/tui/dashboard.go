package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type summaryMsg struct {
	sum resource.Summary
	err error
}

type dashboardScreen struct {
	e       *env
	spin    spinner.Model
	loading bool
	sum     resource.Summary
	at      time.Time
	message string
}

func newDashboard(e *env) *dashboardScreen {
	return &dashboardScreen{e: e, spin: spinner.New()}
}

func (s *dashboardScreen) Level() guard.Level { return guard.Admin }

func (s *dashboardScreen) Init() tea.Cmd { return s.load() }

func (s *dashboardScreen) load() tea.Cmd {
	s.loading = true
	e := s.e
	return tea.Batch(s.spin.Tick, e.do(s, func() tea.Msg {
		sum, err := e.app.Resources.Dashboard(e.ctx, time.Now())
		return summaryMsg{sum, err}
	}))
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		s.loading = false
		s.message = ""
		if msg.err != nil {
			s.message = api.MessageOr(msg.err, "dashboard unavailable")
			return s, nil
		}
		s.sum, s.at = msg.sum, time.Now()
	case spinner.TickMsg:
		if s.loading {
			var cmd tea.Cmd
			s.spin, cmd = s.spin.Update(msg)
			return s, cmd
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if !s.loading {
				return s, s.load()
			}
		case "q", "esc":
			return s, pop
		}
	}
	return s, nil
}

func (s *dashboardScreen) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Dashboard") + "\n\n")
	switch {
	case s.loading:
		b.WriteString(s.spin.View() + " loading…\n")
	case s.message != "":
		b.WriteString(ui.ErrorStyle.Render(s.message) + "\n")
	default:
		row := func(k string, v int) {
			fmt.Fprintf(&b, "%-24s %s\n", k, ui.AccentStyle.Render(fmt.Sprint(v)))
		}
		row("Today's consultations", s.sum.TodayConsultations)
		row("Active contracts", s.sum.ActiveContracts)
		row("Pending installations", s.sum.PendingInstallations)
		fmt.Fprintf(&b, "%-24s %d / %d  %s\n", "Low stock", len(s.sum.LowStock), s.sum.InventoryTotal,
			ui.ProgressBar(len(s.sum.LowStock), s.sum.InventoryTotal, 20))
		for _, inv := range s.sum.LowStock {
			name := inv.Item.Label()
			if name == "" {
				name = fmt.Sprintf("item #%d", inv.ItemID)
			}
			b.WriteString(ui.PendingStyle.Render(fmt.Sprintf("  • %-20s %d / min %d", name, inv.Quantity, inv.MinStockLevel)) + "\n")
		}
		b.WriteString("\n" + ui.MutedStyle.Render("updated "+s.at.Format("15:04:05")) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("r refresh · esc back"))
	return b.String()
}
