// Package tui is the full-screen client. A navigator keeps a stack of
// screens and runs the route guard on every push, pop and session change.
package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Makepad-fr/nexo/internal/app"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/session"
	"github.com/Makepad-fr/nexo/internal/ui"
)

// screen is one page of the navigator.
type screen interface {
	Level() guard.Level
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
}

// closer is implemented by screens holding background resources.
type closer interface{ Close() }

// focuser is implemented by screens that refresh when they become the top
// of the stack again.
type focuser interface{ Focus() tea.Cmd }

type (
	pushMsg    struct{ s screen }
	popMsg     struct{}
	homeMsg    struct{}
	// alertMsg pops the top screen and shows text on the one below.
	alertMsg   struct{ text string }
	sessionMsg struct{ st session.State }
	// reply carries an async result back to the screen that asked for it.
	reply struct {
		to  screen
		msg tea.Msg
	}
)

func push(s screen) tea.Cmd { return func() tea.Msg { return pushMsg{s} } }
func pop() tea.Msg          { return popMsg{} }
func home() tea.Msg         { return homeMsg{} }

func alert(text string) tea.Cmd { return func() tea.Msg { return alertMsg{text} } }

// env is shared by every screen of one program.
type env struct {
	ctx   context.Context
	app   *app.App
	field bool
	send  func(tea.Msg)
	w, h  int
}

// do runs fn off the event loop and routes its result to s.
func (e *env) do(s screen, fn func() tea.Msg) tea.Cmd {
	return func() tea.Msg { return reply{to: s, msg: fn()} }
}

// notify is for callbacks fired from other goroutines, such as list loads.
func (e *env) notify(s screen, msg tea.Msg) {
	if e.send != nil {
		e.send(reply{to: s, msg: msg})
	}
}

type navigator struct {
	e     *env
	stack []screen
	flash string
}

// Run starts the interactive client. field selects the technician/sales app.
func Run(ctx context.Context, a *app.App, field bool) error {
	w, h := widthHeight()
	e := &env{ctx: ctx, app: a, field: field, w: w, h: h}
	n := newNavigator(e)

	p := tea.NewProgram(n, tea.WithAltScreen(), tea.WithContext(ctx))
	e.send = p.Send
	// Logout can run inside Update, where a blocking Send would never return.
	unsub := a.Session.Subscribe(func(st session.State) { go p.Send(sessionMsg{st}) })
	defer unsub()

	_, err := p.Run()
	n.reset(nil)
	return err
}

func newNavigator(e *env) *navigator {
	n := &navigator{e: e}
	n.reset(newHome(e))
	n.check()
	return n
}

func (n *navigator) Init() tea.Cmd {
	if top := n.top(); top != nil {
		return top.Init()
	}
	return nil
}

func (n *navigator) top() screen {
	if len(n.stack) == 0 {
		return nil
	}
	return n.stack[len(n.stack)-1]
}

// reset closes every screen and starts over at s.
func (n *navigator) reset(s screen) {
	for _, old := range n.stack {
		if c, ok := old.(closer); ok {
			c.Close()
		}
	}
	n.stack = n.stack[:0]
	if s != nil {
		n.stack = append(n.stack, s)
	}
}

// check applies the guard to the top screen and redirects when it fails.
// redirected is true when the top screen was replaced; cmd is the new
// screen's Init.
func (n *navigator) check() (cmd tea.Cmd, redirected bool) {
	top := n.top()
	if top == nil {
		return nil, false
	}
	d := guard.Check(top.Level(), n.e.app.Session)
	if d.Outcome != guard.Redirect {
		return nil, false
	}
	if d.To == guard.RouteLogin {
		if _, ok := top.(*loginScreen); ok {
			return nil, false
		}
		n.reset(newLogin(n.e))
		return n.top().Init(), true
	}
	n.flash = "permission denied: requires " + top.Level().String()
	n.reset(newHome(n.e))
	return n.top().Init(), true
}

func (n *navigator) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		n.e.w, n.e.h = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return n, tea.Quit
		}
		n.flash = ""
	case pushMsg:
		n.stack = append(n.stack, msg.s)
		if cmd, ok := n.check(); ok {
			return n, cmd
		}
		return n, msg.s.Init()
	case alertMsg:
		n.flash = msg.text
		return n.pop()
	case popMsg:
		return n.pop()
	case homeMsg:
		n.reset(newHome(n.e))
		if cmd, ok := n.check(); ok {
			return n, cmd
		}
		return n, n.top().Init()
	case sessionMsg:
		cmd, ok := n.check()
		if !ok {
			// Still allowed, but what the screen shows may depend on the role.
			if f, isF := n.top().(focuser); isF {
				return n, f.Focus()
			}
		}
		return n, cmd
	case reply:
		for i, s := range n.stack {
			if s == msg.to {
				next, cmd := s.Update(msg.msg)
				n.stack[i] = next
				return n, cmd
			}
		}
		return n, nil
	}

	top := n.top()
	if top == nil {
		return n, tea.Quit
	}
	next, cmd := top.Update(msg)
	n.stack[len(n.stack)-1] = next
	return n, cmd
}

func (n *navigator) pop() (tea.Model, tea.Cmd) {
	if len(n.stack) <= 1 {
		return n, tea.Quit
	}
	old := n.top()
	n.stack = n.stack[:len(n.stack)-1]
	if c, ok := old.(closer); ok {
		c.Close()
	}
	if cmd, ok := n.check(); ok {
		return n, cmd
	}
	if f, ok := n.top().(focuser); ok {
		return n, f.Focus()
	}
	return n, nil
}

func (n *navigator) View() string {
	top := n.top()
	if top == nil {
		return ""
	}
	if guard.Check(top.Level(), n.e.app.Session).Outcome == guard.Wait {
		return ui.Frame(ui.MutedStyle.Render("restoring session…"))
	}
	body := top.View()
	if n.flash != "" {
		body = ui.ErrorStyle.Render(n.flash) + "\n" + body
	}
	return ui.Frame(body)
}

func widthHeight() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
