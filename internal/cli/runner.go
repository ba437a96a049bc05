package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/Makepad-fr/nexo/internal/app"
	"github.com/Makepad-fr/nexo/internal/config"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/ui"
)

// Program selects which command set Run exposes.
type Program int

const (
	Admin Program = iota // nexo
	Field                // nexo-field
)

func (p Program) Name() string {
	if p == Field {
		return "nexo-field"
	}
	return "nexo"
}

// Options tune behavior from root flags.
type Options struct {
	Server  string // -server: API base URL override
	Theme   string
	NoColor bool

	// In feeds prompts; defaults to os.Stdin.
	In io.Reader
	// Env replaces the process environment (tests).
	Env envconfig.Lookuper
	// LogOutput replaces the log file (tests).
	LogOutput io.Writer
	// Interactive starts the full-screen UI for the "tui" subcommand.
	Interactive func(ctx context.Context, a *app.App, p Program) error
}

type handler func(ctx context.Context, e *env, args []string) int

type command struct {
	level guard.Level
	run   handler
	usage string
}

// env is what every subcommand receives.
type env struct {
	app  *app.App
	prog Program
	opt  Options
	in   *prompter
}

// errUsage marks a flag parse failure already reported to the user.
var errUsage = errors.New("usage")

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, prog Program, args []string, opt Options) int {
	if opt.Theme != "" {
		ui.SetTheme(opt.Theme)
	}
	ui.SetColorForcing(false, opt.NoColor)

	if len(args) == 0 {
		PrintHelp(prog)
		return 2
	}
	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		PrintHelp(prog)
		return 0
	}
	cmds := commands(prog)
	cmd, ok := cmds[name]
	if !ok {
		ui.Fail("unknown subcommand: " + name)
		fmt.Fprintln(ui.Err)
		PrintHelp(prog)
		return 2
	}

	cfg, err := loadConfig(ctx, opt)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	a, err := app.New(ctx, cfg, app.Options{BaseURL: opt.Server, LogOutput: opt.LogOutput})
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer a.Close()

	in := opt.In
	if in == nil {
		in = os.Stdin
	}
	e := &env{app: a, prog: prog, opt: opt, in: newPrompter(in, ui.Out)}

	if code := e.require(cmd.level); code != 0 {
		return code
	}
	return cmd.run(ctx, e, rest)
}

func loadConfig(ctx context.Context, opt Options) (*config.Config, error) {
	if opt.Env != nil {
		return config.LoadFrom(ctx, opt.Env)
	}
	return config.Load(ctx)
}

// require applies the route guard before a command touches the backend.
func (e *env) require(l guard.Level) int {
	d := guard.Check(l, e.app.Session)
	if d.Allowed() {
		return 0
	}
	if d.To == guard.RouteLogin {
		ui.Fail(fmt.Sprintf("not logged in. Run: %s auth login", e.prog.Name()))
		return 2
	}
	ui.Fail("permission denied: requires " + l.String())
	return 1
}

func commands(p Program) map[string]command {
	cmds := map[string]command{
		"auth": {guard.Public, runAuth, "auth <login|logout|status|whoami>"},
		"tui":  {guard.Public, runTUI, "tui"},
	}
	if p == Admin {
		cmds["dashboard"] = command{guard.Admin, runDashboard, "dashboard"}
		cmds["ls"] = command{guard.Authenticated, runList, "ls <resource> [-search s] [-status s] [-client id] [-limit n]"}
		cmds["show"] = command{guard.Authenticated, runShow, "show <resource> <id>"}
		cmds["save"] = command{guard.Authenticated, runSave, "save <resource> <id|new> field=value..."}
		cmds["rm"] = command{guard.Authenticated, runRemove, "rm <resource> <id> [-y]"}
		cmds["backup"] = command{guard.Admin, runBackup, "backup <create|ls|get|rm>"}
		return cmds
	}
	cmds["jobs"] = command{guard.FieldWorker, runJobs, "jobs [-status s]"}
	cmds["job"] = command{guard.FieldWorker, runJob, "job <id>"}
	cmds["complete"] = command{guard.FieldWorker, runComplete, "complete <id> -result text [-photo path]..."}
	cmds["history"] = command{guard.FieldWorker, runHistory, "history <client-id>"}
	cmds["me"] = command{guard.FieldWorker, runMe, "me"}
	cmds["ls"] = command{guard.FieldWorker, runList, "ls <resource> [-search s] [-status s] [-client id]"}
	cmds["show"] = command{guard.FieldWorker, runShow, "show <resource> <id>"}
	cmds["save"] = command{guard.FieldWorker, runSave, "save <resource> <id|new> field=value..."}
	return cmds
}

func runTUI(ctx context.Context, e *env, _ []string) int {
	if e.opt.Interactive == nil {
		ui.Fail("interactive mode is not available in this build")
		return 1
	}
	if err := e.opt.Interactive(ctx, e.app, e.prog); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

// parse runs a subcommand flag set, allowing flags after positionals.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(ui.Err)
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func PrintHelp(p Program) {
	if p == Field {
		fmt.Fprintf(ui.Out, `nexo-field - field app for technicians and sales

Usage:
  nexo-field [-server URL] [-theme classic|neon|mono] <subcommand> [args]

Subcommands:
  auth login [-u user] [-p pass]   Log in (prompts when flags are omitted)
  auth logout|status|whoami        Session housekeeping
  jobs [-status pending]           Your installation and AS jobs
  job <id>                         Job detail
  complete <id> -result "..." [-photo a.jpg] [-photo b.jpg]
                                   Close a job with up to two photos
  history <client-id>              Every job done for a client
  me                               Your profile
  ls|show|save <resource> ...      Clients, consultations, quotations, contracts
  tui                              Full-screen mode

Examples:
  nexo-field jobs -status pending
  nexo-field complete 42 -result "Replaced filter" -photo after.jpg
`)
		return
	}
	fmt.Fprintf(ui.Out, `nexo - CRM admin console

Usage:
  nexo [-server URL] [-theme classic|neon|mono] <subcommand> [args]

Subcommands:
  auth login [-u user] [-p pass]   Log in (prompts when flags are omitted)
  auth logout|status|whoami        Session housekeeping
  dashboard                        Today's numbers
  ls <resource> [-search s] [-status s] [-client id] [-limit n]
  show <resource> <id>             Record detail
  save <resource> <id|new> key=value...
                                   Create or update a record
  rm <resource> <id> [-y]          Delete after confirmation
  backup create|ls|get|rm          Database backups
  tui                              Full-screen mode

Resources:
  %s

Examples:
  nexo auth login -u admin
  nexo ls clients -search Acme
  nexo save items new code=F-1 name="Water filter" unit_price=15000
  nexo rm clients 5
`, strings.Join(resourceNames(p), ", "))
}
