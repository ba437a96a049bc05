package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/view"
)

// photos is a repeatable -photo flag.
type photos []string

func (p *photos) String() string     { return strings.Join(*p, ",") }
func (p *photos) Set(v string) error { *p = append(*p, v); return nil }

func runJobs(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	status := fs.String("status", "", "pending, in_progress, completed or cancelled")
	if _, err := parse(fs, args); err != nil {
		return 2
	}
	jobs, err := e.app.Resources.Installations.List(ctx, resource.Filter{Status: *status, Limit: resource.All.Limit})
	if err != nil {
		ui.Fail(api.MessageOr(err, "could not load jobs"))
		return 1
	}
	s, _ := e.app.Session.Current()
	ui.Table(ui.Out, catalog.InstallationColumns, resource.AssignedTo(jobs, s.User))
	return 0
}

func jobID(e *env, verb string, args []string) (int64, int) {
	if len(args) < 1 {
		ui.Fail(fmt.Sprintf("usage: %s %s <id>", e.prog.Name(), verb))
		return 0, 2
	}
	id := view.ParseID(args[0])
	if id == 0 {
		ui.Fail(verb + ": not an id: " + args[0])
		return 0, 2
	}
	return id, 0
}

func runJob(ctx context.Context, e *env, args []string) int {
	id, code := jobID(e, "job", args)
	if code != 0 {
		return code
	}
	j, err := e.app.Resources.Installations.Get(ctx, id)
	if err != nil {
		ui.Fail(api.MessageOr(err, "could not load job"))
		return 1
	}
	printJob(j)
	return 0
}

func printJob(j model.Installation) {
	t := ui.Current()
	row := func(k, v string) string {
		if v == "" {
			v = ui.C(t.Muted, "-")
		}
		return fmt.Sprintf("%-12s %s", k, v)
	}
	lines := []string{
		ui.C(t.Title, fmt.Sprintf("Job #%d · %s", j.ID, j.InstallationType)),
		row("Status", ui.Status(j.Status)),
		row("Client", refOr(j.Client, j.ClientID)),
		row("Technician", refOr(j.Technician, j.TechnicianID)),
		row("Scheduled", ui.Date(j.ScheduledDate)),
		row("Completed", ui.Date(j.CompletedDate)),
		row("Notes", j.Notes),
		row("Result", j.ResultText),
	}
	for _, p := range []string{j.PhotoURL1, j.PhotoURL2} {
		if p != "" {
			lines = append(lines, row("Photo", p))
		}
	}
	ui.Panel(ui.Out, lines)
}

func refOr(r *model.Ref, id int64) string {
	if l := r.Label(); l != "" {
		return l
	}
	if id == 0 {
		return ""
	}
	return "#" + strconv.FormatInt(id, 10)
}

func runComplete(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	result := fs.String("result", "", "what was done")
	var ph photos
	fs.Var(&ph, "photo", "photo to attach (repeat up to twice)")
	pos, err := parse(fs, args)
	if err != nil {
		return 2
	}
	id, code := jobID(e, "complete", pos)
	if code != 0 {
		return code
	}
	if strings.TrimSpace(*result) == "" {
		if *result, err = e.in.Line("Result: "); err != nil {
			ui.Fail("read result: " + err.Error())
			return 1
		}
	}

	form := view.NewCompletionForm(e.app.Resources.Installations, id)
	j, err := form.Submit(ctx, resource.Completion{ResultText: *result, Photos: ph})
	if err != nil {
		ui.Fail(form.Message())
		return 1
	}
	ui.OK(fmt.Sprintf("job #%d completed", j.ID))
	printJob(j)
	return 0
}

func runHistory(ctx context.Context, e *env, args []string) int {
	id, code := jobID(e, "history", args)
	if code != 0 {
		return code
	}
	jobs, err := e.app.Resources.Installations.ClientHistory(ctx, id)
	if err != nil {
		ui.Fail(api.MessageOr(err, "could not load history"))
		return 1
	}
	ui.Table(ui.Out, catalog.InstallationColumns, jobs)
	return 0
}

func runMe(ctx context.Context, e *env, _ []string) int {
	if err := e.app.RefreshUser(ctx); err != nil {
		ui.Fail(api.MessageOr(err, "profile unavailable"))
		return 1
	}
	s, ok := e.app.Session.Current()
	if !ok {
		return e.require(guard.FieldWorker)
	}
	u := s.User
	ui.Panel(ui.Out, []string{
		ui.C(ui.Current().Title, displayName(s)),
		fmt.Sprintf("%-10s %s", "Username", u.Username),
		fmt.Sprintf("%-10s %s", "Role", u.Role),
		fmt.Sprintf("%-10s %s", "Email", u.Email),
		fmt.Sprintf("%-10s %s", "Phone", u.Phone),
	})
	return 0
}
