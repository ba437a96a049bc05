package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/catalog"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/view"
)

func resourceNames(p Program) []string {
	var out []string
	for _, n := range catalog.Names() {
		r, _ := catalog.Lookup(n)
		if p == Admin || r.Field {
			out = append(out, n)
		}
	}
	return out
}

// resolve finds a resource by name and applies its guard.
func (e *env) resolve(name string) (catalog.Resource, int) {
	r, ok := catalog.Lookup(name)
	if !ok || (e.prog == Field && !r.Field) {
		ui.Fail("unknown resource: " + name)
		fmt.Fprintln(ui.Err, "resources:", strings.Join(resourceNames(e.prog), ", "))
		return r, 2
	}
	if e.prog == Field {
		return r, 0
	}
	return r, e.require(r.Level)
}

func runList(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	var f resource.Filter
	fs.StringVar(&f.Search, "search", "", "search term")
	fs.StringVar(&f.Status, "status", "", "status filter")
	fs.Int64Var(&f.ClientID, "client", 0, "client id")
	fs.IntVar(&f.Skip, "skip", 0, "records to skip")
	fs.IntVar(&f.Limit, "limit", 100, "page size")
	pos, err := parse(fs, args)
	if err != nil {
		return 2
	}
	if len(pos) != 1 {
		ui.Fail("usage: " + e.prog.Name() + " ls <resource> [-search s] [-status s] [-client id]")
		return 2
	}
	r, code := e.resolve(pos[0])
	if code != 0 {
		return code
	}

	l := r.NewList(ctx, e.app.Resources, nil, 0)
	defer l.Close()
	l.Load(f)
	l.Wait()
	return printSnapshot(l.Snapshot())
}

func printSnapshot(s catalog.Snapshot) int {
	if s.Message != "" {
		ui.Fail(s.Message)
		return 1
	}
	ui.Grid(ui.Out, s.Headers, s.Widths, s.Rows)
	if !s.Empty {
		fmt.Fprintln(ui.Out, ui.C(ui.Current().Muted, fmt.Sprintf("records: %d", len(s.Rows))))
	}
	return 0
}

func recordArgs(e *env, verb string, args []string) (catalog.Resource, string, []string, int) {
	if len(args) < 2 {
		ui.Fail(fmt.Sprintf("usage: %s %s <resource> <id>", e.prog.Name(), verb))
		return catalog.Resource{}, "", nil, 2
	}
	r, code := e.resolve(args[0])
	return r, args[1], args[2:], code
}

func runShow(ctx context.Context, e *env, args []string) int {
	r, id, _, code := recordArgs(e, "show", args)
	if code != 0 {
		return code
	}
	if view.ParseID(id) == 0 {
		ui.Fail("show: not an id: " + id)
		return 2
	}
	ed := r.NewEditor(e.app.Resources)
	vals, err := ed.Open(ctx, id)
	if err != nil {
		ui.Fail(api.MessageOr(err, "could not load record"))
		return 1
	}
	lines := []string{ui.C(ui.Current().Title, fmt.Sprintf("%s #%s", r.Title, id))}
	for i, fd := range ed.Fields() {
		v := vals[i]
		switch fd.Kind {
		case catalog.Secret:
			continue
		case catalog.Lines:
			v = catalog.LinesTotal(v)
		case catalog.Select:
			v = ui.Status(v)
		}
		if v == "" {
			v = ui.C(ui.Current().Muted, "-")
		}
		lines = append(lines, fmt.Sprintf("%-16s %s", fd.Label, v))
	}
	ui.Panel(ui.Out, lines)
	return 0
}

// runSave opens a record (or a blank one for "new"), applies key=value pairs
// and submits. Keys are field labels in snake case, e.g. unit_price.
func runSave(ctx context.Context, e *env, args []string) int {
	r, id, pairs, code := recordArgs(e, "save", args)
	if code != 0 {
		return code
	}
	ed := r.NewEditor(e.app.Resources)
	vals, err := ed.Open(ctx, id)
	if err != nil {
		ui.Fail(api.MessageOr(err, "could not load record"))
		return 1
	}
	fields := ed.Fields()
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		i := fieldIndex(fields, k)
		if !ok || i < 0 {
			ui.Fail("unknown field: " + k)
			fmt.Fprintln(ui.Err, "fields:", strings.Join(fieldKeys(fields), ", "))
			return 2
		}
		vals[i] = v
	}
	created := ed.IsNew()
	if err := ed.Submit(ctx, vals); err != nil {
		ui.Fail(api.Message(err))
		return 1
	}
	if created {
		ui.OK(singularTitle(r) + " created")
	} else {
		ui.OK(singularTitle(r) + " #" + id + " saved")
	}
	return 0
}

func fieldKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

func fieldKeys(fs []catalog.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = fieldKey(f.Label)
	}
	return out
}

func fieldIndex(fs []catalog.Field, key string) int {
	key = fieldKey(key)
	for i, f := range fs {
		if fieldKey(f.Label) == key {
			return i
		}
	}
	return -1
}

func singularTitle(r catalog.Resource) string {
	t := strings.TrimSuffix(r.Title, "s")
	if t == "" {
		return "record"
	}
	return t
}

func runRemove(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	assumeYes := fs.Bool("y", false, "do not ask for confirmation")
	pos, err := parse(fs, args)
	if err != nil {
		return 2
	}
	if len(pos) != 2 {
		ui.Fail("usage: " + e.prog.Name() + " rm <resource> <id> [-y]")
		return 2
	}
	r, code := e.resolve(pos[0])
	if code != 0 {
		return code
	}
	id, err := strconv.ParseInt(pos[1], 10, 64)
	if err != nil || id <= 0 {
		ui.Fail("rm: not an id: " + pos[1])
		return 2
	}

	var c view.Confirmer = e.in
	if *assumeYes {
		c = yes{}
	}
	l := r.NewList(ctx, e.app.Resources, nil, 0)
	defer l.Close()
	l.Load(resource.Filter{})
	l.Wait()

	err = l.Delete(ctx, id, c)
	switch {
	case errors.Is(err, view.ErrDeclined):
		fmt.Fprintln(ui.Out, "cancelled")
		return 0
	case err != nil:
		ui.Fail(api.MessageOr(err, "delete failed"))
		return 1
	}
	l.Wait()
	ui.OK(fmt.Sprintf("removed %s #%d", r.Name, id))
	return printSnapshot(l.Snapshot())
}
