package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/ui"
)

func runDashboard(ctx context.Context, e *env, _ []string) int {
	now := time.Now()
	sum, err := e.app.Resources.Dashboard(ctx, now)
	if err != nil {
		ui.Fail(api.MessageOr(err, "dashboard unavailable"))
		return 1
	}
	t := ui.Current()
	lines := []string{
		ui.C(t.Title, "Dashboard · "+now.Format("2006-01-02")),
		fmt.Sprintf("%-24s %d", "Today's consultations", sum.TodayConsultations),
		fmt.Sprintf("%-24s %d", "Active contracts", sum.ActiveContracts),
		fmt.Sprintf("%-24s %d", "Pending installations", sum.PendingInstallations),
		fmt.Sprintf("%-24s %d / %d  %s", "Low stock", len(sum.LowStock), sum.InventoryTotal,
			ui.ProgressBar(len(sum.LowStock), sum.InventoryTotal, 20)),
	}
	for _, inv := range sum.LowStock {
		lines = append(lines, ui.C(t.Error, fmt.Sprintf("  %s %-20s %d / min %d",
			t.SymPending, itemLabel(inv), inv.Quantity, inv.MinStockLevel)))
	}
	ui.Panel(ui.Out, lines)
	return 0
}

func itemLabel(inv model.Inventory) string {
	if l := inv.Item.Label(); l != "" {
		return l
	}
	return "item #" + strconv.FormatInt(inv.ItemID, 10)
}

var backupColumns = []ui.Column[model.Backup]{
	{Title: "File", Width: 36, Value: func(b model.Backup) string { return b.Filename }},
	{Title: "Size", Width: 10, Value: func(b model.Backup) string { return ui.Bytes(b.Size) }},
	{Title: "Created", Width: 16, Value: func(b model.Backup) string { return ui.Ago(b.CreatedAt) }},
}

func runBackup(ctx context.Context, e *env, args []string) int {
	usage := "usage: " + e.prog.Name() + " backup <create|ls|get <file> [-o path]|rm <file> [-y]>"
	if len(args) == 0 {
		ui.Fail(usage)
		return 2
	}
	fs := flag.NewFlagSet("backup "+args[0], flag.ContinueOnError)
	assumeYes := fs.Bool("y", false, "do not ask for confirmation")
	out := fs.String("o", "", "output path (get)")
	pos, err := parse(fs, args[1:])
	if err != nil {
		return 2
	}
	bk := e.app.Resources.Backups

	switch args[0] {
	case "create":
		if !*assumeYes && !e.in.Confirm("Create a database backup now?") {
			fmt.Fprintln(ui.Out, "cancelled")
			return 0
		}
		res, err := bk.Create(ctx)
		if err != nil {
			ui.Fail(api.MessageOr(err, "backup failed"))
			return 1
		}
		ui.OK("backup created: " + res.BackupFile)
		return 0

	case "ls":
		list, err := bk.List(ctx)
		if err != nil {
			ui.Fail(api.MessageOr(err, "could not list backups"))
			return 1
		}
		ui.Table(ui.Out, backupColumns, list)
		return 0

	case "get":
		if len(pos) != 1 {
			ui.Fail(usage)
			return 2
		}
		return downloadBackup(ctx, e, pos[0], *out)

	case "rm":
		if len(pos) != 1 {
			ui.Fail(usage)
			return 2
		}
		if !*assumeYes && !e.in.Confirm("Delete backup "+pos[0]+"?") {
			fmt.Fprintln(ui.Out, "cancelled")
			return 0
		}
		if err := bk.Delete(ctx, pos[0]); err != nil {
			ui.Fail(api.MessageOr(err, "delete failed"))
			return 1
		}
		ui.OK("removed " + pos[0])
		return 0
	}
	ui.Fail(usage)
	return 2
}

func downloadBackup(ctx context.Context, e *env, name, out string) int {
	if out == "" {
		out = filepath.Base(name)
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		ui.Fail("open " + out + ": " + err.Error())
		return 1
	}
	n, err := e.app.Resources.Backups.Download(ctx, name, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		ui.Fail(api.MessageOr(err, "download failed"))
		return 1
	}
	ui.OK(fmt.Sprintf("saved %s (%s)", out, ui.Bytes(n)))
	return 0
}
