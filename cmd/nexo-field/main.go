package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/nexo/internal/app"
	"github.com/Makepad-fr/nexo/internal/cli"
	"github.com/Makepad-fr/nexo/internal/tui"
)

func main() {
	server := flag.String("server", "", "API base URL (overrides NEXO_API_URL)")
	theme := flag.String("theme", "classic", "output theme: classic, neon or mono")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		// Field workers mostly live in the full-screen app.
		args = []string{"tui"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, cli.Field, args, cli.Options{
		Server:  *server,
		Theme:   *theme,
		NoColor: *noColor,
		Interactive: func(ctx context.Context, a *app.App, _ cli.Program) error {
			return tui.Run(ctx, a, true)
		},
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
