package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada-remote/internal/cli"
	"github.com/Makepad-fr/tada-remote/internal/config"
	"github.com/Makepad-fr/tada-remote/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ExitOnError)
	groupPending := fs.Bool("group", false, "group ls output by pending/done")
	forceColor := fs.Bool("color", false, "force ANSI colors")
	noColor := fs.Bool("no-color", os.Getenv("NO_COLOR") != "", "disable ANSI colors")
	fs.Usage = cli.PrintHelp

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	ui.SetColorForcing(*forceColor, *noColor)

	// Hand the remaining args to the CLI runner.
	args := fs.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, args, cli.Options{
		Group:  *groupPending,
		Config: cfg,
	})
	stop()
	os.Exit(code)
}
