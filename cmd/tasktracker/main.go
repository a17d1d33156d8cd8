package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tasktracker/internal/cli"
	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

func main() {
	cfg := config.Load()

	// Root flags (apply to every subcommand)
	backend := flag.String("backend", cfg.Backend, "persistence backend: memory, sqlite or postgres")
	theme := flag.String("theme", cfg.Theme, "color theme: classic, neon or mono")
	flag.Parse()
	cfg.Backend, cfg.Theme = *backend, *theme

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	logger, closeLog := newLogger(cfg)
	slog.SetDefault(logger)
	ui.SetTheme(cfg.Theme)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, args, cli.Options{Config: cfg, Logger: logger})
	stop()
	closeLog()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

// newLogger writes to TASKTRACKER_LOG_FILE when set, so the dashboard's
// screen is left alone.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v (logging to stderr)\n", err)
		} else {
			w = f
			closeFn = func() { f.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})), closeFn
}
