package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// Options carry what the root command resolved.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Client replaces the configured backend when set.
	Client store.Client
	// Identity replaces the credential-file provider when set.
	Identity auth.Provider
	// In is read by `auth login` when no token argument is given.
	In io.Reader
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	if opt.Config == nil {
		opt.Config = config.Load()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.In == nil {
		opt.In = os.Stdin
	}
	r := &runner{opt: opt, cfg: opt.Config, log: opt.Logger}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "ls":
		return r.withSession(ctx, a, r.doList)
	case "stats":
		return r.withSession(ctx, a, r.doStats)
	case "add":
		return r.withSession(ctx, a, r.doAdd)
	case "edit":
		return r.withSession(ctx, a, r.doEdit)
	case "done":
		return r.withSession(ctx, a, r.doDone)
	case "rm":
		return r.withSession(ctx, a, r.doRemove)
	case "tui":
		return r.doTUI(ctx)
	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: tasktracker auth <login|logout|status|whoami|issue>")
			return 2
		}
		switch a[0] {
		case "login":
			return r.doAuthLogin(a[1:])
		case "logout":
			return r.doAuthLogout()
		case "status":
			return r.doAuthStatus()
		case "whoami":
			return r.doAuthWhoAmI()
		case "issue":
			return r.doAuthIssue(a[1:])
		default:
			ui.Fail("usage: tasktracker auth <login|logout|status|whoami|issue>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(ui.Stdout, `tasktracker - personal task tracker

Usage:
  tasktracker [--backend memory|sqlite|postgres] [--theme classic|neon|mono] <subcommand> [args]

Subcommands:
  ls [--status S] [--search Q]        List tasks with counts
  stats                               Counts and progress
  add <title...> [--desc D] [--due YYYY-MM-DD] [--priority low|medium|high] [--status S]
  edit <id> [--title T] [--desc D | --clear-desc] [--due D | --clear-due] [--priority P] [--status S]
  done <id>                           Mark a task done
  rm <id>                             Delete a task
  tui                                 Interactive dashboard
  auth <login|logout|status|whoami>   Token authentication
  auth issue <email> [--ttl D] [--login]  Mint a token (needs TASKTRACKER_JWT_SECRET)

Ids may be shortened to any unique prefix.
Statuses: todo, in_progress, done. Filters add: all.

Examples:
  tasktracker add "Buy milk" --priority high --due 2025-01-31
  tasktracker ls --status todo --search milk
  tasktracker done 3f2a
`)
}

type runner struct {
	opt Options
	cfg *config.Config
	log *slog.Logger
}

func (r *runner) files() *auth.FileProvider {
	return auth.NewFileProvider(r.cfg.Home, []byte(r.cfg.JWTSecret), r.log)
}

func (r *runner) identity() auth.Provider {
	if r.opt.Identity != nil {
		return r.opt.Identity
	}
	return r.files()
}
