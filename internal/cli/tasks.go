package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/tasks"
	"github.com/Makepad-fr/tasktracker/internal/tui"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

type sessionCmd func(ctx context.Context, sess *tasks.Session, args []string) int

func (r *runner) connect(ctx context.Context, opts ...tasks.Option) (*tasks.Session, func(), error) {
	client, closeFn := r.opt.Client, nopClose
	if client == nil {
		c, cl, err := openBackend(ctx, r.cfg)
		if err != nil {
			return nil, nil, err
		}
		client, closeFn = c, cl
	}
	opts = append([]tasks.Option{tasks.WithLogger(r.log)}, opts...)
	sess := tasks.NewSession(client, r.identity(), opts...)
	return sess, func() {
		if err := closeFn(); err != nil {
			r.log.Warn("close backend", "error", err)
		}
	}, nil
}

// withSession opens the backend, loads the signed-in user's tasks and runs fn.
func (r *runner) withSession(ctx context.Context, args []string, fn sessionCmd) int {
	sess, done, err := r.connect(ctx, tasks.WithNotifier(ui.Printer{}))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer done()

	if err := sess.Refresh(ctx); err != nil {
		// already reported through the notifier
		return 1
	}
	if sess.Store().User() == nil {
		ui.Fail("not logged in. Run `tasktracker auth login` or set " + auth.TokenEnv)
		return 2
	}
	return fn(ctx, sess, args)
}

func (r *runner) doTUI(ctx context.Context) int {
	notes := tui.NewNotifier()
	sess, done, err := r.connect(ctx, tasks.WithNotifier(notes))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer done()

	if err := tui.Run(ctx, sess, notes); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs lets flags and positional arguments be mixed.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func usage(cmd string, err error) int {
	if err != nil {
		ui.Fail(cmd + ": " + err.Error())
	}
	ui.Fail("usage: tasktracker " + cmd + " (see tasktracker help)")
	return 2
}

// report turns a store error into an exit code. Remote failures were already
// shown by the notifier.
func report(err error) int {
	var v model.Violations
	var remote *tasks.RemoteError
	switch {
	case errors.As(err, &v):
		for _, x := range v {
			ui.Fail(x.Field + ": " + x.Message)
		}
		return 2
	case errors.Is(err, tasks.ErrUnauthenticated):
		ui.Fail("not logged in. Run `tasktracker auth login`")
		return 2
	case errors.As(err, &remote):
		return 1
	default:
		ui.Fail(err.Error())
		return 1
	}
}

// resolveID matches a full id or a unique prefix of one.
func resolveID(list []model.Task, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var found []string
	for _, t := range list {
		if t.ID == ref {
			return t.ID, nil
		}
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			found = append(found, t.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no task matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q matches %d tasks, use a longer prefix", ref, len(found))
	}
}

func (r *runner) doList(_ context.Context, sess *tasks.Session, args []string) int {
	fs := newFlags("ls")
	status := fs.String("status", string(tasks.All), "status filter")
	search := fs.String("search", "", "search query")
	if _, err := parseArgs(fs, args); err != nil {
		return usage("ls", err)
	}
	filter, err := tasks.ParseStatusFilter(*status)
	if err != nil {
		return usage("ls", err)
	}

	st := sess.Store()
	all := st.Tasks()
	counts := tasks.Count(all)
	visible := tasks.Filter(all, *search, filter)
	t := ui.Current()

	lines := []string{
		t.Title.Render("Tasks") + "  " + ui.Muted(st.User().Email),
		ui.CountsLine(counts),
		ui.FilterBar(filter, counts),
		"",
	}
	switch {
	case len(visible) == 0 && (*search != "" || filter != tasks.All):
		lines = append(lines, t.Title.Render("No tasks found"), ui.Muted("Try adjusting your search or filters"))
	case len(visible) == 0:
		lines = append(lines, t.Title.Render("No tasks yet"), ui.Muted("Tip: add with `tasktracker add \"Buy milk\"`"))
	default:
		today := ui.Today()
		for _, task := range visible {
			lines = append(lines, ui.Muted(ui.ShortID(task.ID))+" "+ui.TaskLine(task, today, 60))
			if task.Description != nil {
				lines = append(lines, "         "+ui.Muted(*task.Description))
			}
		}
	}
	fmt.Fprintln(ui.Stdout, ui.Panel(lines))
	return 0
}

func (r *runner) doStats(_ context.Context, sess *tasks.Session, args []string) int {
	if len(args) != 0 {
		return usage("stats", nil)
	}
	c := tasks.Count(sess.Store().Tasks())
	lines := []string{
		ui.CountsLine(c),
		ui.Muted(ui.ProgressBar(c.Done, c.Total, 28)),
	}
	fmt.Fprintln(ui.Stdout, ui.Panel(lines))
	return 0
}

func (r *runner) doAdd(ctx context.Context, sess *tasks.Session, args []string) int {
	fs := newFlags("add")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	priority := fs.String("priority", "", "low, medium or high")
	status := fs.String("status", "", "todo, in_progress or done")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usage("add <title...>", err)
	}
	if len(pos) == 0 {
		return usage("add <title...>", nil)
	}

	in := model.CreateInput{Title: strings.Join(pos, " "), Description: *desc}
	if *due != "" {
		d, err := model.ParseDate(*due)
		if err != nil {
			return usage("add", err)
		}
		in.DueDate = &d
	}
	if *priority != "" {
		if in.Priority, err = model.ParsePriority(*priority); err != nil {
			return usage("add", err)
		}
	}
	if *status != "" {
		if in.Status, err = model.ParseStatus(*status); err != nil {
			return usage("add", err)
		}
	}

	t, err := sess.Store().Create(ctx, in)
	if err != nil {
		return report(err)
	}
	fmt.Fprintln(ui.Stdout, ui.Muted(t.ID))
	return 0
}

func (r *runner) doEdit(ctx context.Context, sess *tasks.Session, args []string) int {
	fs := newFlags("edit")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	clearDesc := fs.Bool("clear-desc", false, "remove the description")
	due := fs.String("due", "", "new due date (YYYY-MM-DD)")
	clearDue := fs.Bool("clear-due", false, "remove the due date")
	priority := fs.String("priority", "", "low, medium or high")
	status := fs.String("status", "", "todo, in_progress or done")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usage("edit <id>", err)
	}
	if len(pos) != 1 {
		return usage("edit <id>", nil)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["desc"] && *clearDesc || set["due"] && *clearDue {
		return usage("edit", errors.New("cannot both set and clear a field"))
	}

	var patch model.UpdateInput
	if set["title"] {
		patch.Title = title
	}
	switch {
	case set["desc"]:
		patch.Description = model.Set(*desc)
	case *clearDesc:
		patch.Description = model.Clear[string]()
	}
	switch {
	case set["due"]:
		d, err := model.ParseDate(*due)
		if err != nil {
			return usage("edit", err)
		}
		patch.DueDate = model.Set(d)
	case *clearDue:
		patch.DueDate = model.Clear[model.Date]()
	}
	if set["priority"] {
		p, err := model.ParsePriority(*priority)
		if err != nil {
			return usage("edit", err)
		}
		patch.Priority = &p
	}
	if set["status"] {
		s, err := model.ParseStatus(*status)
		if err != nil {
			return usage("edit", err)
		}
		patch.Status = &s
	}

	id, err := resolveID(sess.Store().Tasks(), pos[0])
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	if _, err := sess.Store().Update(ctx, id, patch); err != nil {
		return report(err)
	}
	return 0
}

func (r *runner) doDone(ctx context.Context, sess *tasks.Session, args []string) int {
	if len(args) != 1 {
		return usage("done <id>", nil)
	}
	id, err := resolveID(sess.Store().Tasks(), args[0])
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	if _, err := sess.Store().Update(ctx, id, model.UpdateInput{Status: model.Ptr(model.StatusDone)}); err != nil {
		return report(err)
	}
	return 0
}

func (r *runner) doRemove(ctx context.Context, sess *tasks.Session, args []string) int {
	if len(args) != 1 {
		return usage("rm <id>", nil)
	}
	id, err := resolveID(sess.Store().Tasks(), args[0])
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	if err := sess.Store().Delete(ctx, id); err != nil {
		return report(err)
	}
	return 0
}
