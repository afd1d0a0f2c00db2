package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-remote/internal/checkbox"
	"github.com/Makepad-fr/tada-remote/internal/client"
	"github.com/Makepad-fr/tada-remote/internal/config"
	"github.com/Makepad-fr/tada-remote/internal/devserver"
	"github.com/Makepad-fr/tada-remote/internal/logging"
	"github.com/Makepad-fr/tada-remote/internal/model"
	"github.com/Makepad-fr/tada-remote/internal/store/jsonstore"
	"github.com/Makepad-fr/tada-remote/internal/tui"
	"github.com/Makepad-fr/tada-remote/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool // list grouped by pending/done
	Config *config.Config

	// Optional overrides, mostly for tests.
	API    tui.TodoAPI
	Store  checkbox.Store
	Logger *log.Logger
	In     io.Reader
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	if opt.Config == nil {
		opt.Config = &config.Config{APIURL: config.DefaultAPIURL, Checklist: config.DefaultChecklist()}
	}
	if opt.In == nil {
		opt.In = os.Stdin
	}
	ui.SetTheme(opt.Config.Theme)
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ui":
		return doUI(ctx, opt)

	case "ls":
		return doList(ctx, opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todo add <title...>")
			return 2
		}
		return doAdd(ctx, opt, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: todo done <id>")
			return 2
		}
		id, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return doToggle(ctx, opt, id)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		yes := fs.Bool("y", false, "skip confirmation")
		if err := fs.Parse(a); err != nil || fs.NArg() != 1 {
			ui.Fail("usage: todo rm [-y] <id>")
			return 2
		}
		id, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			ui.Fail("rm: not a number: " + fs.Arg(0))
			return 2
		}
		return doRemove(ctx, opt, id, *yes)

	case "check":
		switch {
		case len(a) == 0:
			return doChecklistUI(ctx, opt)
		case len(a) == 1 && (a[0] == "-l" || a[0] == "--list"):
			return doChecklistList(opt)
		case len(a) == 1:
			return doCheck(opt, a[0])
		}
		ui.Fail("usage: todo check [-l | <id>]")
		return 2

	case "serve":
		return doServe(ctx, opt)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Stdout(), `todo - a tiny client for the tutorial todo API

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ui                 Interactive todo list
  ls                 List todos
  add <title...>     Add a new todo (title can be multiple words)
  done <id>          Toggle completion of the todo with that id
  rm [-y] <id>       Delete the todo with that id (asks first unless -y)
  check              Interactive tutorial checklist
  check -l           Print the checklist
  check <id>         Toggle one checklist item
  serve              Run a development /todos backend

Flags:
  -api URL           Backend base URL (default %s)
  -group             Group ls output by pending/done
  -color, -no-color  Force or disable ANSI colors (NO_COLOR is honored)

Examples:
  todo add "買い物"
  todo ls
  todo done 2
  todo rm 3
`, config.DefaultAPIURL)
}

// -------------- wiring ----------------

func (opt Options) api(logger *log.Logger) tui.TodoAPI {
	if opt.API != nil {
		return opt.API
	}
	return client.New(opt.Config.APIURL, client.WithLogger(logger))
}

func (opt Options) store() checkbox.Store {
	if opt.Store != nil {
		return opt.Store
	}
	return jsonstore.New(opt.Config.StorePath)
}

func (opt Options) logOptions() logging.Options {
	return logging.Options{Level: opt.Config.LogLevel, Formatter: opt.Config.LogFormat, Prefix: "tada"}
}

// consoleLogger logs to stderr for one-shot subcommands.
func (opt Options) consoleLogger() *log.Logger {
	if opt.Logger != nil {
		return opt.Logger
	}
	return logging.New(ui.Stderr(), opt.logOptions())
}

// fileLogger keeps diagnostics off the screen while a TUI runs.
func (opt Options) fileLogger() (*log.Logger, io.Closer, error) {
	if opt.Logger != nil {
		return opt.Logger, io.NopCloser(nil), nil
	}
	return logging.OpenFile(opt.Config.LogFile, opt.logOptions())
}

// -------------- subcommand impls ----------------

func doUI(ctx context.Context, opt Options) int {
	logger, closer, err := opt.fileLogger()
	if err != nil {
		ui.Fail("log: " + err.Error())
		return 1
	}
	defer closer.Close()

	if err := tui.RunTodos(ctx, opt.api(logger), logger); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doList(ctx context.Context, opt Options) int {
	todos, err := opt.api(opt.consoleLogger()).List(ctx)
	if err != nil {
		ui.Fail("ls: " + err.Error())
		return 1
	}

	// Header + progress
	d, p := stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todos"),
		ui.C(ui.Current().Success, ui.Current().SymDone), d,
		ui.C(ui.Current().Pending, ui.Current().SymUnchecked), p,
		ui.C(ui.Current().Accent, "Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"買い物\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(ctx context.Context, opt Options, title string) int {
	if strings.TrimSpace(title) == "" {
		ui.Fail("add: empty title")
		return 2
	}
	todo, err := opt.api(opt.consoleLogger()).Create(ctx, title)
	if err != nil {
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("added #%d %s", todo.ID, todo.Title))
	return 0
}

func doToggle(ctx context.Context, opt Options, id int) int {
	todo, err := opt.api(opt.consoleLogger()).Complete(ctx, id)
	if err != nil {
		ui.Fail("done: " + err.Error())
		return 1
	}
	state := "pending"
	if todo.Completed {
		state = "completed"
	}
	ui.OK(fmt.Sprintf("#%d %s", todo.ID, state))
	return 0
}

func doRemove(ctx context.Context, opt Options, id int, yes bool) int {
	if !yes && !confirm(opt.In, fmt.Sprintf("このTodoを削除しますか？ #%d [y/N] ", id)) {
		ui.OK("cancelled")
		return 0
	}
	if _, err := opt.api(opt.consoleLogger()).Delete(ctx, id); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("removed #%d", id))
	return 0
}

// confirm reads one line from in; only y/yes count as consent.
func confirm(in io.Reader, prompt string) bool {
	fmt.Fprint(ui.Stdout(), prompt)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		fmt.Fprintln(ui.Stdout())
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func (opt Options) checklist(logger *log.Logger) (*checkbox.Checklist, error) {
	return checkbox.NewChecklist(opt.Config.Checklist, opt.store(), logger)
}

func doChecklistUI(ctx context.Context, opt Options) int {
	logger, closer, err := opt.fileLogger()
	if err != nil {
		ui.Fail("log: " + err.Error())
		return 1
	}
	defer closer.Close()

	cl, err := opt.checklist(logger)
	if err != nil {
		ui.Fail("check: " + err.Error())
		return 1
	}
	if err := tui.RunChecklist(ctx, cl); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doChecklistList(opt Options) int {
	cl, err := opt.checklist(opt.consoleLogger())
	if err != nil {
		ui.Fail("check: " + err.Error())
		return 1
	}
	cl.Mount()
	done, total := cl.Progress()

	lines := []string{
		ui.C(ui.Current().Title, "Checklist"),
		ui.C(ui.Current().Muted, ui.ProgressBar(done, total, 28)),
		"",
	}
	for _, e := range cl.Entries() {
		lines = append(lines, checkLine(e.Box.ID(), e.Label, e.Box.Checked()))
	}
	ui.Panel(lines)
	return 0
}

func doCheck(opt Options, id string) int {
	cl, err := opt.checklist(opt.consoleLogger())
	if err != nil {
		ui.Fail("check: " + err.Error())
		return 1
	}
	box, ok := cl.Lookup(id)
	if !ok {
		ui.Fail("check: unknown item: " + id)
		fmt.Fprintln(ui.Stderr(), ui.Dim("Hint: run `todo check -l` to see item ids"))
		return 2
	}
	box.Mount()
	if box.Toggle() {
		ui.OK(id + " checked")
	} else {
		ui.OK(id + " unchecked")
	}
	return 0
}

func doServe(ctx context.Context, opt Options) int {
	logger := opt.consoleLogger()

	var store devserver.Store = devserver.NewMemoryStore()
	if opt.Config.Database != "" {
		s, err := devserver.OpenSQLite(ctx, opt.Config.Database)
		if err != nil {
			ui.Fail("serve: " + err.Error())
			return 1
		}
		store = s
	}
	defer store.Close()

	srv := devserver.New(store, logger)
	if err := srv.ListenAndServe(ctx, opt.Config.Listen); err != nil && !errors.Is(err, context.Canceled) {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	return 0
}

// -------------- rendering helpers --------------

func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func checkLine(ref, title string, checked bool) string {
	box := ui.Current().BoxUnchecked
	color := ui.Current().Muted
	if checked {
		box, color = ui.Current().BoxChecked, ui.Current().Success
	}
	if r := []rune(title); len(r) > 80 {
		title = string(r[:77]) + "..."
	}
	return fmt.Sprintf("%s %s %s", ui.Dim(ref), ui.C(color, box), title)
}

func flatLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{ui.C(ui.Current().Muted, "no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, checkLine(fmt.Sprintf("#%-3d", t.ID), t.Title, t.Completed))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
