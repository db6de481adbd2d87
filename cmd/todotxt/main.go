package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/todotxt/internal/app"
	"github.com/dori/todotxt/internal/ui"
	"github.com/dori/todotxt/internal/ui/theme"
)

var version = "0.1.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "list", "ls":
			handleList(os.Args[2:])
			return
		case "done":
			handleDone(os.Args[2:])
			return
		case "rm":
			handleRemove(os.Args[2:])
			return
		case "pri":
			handlePriority(os.Args[2:])
			return
		case "raise":
			handleBump(os.Args[2:], true)
			return
		case "lower":
			handleBump(os.Args[2:], false)
			return
		case "contexts":
			handleContexts()
			return
		case "projects":
			handleProjects()
			return
		case "html":
			handleHTML(os.Args[2:])
			return
		case "snapshot":
			handleSnapshot(os.Args[2:])
			return
		case "restore":
			handleRestore(os.Args[2:])
			return
		case "version":
			fmt.Printf("todotxt v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Flags for TUI mode
	themeFlag := flag.String("theme", "", "Theme name (nord, dracula, gruvbox, catppuccin)")
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	if err := runTUI(*configFlag, *themeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `todotxt - a todo.txt task list with a database behind it

Usage:
  todotxt                      Start the TUI
  todotxt add <task line>      Add a task in todo.txt syntax
  todotxt list [query...]      List tasks, optionally filtered
  todotxt done <id>            Mark a task complete
  todotxt rm <id>              Delete a task
  todotxt pri <id> <letter>    Set priority (A-Z, "-" clears)
  todotxt raise <id> [n]       Raise priority n steps (default 1)
  todotxt lower <id> [n]       Lower priority n steps (default 1)
  todotxt contexts             List all @contexts
  todotxt projects             List all +projects
  todotxt html [-o file]       Render the list as HTML
  todotxt snapshot [-o file]   Dump all tasks as YAML
  todotxt restore <file>       Replace all tasks from a YAML snapshot
  todotxt version              Show version
  todotxt help                 Show this help

Task Syntax:
  todotxt add "(A) 2026-08-25 Call mom @phone +family due:2026-08-30"

  x             Leading x marks the task complete
  (A)           Priority letter in parens
  @context      Context tag
  +project      Project tag
  due:DATE      Due date (YYYY-MM-DD)
  t:DATE        Threshold date - task hidden until then

Queries:
  todotxt list "priority>=B"
  todotxt list "contexts~work is_completed=false"
  todotxt list "due_date<2026-09-01"

  Attributes: priority, due_date, threshold_date, created_date,
  completion_date, is_completed, is_overdue, is_on_threshold,
  contexts, projects. Operators: = != < <= > >= ~ (contains).
  Priority ordering follows urgency, so priority>=B means B or
  more urgent. Clauses are joined with AND. Ids may be
  abbreviated to any unique prefix.

TUI Options:
  --theme <name>    Theme (nord, dracula, gruvbox, catppuccin)
  --config <path>   Config file (default: <data dir>/config.toml)

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                g/G           Go to top/bottom

  Actions:      a             Add new task
                enter         Edit the raw line
                tab/x         Toggle done
                d             Delete (with confirm)
                p             Set priority letter
                +/-           Raise/lower priority
                S             Sort and persist order

  Filters:      /             Substring search
                :             Structured query
                H             Cycle view
                ?             Help
                q             Quit`

	fmt.Println(help)
}

// loadConfig resolves the config path: explicit flag, then TODOTXT_CONFIG,
// then <data dir>/config.toml. A missing file yields defaults.
func loadConfig(path string) (*app.Config, error) {
	if path == "" {
		path = os.Getenv("TODOTXT_CONFIG")
	}
	if path == "" {
		path = app.DefaultConfigPath()
	}
	return app.LoadConfig(path)
}

func openApp() *app.App {
	cfg, err := loadConfig("")
	if err != nil {
		fatal(err)
	}
	application, err := app.New(cfg)
	if err != nil {
		fatal(err)
	}
	return application
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: todotxt add <task line>")
		fmt.Fprintln(os.Stderr, `Example: todotxt add "(A) Call mom @phone +family due:2026-08-30"`)
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	line := strings.Join(args, " ")
	e, err := application.Add(line)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Added %s: %s\n", shortID(e.ID), e.Task.String())
}

func handleList(args []string) {
	application := openApp()
	defer application.Close()

	entries := application.Entries()
	if len(args) > 0 {
		var err error
		entries, err = application.Query(strings.Join(args, " "))
		if err != nil {
			fatal(err)
		}
	}

	for _, e := range entries {
		fmt.Printf("%s  %s\n", shortID(e.ID), e.Task.String())
	}
}

func handleDone(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: todotxt done <id>")
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	e := mustFind(application, args[0])
	if err := application.SetCompleted(e, true); err != nil {
		fatal(err)
	}
	fmt.Printf("Done: %s\n", e.Task.String())
}

func handleRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: todotxt rm <id>")
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	e := mustFind(application, args[0])
	line := e.Task.String()
	if err := application.Delete(e); err != nil {
		fatal(err)
	}
	fmt.Printf("Deleted: %s\n", line)
}

func handlePriority(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: todotxt pri <id> <letter>")
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	e := mustFind(application, args[0])
	letter := strings.ToUpper(args[1])
	if letter == "-" || letter == "NONE" {
		letter = ""
	}
	if err := application.SetPriority(e, letter); err != nil {
		fatal(err)
	}
	fmt.Printf("Set: %s\n", e.Task.String())
}

func handleBump(args []string, raise bool) {
	verb := "raise"
	if !raise {
		verb = "lower"
	}
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Usage: todotxt %s <id> [n]\n", verb)
		os.Exit(1)
	}

	n := 1
	if len(args) == 2 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			fatal(fmt.Errorf("invalid step count %q: %w", args[1], err))
		}
		n = parsed
	}

	application := openApp()
	defer application.Close()

	e := mustFind(application, args[0])
	var err error
	if raise {
		_, err = application.Raise(e, n)
	} else {
		_, err = application.Lower(e, n)
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Set: %s\n", e.Task.String())
}

func handleContexts() {
	application := openApp()
	defer application.Close()

	for _, c := range application.List.Contexts() {
		fmt.Println(c)
	}
}

func handleProjects() {
	application := openApp()
	defer application.Close()

	for _, p := range application.List.Projects() {
		fmt.Println(p)
	}
}

func handleHTML(args []string) {
	fs := flag.NewFlagSet("html", flag.ExitOnError)
	out := fs.String("o", "", "write to file instead of stdout")
	fs.Parse(args)

	application := openApp()
	defer application.Close()

	doc := application.RenderHTML()
	if *out == "" {
		fmt.Println(doc)
		return
	}
	if err := os.WriteFile(*out, []byte(doc+"\n"), 0644); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func handleSnapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	out := fs.String("o", "", "write to file instead of stdout")
	fs.Parse(args)

	application := openApp()
	defer application.Close()

	data, err := application.Snapshot()
	if err != nil {
		fatal(err)
	}
	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func handleRestore(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: todotxt restore <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fatal(err)
	}

	application := openApp()
	defer application.Close()

	if err := application.Restore(data); err != nil {
		fatal(err)
	}
	fmt.Printf("Restored %d tasks\n", len(application.Entries()))
}

func mustFind(application *app.App, prefix string) *app.Entry {
	e, err := application.Find(prefix)
	if err != nil {
		fatal(err)
	}
	if e == nil {
		fatal(fmt.Errorf("no task matches id %q", prefix))
	}
	return e
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runTUI(configPath, themeName string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if themeName != "" {
		t, ok := theme.ByName(themeName)
		if !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		theme.SetTheme(t)
	}

	model := ui.NewRootModel(application)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
