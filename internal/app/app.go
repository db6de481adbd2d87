// Package app ties the task engine to its persistence: it loads the stored
// lines into a todotxt.List on startup and writes every mutation back, so
// the database and the in-memory list never drift apart.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dori/todotxt"
	"github.com/dori/todotxt/internal/store"
	"github.com/dori/todotxt/query"
	"github.com/dori/todotxt/render"
)

// App holds the application state and dependencies.
type App struct {
	Store   *store.Store
	List    *todotxt.List
	HTML    *render.HTML
	Log     *log.Logger
	DataDir string

	entries []*Entry
	byID    map[string]*Entry
	byTask  map[*todotxt.Task]*Entry
}

// Entry pairs a stored line with its live task.
type Entry struct {
	ID        string
	Task      *todotxt.Task
	CreatedAt time.Time
}

// New creates a new application instance.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "todotxt",
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	html := cfg.HTML
	if html == nil {
		html = render.NewHTML()
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{
		Store:   st,
		HTML:    html,
		Log:     logger,
		DataDir: cfg.DataDir,
	}
	if err := a.load(); err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// load builds the in-memory list from the stored lines. Lines that no
// longer parse are kept in the database but skipped with a warning, so one
// corrupt row cannot take the whole list down.
func (a *App) load() error {
	lines, err := a.Store.All()
	if err != nil {
		return fmt.Errorf("failed to load lines: %w", err)
	}

	a.List = todotxt.NewDefaultList()
	a.entries = nil
	a.byID = make(map[string]*Entry)
	a.byTask = make(map[*todotxt.Task]*Entry)

	for _, line := range lines {
		t, err := a.List.Parse(line.Text)
		if err != nil {
			a.Log.Warn("skipping unparsable line", "id", line.ID, "err", err)
			continue
		}
		a.track(&Entry{ID: line.ID, Task: t, CreatedAt: line.CreatedAt})
	}
	a.Log.Debug("loaded list", "tasks", a.List.Len())
	return nil
}

func (a *App) track(e *Entry) {
	a.entries = append(a.entries, e)
	a.byID[e.ID] = e
	a.byTask[e.Task] = e
}

// Close cleans up application resources.
func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// Entries returns the tracked tasks in list order.
func (a *App) Entries() []*Entry {
	out := make([]*Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Entry returns the entry a task belongs to, or nil.
func (a *App) Entry(t *todotxt.Task) *Entry {
	return a.byTask[t]
}

// Find resolves an id prefix to an entry. It returns nil when nothing
// matches and an error when the prefix is ambiguous.
func (a *App) Find(prefix string) (*Entry, error) {
	line, err := a.Store.Find(prefix)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, nil
	}
	e, ok := a.byID[line.ID]
	if !ok {
		return nil, fmt.Errorf("line %s is in the database but not in the list", line.ID)
	}
	return e, nil
}

// Add parses a new task line and persists it.
func (a *App) Add(line string) (*Entry, error) {
	t, err := a.List.Parse(line)
	if err != nil {
		return nil, err
	}

	stored, err := a.Store.Append(t.String())
	if err != nil {
		a.List.Remove(t)
		return nil, fmt.Errorf("failed to store task: %w", err)
	}

	e := &Entry{ID: stored.ID, Task: t, CreatedAt: stored.CreatedAt}
	a.track(e)
	a.Log.Debug("added task", "id", e.ID, "line", t.String())
	return e, nil
}

// Edit replaces an entry's task with a reparsed line, keeping its identity.
func (a *App) Edit(e *Entry, line string) error {
	t, err := a.List.Parse(line)
	if err != nil {
		return err
	}

	if err := a.Store.Update(e.ID, t.String()); err != nil {
		a.List.Remove(t)
		return fmt.Errorf("failed to store task: %w", err)
	}

	a.List.Remove(e.Task)
	delete(a.byTask, e.Task)
	e.Task = t
	a.byTask[t] = e
	return nil
}

// Save writes an entry's current rendering back to the store. Call it after
// mutating the task directly.
func (a *App) Save(e *Entry) error {
	if err := a.Store.Update(e.ID, e.Task.String()); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// SetCompleted marks or unmarks an entry's task and persists it.
func (a *App) SetCompleted(e *Entry, done bool) error {
	e.Task.SetCompleted(done)
	return a.Save(e)
}

// SetPriority sets the task's priority from a letter ("A".."Z", "" clears)
// and persists it.
func (a *App) SetPriority(e *Entry, letter string) error {
	p, err := todotxt.ParsePriority(letter)
	if err != nil {
		return err
	}
	e.Task.SetPriority(p)
	return a.Save(e)
}

// Raise raises the task's priority n steps and persists it.
func (a *App) Raise(e *Entry, n int) (todotxt.Priority, error) {
	p := e.Task.Raise(n)
	return p, a.Save(e)
}

// Lower lowers the task's priority n steps and persists it.
func (a *App) Lower(e *Entry, n int) (todotxt.Priority, error) {
	p := e.Task.Lower(n)
	return p, a.Save(e)
}

// Delete removes an entry from the list and the store.
func (a *App) Delete(e *Entry) error {
	if err := a.Store.Delete(e.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	a.List.Remove(e.Task)
	delete(a.byID, e.ID)
	delete(a.byTask, e.Task)
	for i, other := range a.entries {
		if other == e {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			break
		}
	}
	a.Log.Debug("deleted task", "id", e.ID)
	return nil
}

// Query filters the entries with a query expression, in list order.
func (a *App) Query(expr string) ([]*Entry, error) {
	q, err := query.Parse(expr)
	if err != nil {
		return nil, err
	}

	var out []*Entry
	for _, e := range a.entries {
		ok, err := q.Match(e.Task)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Sort reorders the list by task order and persists the new positions.
func (a *App) Sort() error {
	a.List.Sort()

	ordered := make([]*Entry, 0, len(a.entries))
	lines := make([]store.Line, 0, len(a.entries))
	for _, t := range a.List.Tasks() {
		e, ok := a.byTask[t]
		if !ok {
			continue
		}
		ordered = append(ordered, e)
		lines = append(lines, store.Line{
			ID:        e.ID,
			Text:      t.String(),
			CreatedAt: e.CreatedAt,
		})
	}
	a.entries = ordered

	if err := a.Store.Replace(lines); err != nil {
		return fmt.Errorf("failed to store order: %w", err)
	}
	return nil
}

// RenderHTML renders the whole list as HTML, one wrapper per line.
func (a *App) RenderHTML() string {
	return a.HTML.List(a.List)
}

// Snapshot dumps the stored list as YAML.
func (a *App) Snapshot() ([]byte, error) {
	return a.Store.Dump()
}

// Restore replaces the stored list with a snapshot and reloads.
func (a *App) Restore(data []byte) error {
	if err := a.Store.Restore(data); err != nil {
		return err
	}
	return a.load()
}
