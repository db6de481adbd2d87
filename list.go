package todotxt

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"weak"
)

// Mode selects how a List holds on to its tasks.
type Mode int

const (
	// Strong membership keeps every task alive until removed.
	Strong Mode = iota
	// Weak membership does not keep tasks alive: once the caller drops a
	// task, it silently leaves the list and the index. Use this when the
	// caller owns task lifetimes and the list is a lookup structure.
	Weak
)

// List is a registry of tasks sharing one grammar and one token index. All
// tasks enter through Parse, NewTask or Add; mutations on member tasks keep
// the index exact. The zero List is not usable; construct with NewList.
//
// A list is safe to use from a single goroutine; the internal lock only
// shields the bookkeeping from weak-mode cleanups, which run on the
// runtime's schedule.
type List struct {
	reg  *Registry
	mode Mode

	mu   sync.Mutex
	refs []taskRef
	ix   *index
}

// NewList builds a task list. A nil registry means the builtin grammar.
func NewList(reg *Registry, mode Mode) *List {
	if reg == nil {
		reg = NewRegistry()
	}
	return &List{reg: reg, mode: mode, ix: newIndex()}
}

// NewDefaultList builds a strong list with the builtin grammar.
func NewDefaultList() *List {
	return NewList(nil, Strong)
}

// Registry returns the grammar the list parses with.
func (l *List) Registry() *Registry { return l.reg }

// Mode returns the list's membership mode.
func (l *List) Mode() Mode { return l.mode }

// Parse turns one line into a task and enrolls it. The line must not span
// multiple lines; files are the caller's concern, one line at a time.
func (l *List) Parse(line string) (*Task, error) {
	if strings.ContainsAny(line, "\r\n") {
		return nil, fmt.Errorf("%w: input spans multiple lines", ErrParse)
	}
	t := newTask(l.reg, l)
	if err := t.parseLine(line); err != nil {
		return nil, err
	}
	l.enroll(t)
	return t, nil
}

// NewTask enrolls and returns an empty task: incomplete, empty priority,
// no body.
func (l *List) NewTask() *Task {
	t := newTask(l.reg, l)
	l.enroll(t)
	return t
}

// Add enrolls a task that left another list (or this one). Enrolling a task
// still belonging to a different list is an error; re-adding a member is a
// no-op.
func (l *List) Add(t *Task) error {
	if t.list == l {
		return nil
	}
	if t.list != nil {
		return fmt.Errorf("%w: task belongs to another list", ErrArgument)
	}
	t.list = l
	l.enroll(t)
	return nil
}

// Remove detaches a task from the list and scrubs it from the index. The
// task itself stays usable; its later mutations no longer touch this list.
func (l *List) Remove(t *Task) {
	if t.list != l {
		return
	}
	t.list = nil
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.refs[:0]
	for _, r := range l.refs {
		held := r.task()
		if held == nil || held == t {
			continue
		}
		kept = append(kept, r)
	}
	l.refs = kept
	l.ix.drop(t)
}

func (l *List) enroll(t *Task) {
	l.mu.Lock()
	l.refs = append(l.refs, l.ref(t))
	for _, tok := range t.Tokens() {
		l.ix.add(l.ref(t), t, tok)
	}
	l.mu.Unlock()
	if l.mode == Weak {
		runtime.AddCleanup(t, func(list *List) { list.sweep() }, l)
	}
}

func (l *List) ref(t *Task) taskRef {
	if l.mode == Weak {
		return weakRef{p: weak.Make(t)}
	}
	return strongRef{t: t}
}

// sweep drops refs to collected tasks. Weak-mode cleanups call it; it never
// touches task state.
func (l *List) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.refs[:0]
	for _, r := range l.refs {
		if r.task() != nil {
			kept = append(kept, r)
		}
	}
	l.refs = kept
	l.ix.sweep()
}

// Tasks returns the live member tasks in enrollment order.
func (l *List) Tasks() []*Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Task, 0, len(l.refs))
	for _, r := range l.refs {
		if t := r.task(); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Len counts the live member tasks.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.refs {
		if r.task() != nil {
			n++
		}
	}
	return n
}

// Active returns tasks that are neither completed nor deferred behind a
// future threshold date.
func (l *List) Active() []*Task {
	today := Today()
	return l.filter(func(t *Task) bool {
		return !t.Completed() && !t.onThresholdOn(today)
	})
}

// Completed returns the completed tasks.
func (l *List) Completed() []*Task {
	return l.filter(func(t *Task) bool { return t.Completed() })
}

// Future returns tasks deferred behind a threshold date after today.
func (l *List) Future() []*Task {
	today := Today()
	return l.filter(func(t *Task) bool { return t.onThresholdOn(today) })
}

// Overdue returns tasks whose due date has passed, completed or not.
func (l *List) Overdue() []*Task {
	today := Today()
	return l.filter(func(t *Task) bool { return t.overdueOn(today) })
}

// Due returns tasks due exactly on the given date.
func (l *List) Due(on Date) []*Task {
	return l.filter(func(t *Task) bool { return t.DueDate().Equal(on) && !on.IsZero() })
}

func (l *List) filter(keep func(*Task) bool) []*Task {
	var out []*Task
	for _, t := range l.Tasks() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// TasksWith answers the index: the live tasks holding the given value of an
// indexed kind, in the order they acquired it.
func (l *List) TasksWith(k *TokenKind, value string) []*Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ix.tasksFor(k, value)
}

// ValuesOf returns the sorted distinct values of an indexed kind across the
// list.
func (l *List) ValuesOf(k *TokenKind) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ix.values(k)
}

// WithContext returns the tasks holding the context.
func (l *List) WithContext(name string) []*Task {
	return l.TasksWith(KindContext, name)
}

// WithProject returns the tasks holding the project.
func (l *List) WithProject(name string) []*Task {
	return l.TasksWith(KindProject, name)
}

// Contexts returns every context in the list, sorted.
func (l *List) Contexts() []string { return l.ValuesOf(KindContext) }

// Projects returns every project in the list, sorted.
func (l *List) Projects() []string { return l.ValuesOf(KindProject) }

// Sort reorders the list by Task.Less, stably.
func (l *List) Sort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	alive := make([]*Task, 0, len(l.refs))
	for _, r := range l.refs {
		if t := r.task(); t != nil {
			alive = append(alive, t)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool { return alive[i].Less(alive[j]) })
	refs := make([]taskRef, len(alive))
	for i, t := range alive {
		refs[i] = l.ref(t)
	}
	l.refs = refs
}

// String renders the member tasks as lines joined by newlines.
func (l *List) String() string {
	tasks := l.Tasks()
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

// holds reports whether the index bucket for (kind, value) contains the
// task; test seam.
func (l *List) holds(k *TokenKind, value string, t *Task) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ix.holds(k, value, t)
}

// Index mutations called from Task; each takes the lock once.

func (l *List) indexAdd(t *Task, tok Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ix.add(l.ref(t), t, tok)
}

func (l *List) indexRemove(t *Task, tok Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ix.remove(t, tok)
}

func (l *List) indexRemoveKind(t *Task, k *TokenKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ix.removeKind(t, k)
}
