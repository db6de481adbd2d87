package todotxt

import (
	"fmt"
	"sort"
	"strings"
)

// Task is one line of a todo.txt document as a mutable, ordered token
// sequence. The completion marker and three fixed slots (completion date,
// priority, creation date) come first; everything after them is the body.
// The priority slot is always occupied, holding the empty priority when the
// line shows none. Serialization is lossless: an unmutated parsed task
// renders back to its input line.
//
// Tasks belong to the List that created them. Every mutation keeps the
// list's token index exact.
type Task struct {
	reg  *Registry
	list *List

	completed bool
	slots     [SlotCreatedDate + 1]Token
	body      []Token
}

// completionMarker is the leading word of a completed task line.
const completionMarker = "x"

func newTask(reg *Registry, list *List) *Task {
	t := &Task{reg: reg, list: list}
	if k, ok := reg.slot(SlotPriority); ok && k == KindPriority {
		t.slots[SlotPriority] = k.New(NoPriority)
	}
	return t
}

// parseLine fills the task from a raw line: optional completion marker,
// then the fixed slots in order, each consuming a word only when its
// grammar matches, then the body. A singleton kind carries one value per
// line; repeats of its word stay plain text. Malformed payloads (a date
// that does not exist) abort the parse.
func (t *Task) parseLine(line string) error {
	words := strings.Split(line, " ")
	// Repeated separators produce empty words; they carry nothing.
	clean := words[:0]
	for _, w := range words {
		if w != "" {
			clean = append(clean, w)
		}
	}
	words = clean

	i := 0
	if i < len(words) && words[i] == completionMarker {
		t.completed = true
		i++
		if err := t.scanSlot(SlotCompletionDate, words, &i); err != nil {
			return err
		}
	}
	if err := t.scanSlot(SlotPriority, words, &i); err != nil {
		return err
	}
	if err := t.scanSlot(SlotCreatedDate, words, &i); err != nil {
		return err
	}

	taken := make(map[*TokenKind]bool)
	for ; i < len(words); i++ {
		tok, err := t.reg.classify(words[i], false)
		if err != nil {
			return err
		}
		if tok.Kind.Singleton && taken[tok.Kind] {
			tok = KindText.New(Text(words[i]))
		}
		taken[tok.Kind] = true
		t.body = append(t.body, tok)
	}
	return nil
}

// scanSlot consumes words[*i] into a fixed slot when the slot's kind
// matches it. The priority slot falls back to the empty priority so the
// slot is never vacant.
func (t *Task) scanSlot(slot int, words []string, i *int) error {
	k, ok := t.reg.slot(slot)
	if !ok {
		return nil
	}
	if *i < len(words) {
		tok, matched, err := k.ParseWord(words[*i])
		if err != nil {
			return err
		}
		if matched {
			t.slots[slot] = tok
			*i++
			return nil
		}
	}
	if slot == SlotPriority && k == KindPriority {
		t.slots[slot] = k.New(NoPriority)
	}
	return nil
}

// Completed reports whether the task carries the completion marker.
func (t *Task) Completed() bool { return t.completed }

// SetCompleted marks or unmarks the task as done. Completing stamps today
// as the completion date; completing an already completed task leaves its
// stamp alone. Unmarking drops both the marker and the date.
func (t *Task) SetCompleted(done bool) {
	if done == t.completed {
		return
	}
	if done {
		t.completed = true
		t.putToken(KindCompletionDate.New(Today()))
		return
	}
	t.completed = false
	t.clearKind(KindCompletionDate)
}

// Priority returns the task's priority; the empty priority when none shows.
func (t *Task) Priority() Priority {
	if p, ok := t.slots[SlotPriority].Value.(Priority); ok {
		return p
	}
	return NoPriority
}

// SetPriority replaces the priority slot.
func (t *Task) SetPriority(p Priority) {
	t.putToken(KindPriority.New(p))
}

// Raise moves the priority n steps toward A and writes it back onto the
// task. See Priority.Raise for the empty-priority rule.
func (t *Task) Raise(n int) Priority {
	p := t.Priority().Raise(n)
	t.SetPriority(p)
	return p
}

// Lower moves the priority n steps toward Z, clearing it past Z, and writes
// it back onto the task.
func (t *Task) Lower(n int) Priority {
	p := t.Priority().Lower(n)
	t.SetPriority(p)
	return p
}

// CompletionDate returns the slot-1 date, zero when absent.
func (t *Task) CompletionDate() Date { return t.slotDate(SlotCompletionDate) }

// CreatedDate returns the slot-3 date, zero when absent.
func (t *Task) CreatedDate() Date { return t.slotDate(SlotCreatedDate) }

// SetCompletionDate replaces the completion date without touching the
// completion marker; the zero date clears the slot.
func (t *Task) SetCompletionDate(d Date) {
	t.setDate(KindCompletionDate, d)
}

// SetCreatedDate replaces the creation date; the zero date clears the slot.
func (t *Task) SetCreatedDate(d Date) {
	t.setDate(KindCreatedDate, d)
}

// DueDate returns the body due date, zero when absent.
func (t *Task) DueDate() Date { return t.bodyDate(KindDueDate) }

// SetDueDate replaces the due date; the zero date clears it.
func (t *Task) SetDueDate(d Date) {
	t.setDate(KindDueDate, d)
}

// ThresholdDate returns the body threshold date, zero when absent.
func (t *Task) ThresholdDate() Date { return t.bodyDate(KindThresholdDate) }

// SetThresholdDate replaces the threshold date; the zero date clears it.
func (t *Task) SetThresholdDate(d Date) {
	t.setDate(KindThresholdDate, d)
}

func (t *Task) setDate(k *TokenKind, d Date) {
	if d.IsZero() {
		t.clearKind(k)
		return
	}
	t.putToken(k.New(d))
}

func (t *Task) slotDate(slot int) Date {
	if d, ok := t.slots[slot].Value.(Date); ok {
		return d
	}
	return Date{}
}

func (t *Task) bodyDate(k *TokenKind) Date {
	for _, tok := range t.body {
		if tok.Kind == k {
			if d, ok := tok.Value.(Date); ok {
				return d
			}
		}
	}
	return Date{}
}

// Overdue reports whether the task's due date lies before today. A task
// with no due date is never overdue.
func (t *Task) Overdue() bool { return t.overdueOn(Today()) }

func (t *Task) overdueOn(today Date) bool {
	d := t.DueDate()
	return !d.IsZero() && d.Before(today)
}

// OnThreshold reports whether the task is deferred: its threshold date lies
// after today. A task with no threshold is not deferred.
func (t *Task) OnThreshold() bool { return t.onThresholdOn(Today()) }

func (t *Task) onThresholdOn(today Date) bool {
	d := t.ThresholdDate()
	return !d.IsZero() && d.After(today)
}

// Contexts returns the task's distinct contexts, sorted.
func (t *Task) Contexts() []string { return t.bodyValues(KindContext) }

// Projects returns the task's distinct projects, sorted.
func (t *Task) Projects() []string { return t.bodyValues(KindProject) }

func (t *Task) bodyValues(k *TokenKind) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range t.body {
		if tok.Kind != k {
			continue
		}
		v := tok.Value.String()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Tokens returns the task's tokens in render order: occupied fixed slots
// first (the priority token is always present, even when empty), then the
// body. The completion marker is not a token; read Completed instead.
func (t *Task) Tokens() []Token {
	out := make([]Token, 0, 3+len(t.body))
	for slot := SlotCompletionDate; slot <= SlotCreatedDate; slot++ {
		if !t.slots[slot].IsZero() {
			out = append(out, t.slots[slot])
		}
	}
	return append(out, t.body...)
}

// Body returns the body tokens in line order.
func (t *Task) Body() []Token {
	out := make([]Token, len(t.body))
	copy(out, t.body)
	return out
}

// Add inserts tokens into the task. It accepts a Token, a string, or a
// slice of tokens, strings or either ([]Token, []string, []any), applied
// element-wise in order; anything else is rejected. Strings are split on
// spaces and each word classified exactly like during parsing, so "(A)"
// lands in the priority slot and "due:..." replaces the due date, while a
// bare date stays plain text since two date kinds share its grammar.
// Singleton kinds replace their existing token in place; repeatable kinds
// append to the body.
func (t *Task) Add(item any) error {
	switch v := item.(type) {
	case Token:
		return t.addToken(v)
	case string:
		return t.addString(v)
	case []Token:
		for _, tok := range v {
			if err := t.addToken(tok); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, s := range v {
			if err := t.addString(s); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, x := range v {
			if err := t.Add(x); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot add %T to a task", ErrArgument, item)
	}
}

func (t *Task) addString(s string) error {
	for _, word := range strings.Split(s, " ") {
		if word == "" {
			continue
		}
		tok, err := t.reg.classify(word, true)
		if err != nil {
			return err
		}
		t.putToken(tok)
	}
	return nil
}

func (t *Task) addToken(tok Token) error {
	if tok.IsZero() || tok.Value == nil {
		return fmt.Errorf("%w: cannot add an empty token", ErrArgument)
	}
	// A caller-built token must hold a value its own grammar accepts, or
	// the rendered word would come back as something else on reparse.
	word := tok.Kind.renderText(tok.Value)
	if _, ok := tok.Kind.Match(word); !ok {
		return fmt.Errorf("%w: %q is not a %s word", ErrValue, word, tok.Kind.Name)
	}
	t.putToken(tok)
	return nil
}

// putToken installs a token, replacing any previous instance of a singleton
// kind in place, and keeps the index exact.
func (t *Task) putToken(tok Token) {
	k := tok.Kind
	if !k.Singleton {
		t.body = append(t.body, tok)
		t.indexAdd(tok)
		return
	}
	t.indexClearKind(k)
	if k.Slot != 0 {
		t.slots[k.Slot] = tok
	} else {
		replaced := false
		for i := range t.body {
			if t.body[i].Kind == k {
				t.body[i] = tok
				replaced = true
				break
			}
		}
		if !replaced {
			t.body = append(t.body, tok)
		}
	}
	t.indexAdd(tok)
}

// Remove deletes tokens from the task. It accepts everything Add does plus
// a *TokenKind, which clears a singleton kind whatever its current value;
// removing a repeatable kind by reference is rejected. Instances of
// singleton kinds likewise remove by kind alone. For repeatable kinds the
// first body token matching both kind and rendered value is removed.
// Removing something the task does not hold is a silent no-op.
func (t *Task) Remove(item any) error {
	switch v := item.(type) {
	case *TokenKind:
		return t.removeKind(v)
	case Token:
		return t.removeToken(v)
	case string:
		return t.removeString(v)
	case []Token:
		for _, tok := range v {
			if err := t.removeToken(tok); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, s := range v {
			if err := t.removeString(s); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, x := range v {
			if err := t.Remove(x); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot remove %T from a task", ErrArgument, item)
	}
}

func (t *Task) removeString(s string) error {
	for _, word := range strings.Split(s, " ") {
		if word == "" {
			continue
		}
		tok, err := t.reg.classify(word, true)
		if err != nil {
			return err
		}
		if err := t.removeToken(tok); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task) removeToken(tok Token) error {
	if tok.IsZero() {
		return fmt.Errorf("%w: cannot remove an empty token", ErrArgument)
	}
	if tok.Kind.Singleton {
		t.clearKind(tok.Kind)
		return nil
	}
	for i := range t.body {
		if t.body[i].Kind == tok.Kind && t.body[i].Equal(tok) {
			t.indexRemove(t.body[i])
			t.body = append(t.body[:i], t.body[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *Task) removeKind(k *TokenKind) error {
	if !k.Singleton {
		return fmt.Errorf("%w: %s is not a singleton kind, remove an instance instead", ErrArgument, k.Name)
	}
	t.clearKind(k)
	return nil
}

// clearKind empties a singleton kind's slot or body position. The priority
// slot is reinstated empty so it stays occupied.
func (t *Task) clearKind(k *TokenKind) {
	t.indexClearKind(k)
	if k.Slot != 0 {
		t.slots[k.Slot] = Token{}
		if k == KindPriority {
			t.slots[k.Slot] = k.New(NoPriority)
		}
		return
	}
	for i := range t.body {
		if t.body[i].Kind == k {
			t.body = append(t.body[:i], t.body[i+1:]...)
			return
		}
	}
}

// Has reports whether the task holds an equal token, or, for a string,
// whether the rendered line contains it as a substring.
func (t *Task) Has(item any) bool {
	switch v := item.(type) {
	case Token:
		for slot := SlotCompletionDate; slot <= SlotCreatedDate; slot++ {
			if t.slots[slot].Equal(v) && !t.slots[slot].IsZero() {
				return true
			}
		}
		for _, tok := range t.body {
			if tok.Equal(v) {
				return true
			}
		}
		return false
	case string:
		return strings.Contains(t.String(), v)
	default:
		return false
	}
}

// Attr exposes the task's derived properties by name for query engines:
// is_completed, priority, completion_date, created_date, due_date,
// threshold_date, contexts, projects, is_overdue, is_on_threshold.
func (t *Task) Attr(name string) (any, bool) {
	switch name {
	case "is_completed":
		return t.Completed(), true
	case "priority":
		return t.Priority(), true
	case "completion_date":
		return t.CompletionDate(), true
	case "created_date":
		return t.CreatedDate(), true
	case "due_date":
		return t.DueDate(), true
	case "threshold_date":
		return t.ThresholdDate(), true
	case "contexts":
		return t.Contexts(), true
	case "projects":
		return t.Projects(), true
	case "is_overdue":
		return t.Overdue(), true
	case "is_on_threshold":
		return t.OnThreshold(), true
	default:
		return nil, false
	}
}

// String renders the task back to its todo.txt line: marker, occupied
// slots, body, joined by single spaces. The empty priority renders as
// nothing and leaves no gap.
func (t *Task) String() string {
	parts := make([]string, 0, 4+len(t.body))
	if t.completed {
		parts = append(parts, completionMarker)
	}
	for _, tok := range t.Tokens() {
		if s := tok.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// HTML renders the task's tokens through their HTML templates, joined by
// single spaces. The completion marker renders as itself; the surrounding
// element and its class list are the render package's business.
func (t *Task) HTML() string {
	parts := make([]string, 0, 4+len(t.body))
	if t.completed {
		parts = append(parts, completionMarker)
	}
	for _, tok := range t.Tokens() {
		if h := tok.HTML(); h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " ")
}

// Equal reports whether both tasks render to the same line.
func (t *Task) Equal(o *Task) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.String() == o.String()
}

// Less orders tasks for presentation, most significant criterion first:
// incomplete before completed, more urgent priority first, earlier
// threshold first, earlier due date first, later completion date first,
// later creation date first, and finally the rendered line. Absent dates
// sort after present ones.
func (t *Task) Less(o *Task) bool {
	if t.completed != o.completed {
		return !t.completed
	}
	if c := t.Priority().Compare(o.Priority()); c != 0 {
		return c < 0
	}
	if c := compareAscAbsentLast(t.ThresholdDate(), o.ThresholdDate()); c != 0 {
		return c < 0
	}
	if c := compareAscAbsentLast(t.DueDate(), o.DueDate()); c != 0 {
		return c < 0
	}
	if c := compareDescAbsentLast(t.CompletionDate(), o.CompletionDate()); c != 0 {
		return c < 0
	}
	if c := compareDescAbsentLast(t.CreatedDate(), o.CreatedDate()); c != 0 {
		return c < 0
	}
	return t.String() < o.String()
}

func compareAscAbsentLast(a, b Date) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	default:
		return a.Compare(b)
	}
}

func compareDescAbsentLast(a, b Date) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	default:
		return -a.Compare(b)
	}
}

// index plumbing; no-ops for a task that has left its list.

func (t *Task) indexAdd(tok Token) {
	if t.list != nil {
		t.list.indexAdd(t, tok)
	}
}

func (t *Task) indexRemove(tok Token) {
	if t.list != nil {
		t.list.indexRemove(t, tok)
	}
}

func (t *Task) indexClearKind(k *TokenKind) {
	if t.list != nil {
		t.list.indexRemoveKind(t, k)
	}
}
