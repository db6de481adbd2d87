// Package views holds the bubbletea views of the terminal UI.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/todotxt"
	"github.com/dori/todotxt/internal/app"
	"github.com/dori/todotxt/internal/ui/theme"
)

// ListMode represents the current input mode of the list view.
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeSearch
	ListModeQuery
	ListModePriority
	ListModeConfirmDelete
)

// ListViewMode selects which tasks are shown.
type ListViewMode int

const (
	ViewModeAll     ListViewMode = iota // everything
	ViewModeActive                      // neither completed nor deferred
	ViewModeFuture                      // deferred behind a threshold date
	ViewModeOverdue                     // past their due date
	ViewModeDone                        // completed
)

func (m ListViewMode) String() string {
	switch m {
	case ViewModeAll:
		return "All"
	case ViewModeActive:
		return "Active"
	case ViewModeFuture:
		return "Future"
	case ViewModeOverdue:
		return "Overdue"
	case ViewModeDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// StatusNote is emitted for the root status line.
type StatusNote struct {
	Text string
}

// ErrNote carries an operation failure to the root model.
type ErrNote struct {
	Err error
}

// ListView displays the task list.
type ListView struct {
	app    *app.App
	width  int
	height int

	entries      []*app.Entry // visible entries after filters
	cursor       int
	scrollOffset int // first visible entry index

	mode     ListMode
	input    textinput.Model
	editing  *app.Entry // task being edited
	deleting *app.Entry // task pending delete confirmation

	searchFilter string // substring filter
	queryFilter  string // structured query filter
	viewMode     ListViewMode
}

// NewListView creates a new list view.
func NewListView(application *app.App) ListView {
	ti := textinput.New()
	ti.Placeholder = "New task..."
	ti.CharLimit = 256

	v := ListView{
		app:   application,
		input: ti,
	}
	v.refresh()
	return v
}

// Init initializes the list view.
func (v ListView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing text input.
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// ViewMode returns the active task filter mode.
func (v ListView) ViewMode() ListViewMode {
	return v.viewMode
}

// Count returns how many tasks pass the active filters.
func (v ListView) Count() int {
	return len(v.entries)
}

// SetSize updates the view dimensions.
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	v.ensureCursorVisible()
	return v
}

// refresh rebuilds the visible entries from the app state and the active
// filters. A query that no longer evaluates clears itself.
func (v *ListView) refresh() {
	base := v.app.Entries()

	if v.queryFilter != "" {
		matched, err := v.app.Query(v.queryFilter)
		if err != nil {
			v.queryFilter = ""
		} else {
			base = matched
		}
	}

	var out []*app.Entry
	for _, e := range base {
		if !v.matchesViewMode(e.Task) {
			continue
		}
		if v.searchFilter != "" && !e.Task.Has(v.searchFilter) {
			continue
		}
		out = append(out, e)
	}
	v.entries = out

	if v.cursor >= len(v.entries) {
		v.cursor = max(0, len(v.entries)-1)
	}
	v.ensureCursorVisible()
}

func (v *ListView) matchesViewMode(t *todotxt.Task) bool {
	switch v.viewMode {
	case ViewModeActive:
		return !t.Completed() && !t.OnThreshold()
	case ViewModeFuture:
		return t.OnThreshold()
	case ViewModeOverdue:
		return t.Overdue()
	case ViewModeDone:
		return t.Completed()
	default:
		return true
	}
}

func (v ListView) current() *app.Entry {
	if len(v.entries) == 0 || v.cursor >= len(v.entries) {
		return nil
	}
	return v.entries[v.cursor]
}

// visibleTaskCount returns how many tasks fit in the viewport.
func (v ListView) visibleTaskCount() int {
	// Reserve lines for the scroll indicator and the input prompt.
	available := v.height - 4
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep the cursor in view.
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
	maxOffset := len(v.entries) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
}

// Update handles messages for the list view.
func (v ListView) Update(msg tea.Msg) (ListView, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch v.mode {
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeEdit:
			return v.handleEditMode(msg)
		case ListModeSearch:
			return v.handleSearchMode(msg)
		case ListModeQuery:
			return v.handleQueryMode(msg)
		case ListModePriority:
			return v.handlePriorityMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}
	return v, nil
}

// handleNormalMode handles keypresses in normal mode.
func (v ListView) handleNormalMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	// Navigation
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.ensureCursorVisible()
		}
	case "down", "j":
		if v.cursor < len(v.entries)-1 {
			v.cursor++
			v.ensureCursorVisible()
		}
	case "g":
		v.cursor = 0
		v.ensureCursorVisible()
	case "G":
		v.cursor = max(0, len(v.entries)-1)
		v.ensureCursorVisible()
	case "pgup", "ctrl+u":
		if len(v.entries) > 0 {
			pageSize := max(1, v.visibleTaskCount()/2)
			v.cursor = max(0, v.cursor-pageSize)
			v.ensureCursorVisible()
		}
	case "pgdown", "ctrl+d":
		if len(v.entries) > 0 {
			pageSize := max(1, v.visibleTaskCount()/2)
			v.cursor = min(len(v.entries)-1, v.cursor+pageSize)
			v.ensureCursorVisible()
		}

	// Actions
	case "a":
		v.mode = ListModeAdd
		v.input.SetValue("")
		v.input.Placeholder = "New task..."
		v.input.Focus()
		return v, textinput.Blink

	case "enter":
		if e := v.current(); e != nil {
			v.mode = ListModeEdit
			v.editing = e
			v.input.SetValue(e.Task.String())
			v.input.Placeholder = ""
			v.input.Focus()
			return v, textinput.Blink
		}

	case "tab", "x":
		if e := v.current(); e != nil {
			done := !e.Task.Completed()
			if err := v.app.SetCompleted(e, done); err != nil {
				return v, report(err)
			}
			line := e.Task.String()
			v.refresh()
			if done {
				return v, note("Done: " + line)
			}
			return v, note("Reopened: " + line)
		}

	case "d":
		if e := v.current(); e != nil {
			v.deleting = e
			v.mode = ListModeConfirmDelete
		}

	case "p":
		if v.current() != nil {
			v.mode = ListModePriority
			v.input.SetValue("")
			v.input.Placeholder = "Priority letter, empty clears..."
			v.input.Focus()
			return v, textinput.Blink
		}

	case "+", "=":
		if e := v.current(); e != nil {
			p, err := v.app.Raise(e, 1)
			if err != nil {
				return v, report(err)
			}
			return v, note("Priority: " + priorityLabel(p))
		}

	case "-":
		if e := v.current(); e != nil {
			p, err := v.app.Lower(e, 1)
			if err != nil {
				return v, report(err)
			}
			return v, note("Priority: " + priorityLabel(p))
		}

	case "S":
		if err := v.app.Sort(); err != nil {
			return v, report(err)
		}
		v.refresh()
		return v, note("Sorted")

	case "/":
		v.mode = ListModeSearch
		v.input.SetValue(v.searchFilter)
		v.input.Placeholder = "Search tasks..."
		v.input.Focus()
		return v, textinput.Blink

	case ":":
		v.mode = ListModeQuery
		v.input.SetValue(v.queryFilter)
		v.input.Placeholder = "e.g. priority>=B contexts~work is_completed=false"
		v.input.Focus()
		return v, textinput.Blink

	case "H":
		v.viewMode = (v.viewMode + 1) % (ViewModeDone + 1)
		v.refresh()
		return v, note("View: " + v.viewMode.String())

	case "r":
		v.refresh()

	case "esc":
		if v.searchFilter != "" || v.queryFilter != "" {
			v.searchFilter = ""
			v.queryFilter = ""
			v.refresh()
			return v, note("Filters cleared")
		}
	}

	return v, nil
}

// handleAddMode handles keypresses in add mode.
func (v ListView) handleAddMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(v.input.Value())
		if line != "" {
			v.mode = ListModeNormal
			v.input.Blur()
			e, err := v.app.Add(line)
			if err != nil {
				return v, report(err)
			}
			v.refresh()
			v.moveCursorTo(e)
			return v, note("Added: " + e.Task.String())
		}
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleEditMode handles keypresses in edit mode.
func (v ListView) handleEditMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(v.input.Value())
		if line != "" && v.editing != nil {
			v.mode = ListModeNormal
			v.input.Blur()
			err := v.app.Edit(v.editing, line)
			v.editing = nil
			if err != nil {
				return v, report(err)
			}
			v.refresh()
			return v, note("Updated")
		}
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.editing = nil
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleSearchMode handles keypresses in search mode. The filter applies
// live as the user types.
func (v ListView) handleSearchMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.searchFilter = strings.TrimSpace(v.input.Value())
		v.mode = ListModeNormal
		v.input.Blur()
		v.refresh()
		return v, nil

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.input.SetValue(v.searchFilter)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.searchFilter = v.input.Value()
	v.refresh()
	return v, cmd
}

// handleQueryMode handles keypresses in query mode. The expression applies
// on enter; a bad expression reports the error and clears the filter.
func (v ListView) handleQueryMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		expr := strings.TrimSpace(v.input.Value())
		v.mode = ListModeNormal
		v.input.Blur()
		if expr == "" {
			v.queryFilter = ""
			v.refresh()
			return v, nil
		}
		if _, err := v.app.Query(expr); err != nil {
			v.queryFilter = ""
			v.refresh()
			return v, report(err)
		}
		v.queryFilter = expr
		v.refresh()
		return v, note(fmt.Sprintf("Query: %s (%d matched)", expr, len(v.entries)))

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handlePriorityMode reads a letter and assigns it to the current task.
func (v ListView) handlePriorityMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		letter := strings.ToUpper(strings.TrimSpace(v.input.Value()))
		v.mode = ListModeNormal
		v.input.Blur()
		if e := v.current(); e != nil {
			if err := v.app.SetPriority(e, letter); err != nil {
				return v, report(err)
			}
			return v, note("Priority: " + priorityLabel(e.Task.Priority()))
		}
		return v, nil
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleDeleteConfirm asks before deleting.
func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		e := v.deleting
		v.deleting = nil
		v.mode = ListModeNormal
		if e != nil {
			line := e.Task.String()
			if err := v.app.Delete(e); err != nil {
				return v, report(err)
			}
			v.refresh()
			return v, note("Deleted: " + line)
		}
	case "n", "esc":
		v.deleting = nil
		v.mode = ListModeNormal
	}
	return v, nil
}

func (v *ListView) moveCursorTo(e *app.Entry) {
	for i, other := range v.entries {
		if other == e {
			v.cursor = i
			v.ensureCursorVisible()
			return
		}
	}
}

// View renders the list.
func (v ListView) View() string {
	styles := theme.Current.Styles
	var b strings.Builder

	if len(v.entries) == 0 {
		switch {
		case v.searchFilter != "" || v.queryFilter != "":
			b.WriteString(styles.Placeholder.Render("No tasks match the filter. Press esc to clear it."))
		case v.viewMode != ViewModeAll:
			b.WriteString(styles.Placeholder.Render(fmt.Sprintf("No %s tasks.", strings.ToLower(v.viewMode.String()))))
		default:
			b.WriteString(styles.Placeholder.Render("No tasks. Press a to add one."))
		}
		b.WriteString("\n")
	} else {
		visible := v.visibleTaskCount()
		end := min(len(v.entries), v.scrollOffset+visible)
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderEntry(v.entries[i], i == v.cursor))
			b.WriteString("\n")
		}
		if len(v.entries) > visible {
			b.WriteString(styles.Placeholder.Render(
				fmt.Sprintf("%d-%d of %d", v.scrollOffset+1, end, len(v.entries))))
			b.WriteString("\n")
		}
	}

	switch v.mode {
	case ListModeConfirmDelete:
		if v.deleting != nil {
			b.WriteString("\n")
			b.WriteString(styles.StatusError.Render(
				fmt.Sprintf("Delete %q? (y/n)", v.deleting.Task.String())))
		}
	case ListModeNormal:
	default:
		b.WriteString("\n")
		b.WriteString(v.input.View())
	}

	return b.String()
}

// renderEntry renders one task line with token colors.
func (v ListView) renderEntry(e *app.Entry, selected bool) string {
	styles := theme.Current.Styles

	prefix := "  "
	if selected {
		prefix = styles.TaskSelected.Render("> ")
	}

	t := e.Task
	if t.Completed() {
		return prefix + styles.TaskDone.Render(t.String())
	}
	if t.OnThreshold() {
		return prefix + styles.TaskFuture.Render(t.String())
	}

	overdue := t.Overdue()
	var parts []string
	for _, tok := range t.Tokens() {
		s := tok.String()
		if s == "" {
			continue
		}
		parts = append(parts, renderToken(tok, overdue))
	}
	return prefix + strings.Join(parts, " ")
}

func renderToken(tok todotxt.Token, overdue bool) string {
	styles := theme.Current.Styles
	s := tok.String()

	switch tok.Kind {
	case todotxt.KindPriority:
		if p, ok := tok.Value.(todotxt.Priority); ok {
			return priorityStyle(p).Render(s)
		}
	case todotxt.KindContext:
		return styles.Context.Render(s)
	case todotxt.KindProject:
		return styles.Project.Render(s)
	case todotxt.KindDueDate:
		if overdue {
			return styles.TaskOverdue.Render(s)
		}
		return styles.DueDate.Render(s)
	case todotxt.KindThresholdDate:
		return styles.ThresholdDate.Render(s)
	case todotxt.KindURL:
		return styles.URL.Render(s)
	case todotxt.KindCompletionDate, todotxt.KindCreatedDate:
		return styles.Placeholder.Render(s)
	}
	return styles.TaskNormal.Render(s)
}

// priorityStyle picks a band style: A-E, F-M, everything after.
func priorityStyle(p todotxt.Priority) lipgloss.Style {
	styles := theme.Current.Styles
	switch {
	case p.IsZero():
		return styles.TaskNormal
	case p <= 5:
		return styles.PriorityTop
	case p <= 13:
		return styles.PriorityMid
	default:
		return styles.PriorityLow
	}
}

func priorityLabel(p todotxt.Priority) string {
	if p.IsZero() {
		return "none"
	}
	return p.String()
}

func note(text string) tea.Cmd {
	return func() tea.Msg { return StatusNote{Text: text} }
}

func report(err error) tea.Cmd {
	return func() tea.Msg { return ErrNote{Err: err} }
}
