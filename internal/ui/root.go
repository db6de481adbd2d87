package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/todotxt/internal/app"
	"github.com/dori/todotxt/internal/ui/theme"
	"github.com/dori/todotxt/internal/ui/views"
)

// RootModel is the main application model.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	listView    views.ListView
	helpVisible bool

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model.
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:      application,
		keys:     DefaultKeyMap(),
		help:     h,
		listView: views.NewListView(application),
	}
}

// Init initializes the model.
func (m RootModel) Init() tea.Cmd {
	return m.listView.Init()
}

// Update handles messages.
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header and footer
		contentHeight := m.height - 4
		m.listView = m.listView.SetSize(m.width, contentHeight)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.listView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, 'q' only outside input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		if !isInputMode && key.Matches(msg, m.keys.Help) {
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil
		}
		if m.helpVisible && msg.String() == "esc" {
			m.helpVisible = false
			return m, nil
		}

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil

	case views.ErrNote:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.StatusNote:
		m.statusMsg = msg.Text
		return m, nil
	}

	newListView, cmd := m.listView.Update(msg)
	m.listView = newListView
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	// Reserve: 1 line for header + 3 lines for footer
	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.listView.View()
	}

	// Fill the available space so the footer stays pinned
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar.
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("todotxt")

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	viewIndicator := subtle.Render(fmt.Sprintf("[%s]", m.listView.ViewMode()))
	count := subtle.Render(fmt.Sprintf("%d/%d", m.listView.Count(), len(m.app.Entries())))
	themeIndicator := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator, count)
	rightSide := themeIndicator

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the status line and key hints.
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string
	if m.listView.IsInputMode() {
		line1 = key("enter", "confirm") + sep + key("esc", "cancel")
	} else {
		line1 = key("a", "add") + sep +
			key("enter", "edit") + sep +
			key("tab", "done") + sep +
			key("d", "del") + sep +
			key("p", "priority") + sep +
			key("+/-", "bump")
		line2 = key("/", "search") + sep +
			key(":", "query") + sep +
			key("H", "view") + sep +
			key("S", "sort") + sep +
			key("?", "help") + sep +
			key("q", "quit")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay.
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	exprStyle := lipgloss.NewStyle().
		Foreground(t.Info).
		Bold(true).
		Width(26)

	section := func(b *strings.Builder, name string, rows [][]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kv := range rows {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("todotxt Help"))
	b.WriteString("\n\n")

	section(&b, "Navigation", [][]string{
		{"↑/k ↓/j", "Move up/down"},
		{"g / G", "Go to top/bottom"},
		{"PgUp/PgDn", "Half page up/down"},
	})

	section(&b, "Task Actions", [][]string{
		{"a", "Add a task (todo.txt syntax)"},
		{"enter", "Edit the raw task line"},
		{"tab / x", "Toggle done"},
		{"d", "Delete task"},
		{"p", "Set priority letter"},
		{"+ / -", "Raise/lower priority"},
		{"S", "Sort and persist order"},
	})

	section(&b, "Filters", [][]string{
		{"/", "Substring search"},
		{":", "Structured query"},
		{"H", "Cycle view (All/Active/Future/Overdue/Done)"},
		{"esc", "Clear filters"},
	})

	section(&b, "System", [][]string{
		{"ctrl+t", "Cycle theme"},
		{"?", "Toggle this help"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Query Expressions (:)"))
	b.WriteString("\n")
	queries := [][]string{
		{"priority>=B", "Priority B or more urgent"},
		{"is_completed=false", "Pending tasks"},
		{"due_date<2026-01-01", "Due before a date"},
		{"contexts~work", "Tasks with @work"},
		{"projects~home", "Tasks with +home"},
		{"created_date>=2026-06-01", "Created since June"},
	}
	for _, kv := range queries {
		b.WriteString(exprStyle.Render(kv[0]))
		b.WriteString(descStyle.Render(kv[1]))
		b.WriteString("\n")
	}
	b.WriteString(descStyle.Render("Attributes: priority, due_date, threshold_date, created_date,"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("completion_date, is_completed, is_overdue, is_on_threshold,"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("contexts, projects. Clauses are joined with AND."))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}

// cycleTheme advances to the next available theme.
func (m *RootModel) cycleTheme() {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return
		}
	}
}
