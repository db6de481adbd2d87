package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for the UI.
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Priority bands: A block, middle letters, tail of the alphabet
	PriorityTop lipgloss.Color
	PriorityMid lipgloss.Color
	PriorityLow lipgloss.Color

	// Token colors
	Context   lipgloss.Color
	Project   lipgloss.Color
	Due       lipgloss.Color
	Threshold lipgloss.Color
	URL       lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme.
type Styles struct {
	// Base styles
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// Task line styles
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style
	TaskOverdue  lipgloss.Style
	TaskFuture   lipgloss.Style

	// Token styles
	PriorityTop   lipgloss.Style
	PriorityMid   lipgloss.Style
	PriorityLow   lipgloss.Style
	Context       lipgloss.Style
	Project       lipgloss.Style
	DueDate       lipgloss.Style
	ThresholdDate lipgloss.Style
	URL           lipgloss.Style

	// Input styles
	Input       lipgloss.Style
	Placeholder lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	// Status line
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Background(t.Background).
			Foreground(t.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true),

		TaskOverdue: lipgloss.NewStyle().
			Foreground(t.Error),

		TaskFuture: lipgloss.NewStyle().
			Foreground(t.Subtle),

		PriorityTop: lipgloss.NewStyle().
			Foreground(t.PriorityTop).
			Bold(true),

		PriorityMid: lipgloss.NewStyle().
			Foreground(t.PriorityMid).
			Bold(true),

		PriorityLow: lipgloss.NewStyle().
			Foreground(t.PriorityLow).
			Bold(true),

		Context: lipgloss.NewStyle().
			Foreground(t.Context),

		Project: lipgloss.NewStyle().
			Foreground(t.Project),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Due),

		ThresholdDate: lipgloss.NewStyle().
			Foreground(t.Threshold),

		URL: lipgloss.NewStyle().
			Foreground(t.URL).
			Underline(true),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		StatusInfo: lipgloss.NewStyle().
			Foreground(t.Info),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error),
	}
}

// Current holds the current active theme and styles.
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme.
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes.
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name.
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
