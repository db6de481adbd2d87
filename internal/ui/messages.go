package ui

// Messages for inter-component communication

// ErrorMsg contains an error to display.
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display.
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed.
type ThemeChangedMsg struct {
	ThemeName string
}
