package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Loading           *lipgloss.Style
	Message           *lipgloss.Style
	ClosedMessage     *lipgloss.Style
	Key               *lipgloss.Style
	LinkKey           *lipgloss.Style
	SelectedKey       *lipgloss.Style
	Error             *lipgloss.Style
	Info              *lipgloss.Style
	Header            *lipgloss.Style
	Footer            *lipgloss.Style
	Filter            *lipgloss.Style
	FilterPrompt      *lipgloss.Style
	FilterPlaceholder *lipgloss.Style
	Cursor            *lipgloss.Style
}

var defaultStyles = Styles{
	Loading:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true)),
	Message:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("252"))),
	ClosedMessage: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)),
	Key:           ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	LinkKey:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)),
	SelectedKey: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	Error:             ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
	Info:              ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	Header:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)),
	Footer:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	Filter:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	FilterPrompt:      ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)),
	FilterPlaceholder: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")).Blink(true),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

// Plain returns a style set that renders text unchanged.
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Loading:           ptr(plain),
		Message:           ptr(plain),
		ClosedMessage:     ptr(plain),
		Key:               ptr(plain),
		LinkKey:           ptr(plain),
		SelectedKey:       ptr(plain),
		Error:             ptr(plain),
		Info:              ptr(plain),
		Header:            ptr(plain),
		Footer:            ptr(plain),
		Filter:            ptr(plain),
		FilterPrompt:      ptr(plain),
		FilterPlaceholder: ptr(plain),
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
