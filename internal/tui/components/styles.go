package components

import "github.com/charmbracelet/lipgloss"

// Color scheme
const (
	ColorPrimary   = "6"  // Cyan
	ColorSecondary = "8"  // Gray
	ColorSuccess   = "2"  // Green
	ColorWarning   = "3"  // Yellow
	ColorError     = "1"  // Red
	ColorInfo      = "4"  // Blue
	ColorHighlight = "5"  // Magenta
	ColorText      = "15" // White
	ColorMuted     = "8"  // Dark gray
	ColorAccent    = "11" // Bright yellow
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorSuccess))
)

// Text styles
var (
	KeyHighlightStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorAccent)).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorError))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted))

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color(ColorPrimary))

	UserLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorInfo))

	AssistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorHighlight))

	PendingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color(ColorMuted))
)

// Usage bar styles keyed by warning level
var (
	UsageOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	UsageWarningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorWarning))

	UsageCriticalStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorError))
)

// Container styles
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			Padding(0, 1)

	OverlayStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorPrimary)).
			Padding(1, 2)
)
