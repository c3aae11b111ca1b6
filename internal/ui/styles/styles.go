// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"genelink/internal/cohort"
)

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // IDs, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Description/body text

	// Semantic color names - Border
	BorderDefaultColor        = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderHighlightFocusColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"} // Focused pane border
	PaneTitleColor            = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#C9C9C9"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Consequence type colors
	ConsequenceMissenseColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ConsequenceNonsenseColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ConsequenceFrameshiftColor = lipgloss.AdaptiveColor{Light: "#FF9F43", Dark: "#FF9F43"}
	ConsequenceSpliceColor     = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	ConsequenceSilentColor     = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"}
	ConsequenceIndelColor      = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#F9E2AF"}
	ConsequenceOtherColor      = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}

	// Sample vital status colors
	VitalAliveColor    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	VitalDeceasedColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"}

	// Active filter chip
	FilterChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"})

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)

	// Loading spinner color
	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}
)

// ConsequenceStyle returns the style for rendering a consequence type label.
func ConsequenceStyle(t cohort.ConsequenceType) lipgloss.Style {
	var color lipgloss.AdaptiveColor
	switch t {
	case cohort.Missense:
		color = ConsequenceMissenseColor
	case cohort.Nonsense:
		color = ConsequenceNonsenseColor
	case cohort.Frameshift:
		color = ConsequenceFrameshiftColor
	case cohort.Splice:
		color = ConsequenceSpliceColor
	case cohort.Silent:
		color = ConsequenceSilentColor
	case cohort.InFrameDel, cohort.InFrameIns:
		color = ConsequenceIndelColor
	default:
		color = ConsequenceOtherColor
	}
	return lipgloss.NewStyle().Foreground(color)
}

// ApplyTheme applies custom theme colors from configuration.
// Empty strings are ignored, keeping the default values.
func ApplyTheme(muted, errorColor, success string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		BorderDefaultColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
	}
}
