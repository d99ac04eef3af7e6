// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// Palette. Labels get their own colors so the report, tier table and browser agree.
var (
	LegitimateColor = lipgloss.Color("#4ECDC4")
	SuspiciousColor = lipgloss.Color("#FFE66D")
	AbuseColor      = lipgloss.Color("#FF6B6B")

	SuccessColor = LegitimateColor
	WarningColor = SuspiciousColor
	ErrorColor   = AbuseColor
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AbuseColor).MarginBottom(1)
	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor).MarginBottom(1)
	// HeaderStyle renders column headers of plain-text tables.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	keyStyle = lipgloss.NewStyle().Bold(true).Foreground(InfoColor)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ForgeIcon   = "⚒️"
)

// ArchetypeStyle colors an archetype by its label: teal for legitimate traffic,
// yellow for the suspicious-but-legitimate hard negatives, red for abuse.
func ArchetypeStyle(a model.AbuseType) lipgloss.Style {
	switch {
	case a == model.AbuseSuspiciousButLegitimate:
		return lipgloss.NewStyle().Foreground(SuspiciousColor)
	case a.IsAbuse():
		return lipgloss.NewStyle().Bold(true).Foreground(AbuseColor)
	default:
		return lipgloss.NewStyle().Foreground(LegitimateColor)
	}
}

// TierStyle fades harder tiers, which sit closer to legitimate behavior.
func TierStyle(t model.DifficultyTier) lipgloss.Style {
	switch t {
	case model.TierEasy:
		return lipgloss.NewStyle().Foreground(AbuseColor)
	case model.TierMedium:
		return lipgloss.NewStyle().Foreground(SuspiciousColor)
	case model.TierHard:
		return lipgloss.NewStyle().Foreground(InfoColor)
	default:
		return SubtleStyle
	}
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the forge icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ForgeIcon + " " + title)
}

// FormatKeyValue renders an aligned "key: value" line.
func FormatKeyValue(key string, width int, value any) string {
	return keyStyle.Render(fmt.Sprintf("%-*s", width, key+":")) + " " + fmt.Sprint(value)
}

// RenderBox renders content in a bordered box under a title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
