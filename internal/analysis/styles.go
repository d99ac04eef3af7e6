package analysis

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/abuse-forge/internal/cli"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// Styles holds the lipgloss styles used by the report formatter.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Normal   lipgloss.Style
	Subtle   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style

	SampleBox lipgloss.Style

	severity map[IssueSeverity]lipgloss.Style
}

// NewStyles builds report styles from the shared cli palette.
func NewStyles() *Styles {
	return &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Header:   cli.SubtleStyle.Bold(true),
		Normal:   lipgloss.NewStyle(),
		Subtle:   cli.SubtleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		SampleBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cli.InfoColor).
			Padding(0, 1).
			MarginTop(1),
		severity: map[IssueSeverity]lipgloss.Style{
			SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(cli.ErrorColor).Background(lipgloss.Color("#2D0000")),
			SeverityHigh:     lipgloss.NewStyle().Bold(true).Foreground(cli.WarningColor),
			SeverityMedium:   lipgloss.NewStyle().Foreground(cli.InfoColor),
			SeverityLow:      cli.SubtleStyle,
		},
	}
}

// WithWidth returns a copy whose sample boxes fit a narrow terminal.
func (s *Styles) WithWidth(width int) *Styles {
	out := *s
	if width > 0 && width < 100 {
		out.SampleBox = s.SampleBox.Width(width - 4)
	}
	return &out
}

// ForSeverity returns the style for an issue severity.
func (s *Styles) ForSeverity(severity IssueSeverity) lipgloss.Style {
	if style, ok := s.severity[severity]; ok {
		return style
	}
	return s.Normal
}

// ForScore colors the consistency score. Anything short of fully clean is flagged.
func (s *Styles) ForScore(score float64) lipgloss.Style {
	switch {
	case score >= 0.999:
		return s.Success
	case score >= 0.95:
		return s.Warning
	default:
		return s.Error
	}
}

// ForArchetype colors a class label.
func (s *Styles) ForArchetype(a model.AbuseType) lipgloss.Style {
	return cli.ArchetypeStyle(a)
}

// RenderBox renders content in style, headed by title when one is given.
func (s *Styles) RenderBox(content string, title string, style lipgloss.Style) string {
	if title == "" {
		return style.Render(content)
	}
	return style.Render(cli.InfoStyle.Bold(true).Render(" "+title+" ") + "\n" + content)
}
