package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// sampleFields are the columns shown for each sample record.
var sampleFields = []string{
	"transaction_id", "timestamp", "order_amount", "account_age_days", "email_domain",
	"ip_country", "card_country", "billing_country", "shipping_country", "new_device",
	"failed_login_attempts_24h", "orders_last_24h", "abuse_confidence", "difficulty_tier",
}

// CLIFormatter implements ReportFormatter for terminal display.
type CLIFormatter struct {
	styles      *Styles
	showSamples bool
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles:      NewStyles(),
		showSamples: true,
	}
}

// WithSamples toggles the sample record section.
func (f *CLIFormatter) WithSamples(show bool) *CLIFormatter {
	f.showSamples = show
	return f
}

// WithWidth adapts box widths to the terminal.
func (f *CLIFormatter) WithWidth(width int) *CLIFormatter {
	f.styles = f.styles.WithWidth(width)
	return f
}

// FormatSummary renders the whole report.
func (f *CLIFormatter) FormatSummary(report *Report) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(report),
		f.formatScore(report.Score()),
		f.formatClasses(report),
	}
	if len(report.Tiers) > 0 {
		sections = append(sections, f.formatTiers(report.Tiers))
	}
	sections = append(sections,
		f.formatMissingValues(report.MissingValues),
		f.formatIssuesSummary(report.Issues),
	)
	if f.showSamples && len(report.Samples) > 0 {
		sections = append(sections, f.formatSamples(report.Samples))
	}

	return strings.Join(sections, "\n\n")
}

// FormatIssue formats a single issue for detailed display.
func (f *CLIFormatter) FormatIssue(issue Issue) string {
	style := f.styles.ForSeverity(issue.Severity)
	header := style.Render(fmt.Sprintf("%s [%s] %s", severityIcon(issue.Severity), issue.Severity, issue.Type))

	parts := []string{header, f.styles.Normal.Render(issue.Description)}
	if issue.AffectedCount > 0 {
		parts = append(parts, f.styles.Subtle.Render(fmt.Sprintf("Affected records: %d", issue.AffectedCount)))
	}
	if len(issue.TransactionIDs) > 0 {
		examples := strings.Join(issue.TransactionIDs, ", ")
		if issue.AffectedCount > len(issue.TransactionIDs) {
			examples += fmt.Sprintf(" ... and %d more", issue.AffectedCount-len(issue.TransactionIDs))
		}
		parts = append(parts, f.styles.Subtle.Render("Examples: "+examples))
	}
	return strings.Join(parts, "\n")
}

func (f *CLIFormatter) formatHeader(report *Report) string {
	title := f.styles.Title.Render("📊 Dataset Validation Report")
	counts := f.styles.Subtitle.Render(fmt.Sprintf("Records: %d   Abuse rate: %.2f%%",
		report.Total, report.AbuseRate()*100))
	generated := f.styles.Subtle.Render("Generated: " + report.GeneratedAt.Format(time.RFC3339))
	return fmt.Sprintf("%s\n%s\n%s", title, counts, generated)
}

func (f *CLIFormatter) formatScore(score float64) string {
	style := f.styles.ForScore(score)

	barWidth := 30
	filled := min(max(int(float64(barWidth)*score), 0), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	text := fmt.Sprintf("Consistency: %.2f%% of records pass every check", score*100)
	return style.Render(text) + "\n" + style.Render(bar)
}

func (f *CLIFormatter) formatClasses(report *Report) string {
	title := f.styles.Subtitle.Render("Class Distribution:")
	if len(report.Classes) == 0 {
		return title + "\n" + f.styles.Subtle.Render("(empty dataset)")
	}

	header := fmt.Sprintf("%-27s %8s %9s %12s %12s %10s",
		"Abuse Type", "Count", "Share", "Mean Amount", "Std Amount", "Mean Age")
	rows := []string{
		f.styles.Header.Render(header),
		f.styles.Subtle.Render(strings.Repeat("─", len(header))),
	}
	for _, c := range report.Classes {
		name := f.styles.ForArchetype(c.AbuseType).Render(fmt.Sprintf("%-27s", c.AbuseType))
		rows = append(rows, fmt.Sprintf("%s %8d %8.2f%% %12.2f %12.2f %10.1f",
			name, c.Count, c.Proportion*100, c.OrderAmount.Mean, c.OrderAmount.Std, c.AccountAge.Mean))
	}
	return title + "\n" + strings.Join(rows, "\n")
}

func (f *CLIFormatter) formatTiers(tiers []TierStat) string {
	title := f.styles.Subtitle.Render("Confidence by Tier:")

	header := fmt.Sprintf("%-27s %-8s %8s %16s", "Abuse Type", "Tier", "Count", "Mean Confidence")
	rows := []string{
		f.styles.Header.Render(header),
		f.styles.Subtle.Render(strings.Repeat("─", len(header))),
	}
	for _, t := range tiers {
		rows = append(rows, fmt.Sprintf("%-27s %-8s %8d %16.3f", t.AbuseType, t.Tier, t.Count, t.MeanConfidence))
	}
	return title + "\n" + strings.Join(rows, "\n")
}

func (f *CLIFormatter) formatMissingValues(missing map[string]int) string {
	title := f.styles.Subtitle.Render("Missing Values:")
	if len(missing) == 0 {
		return title + "\n" + f.styles.Success.Render("✅ No missing values")
	}

	columns := make([]string, 0, len(missing))
	for column := range missing {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	lines := make([]string, 0, len(columns))
	for _, column := range columns {
		lines = append(lines, f.styles.Warning.Render(fmt.Sprintf("• %s: %d", column, missing[column])))
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatIssuesSummary(issues []Issue) string {
	title := f.styles.Subtitle.Render("Issues Found:")
	if len(issues) == 0 {
		return title + "\n" + f.styles.Success.Render("✅ No issues found!")
	}

	counts := make(map[IssueSeverity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}

	var lines []string
	for _, severity := range []IssueSeverity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
		if counts[severity] > 0 {
			lines = append(lines, f.styles.ForSeverity(severity).Render(
				fmt.Sprintf("%s %s: %d", severityIcon(severity), severity, counts[severity])))
		}
	}

	details := make([]string, 0, len(issues))
	for _, issue := range issues {
		details = append(details, f.FormatIssue(issue))
	}
	return title + "\n" + strings.Join(lines, "\n") + "\n\n" + strings.Join(details, "\n\n")
}

func (f *CLIFormatter) formatSamples(samples map[model.AbuseType]model.TransactionRecord) string {
	title := f.styles.Subtitle.Render("Sample Records:")

	var boxes []string
	for _, abuse := range model.Archetypes {
		rec, ok := samples[abuse]
		if !ok {
			continue
		}
		boxes = append(boxes, f.styles.RenderBox(formatRecord(&rec), string(abuse), f.styles.SampleBox))
	}
	return title + "\n" + strings.Join(boxes, "\n")
}

func formatRecord(rec *model.TransactionRecord) string {
	values := rec.Values()
	byColumn := make(map[string]string, len(values))
	for i, column := range model.Columns {
		byColumn[column] = values[i]
	}

	lines := make([]string, 0, len(sampleFields))
	for _, column := range sampleFields {
		lines = append(lines, fmt.Sprintf("%-26s %s", column, byColumn[column]))
	}
	return strings.Join(lines, "\n")
}

func severityIcon(severity IssueSeverity) string {
	switch severity {
	case SeverityCritical:
		return "🚨"
	case SeverityHigh:
		return "⚠️"
	case SeverityMedium:
		return "📋"
	default:
		return "💡"
	}
}
