package analysis

// ReportFormatter formats validation reports for display.
type ReportFormatter interface {
	// FormatSummary renders the whole report.
	FormatSummary(report *Report) string
	// FormatIssue formats a single issue for detailed display.
	FormatIssue(issue Issue) string
}
