package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/abuse-forge/internal/cli"
	"github.com/Veraticus/abuse-forge/internal/model"
)

const defaultWidth = 120

type column struct {
	title string
	width int
	// fixed columns keep their width on narrow terminals.
	fixed bool
}

var tableColumns = []column{
	{title: "Transaction", width: 34, fixed: true},
	{title: "Timestamp", width: 19},
	{title: "Archetype", width: 25, fixed: true},
	{title: "Tier", width: 6, fixed: true},
	{title: "Amount", width: 9, fixed: true},
	{title: "Country", width: 7},
	{title: "Payment", width: 11},
	{title: "Conf", width: 5},
}

// columns drops the optional columns that do not fit in width.
func columns(width int) []table.Column {
	total := 0
	for _, c := range tableColumns {
		total += c.width + 2
	}

	out := make([]table.Column, 0, len(tableColumns))
	for _, c := range tableColumns {
		w := c.width
		if total > width && !c.fixed {
			total -= c.width + 2
			w = 0
		}
		out = append(out, table.Column{Title: c.title, Width: w})
	}
	return out
}

func row(rec *model.TransactionRecord) table.Row {
	return table.Row{
		rec.TransactionID,
		rec.Timestamp.Format(model.DateTimeLayout),
		string(rec.AbuseType),
		string(rec.DifficultyTier),
		fmt.Sprintf("%.2f", rec.OrderAmount),
		rec.ShippingCountry,
		string(rec.PaymentMethod),
		fmt.Sprintf("%.2f", rec.AbuseConfidence),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cli.SubtleColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1a1a1a")).
		Background(cli.InfoColor).
		Bold(false)
	return s
}

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("Dataset Browser") + " " + cli.SubtleStyle.Render(m.source))
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.showDetail {
		if rec, ok := m.Selected(); ok {
			b.WriteString(renderDetail(&rec))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// renderDetail shows the behavioral fields of one record in two columns.
func renderDetail(rec *model.TransactionRecord) string {
	const keyWidth = 22

	left := []string{
		cli.FormatKeyValue("user_id", keyWidth, rec.UserID),
		cli.FormatKeyValue("account_age_days", keyWidth, rec.AccountAgeDays),
		cli.FormatKeyValue("days_since_first_buy", keyWidth, rec.DaysSinceAccountFirstPurchase),
		cli.FormatKeyValue("orders 24h / 7d", keyWidth, fmt.Sprintf("%d / %d", rec.OrdersLast24h, rec.OrdersLast7d)),
		cli.FormatKeyValue("failed_logins_24h", keyWidth, rec.FailedLoginAttempts24h),
		cli.FormatKeyValue("password_resets_30d", keyWidth, rec.PasswordResetCount30d),
		cli.FormatKeyValue("new_device", keyWidth, rec.NewDevice),
		cli.FormatKeyValue("vpn_proxy", keyWidth, rec.VPNProxyDetected),
	}
	right := []string{
		cli.FormatKeyValue("email_domain", keyWidth, rec.EmailDomain),
		cli.FormatKeyValue("ip_country", keyWidth, rec.IPCountry),
		cli.FormatKeyValue("billing / shipping", keyWidth, rec.BillingCountry+" / "+rec.ShippingCountry),
		cli.FormatKeyValue("cvv / avs", keyWidth, fmt.Sprintf("%s / %s", rec.CVVCheckResult, rec.AVSResult)),
		cli.FormatKeyValue("processor", keyWidth, rec.PaymentProcessorResponse),
		cli.FormatKeyValue("card_bin / country", keyWidth, rec.CardBIN+" / "+rec.CardCountry),
		cli.FormatKeyValue("is_abuse", keyWidth, rec.IsAbuse),
		cli.FormatKeyValue("confidence", keyWidth, fmt.Sprintf("%.2f", rec.AbuseConfidence)),
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(left, "\n")),
		strings.Join(right, "\n"),
	)
	return cli.RenderBox(rec.TransactionID, body)
}
