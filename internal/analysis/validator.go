package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// requiredText lists the text columns every record must fill.
var requiredText = []struct {
	get    func(*model.TransactionRecord) string
	column string
}{
	{column: "transaction_id", get: func(r *model.TransactionRecord) string { return r.TransactionID }},
	{column: "user_id", get: func(r *model.TransactionRecord) string { return r.UserID }},
	{column: "currency", get: func(r *model.TransactionRecord) string { return r.Currency }},
	{column: "email_domain", get: func(r *model.TransactionRecord) string { return r.EmailDomain }},
	{column: "device_id", get: func(r *model.TransactionRecord) string { return r.DeviceID }},
	{column: "ip_address", get: func(r *model.TransactionRecord) string { return r.IPAddress }},
	{column: "ip_country", get: func(r *model.TransactionRecord) string { return r.IPCountry }},
	{column: "user_agent", get: func(r *model.TransactionRecord) string { return r.UserAgent }},
	{column: "card_bin", get: func(r *model.TransactionRecord) string { return r.CardBIN }},
	{column: "card_country", get: func(r *model.TransactionRecord) string { return r.CardCountry }},
	{column: "billing_country", get: func(r *model.TransactionRecord) string { return r.BillingCountry }},
	{column: "shipping_country", get: func(r *model.TransactionRecord) string { return r.ShippingCountry }},
}

// issueTracker accumulates one Issue across records.
type issueTracker struct {
	issue Issue
}

func (t *issueTracker) add(id string) {
	t.issue.AffectedCount++
	if len(t.issue.TransactionIDs) < maxExampleIDs {
		t.issue.TransactionIDs = append(t.issue.TransactionIDs, id)
	}
}

type checker struct {
	trackers map[string]*issueTracker
	order    []string
}

func (c *checker) flag(kind IssueType, severity IssueSeverity, field, description, id string) {
	key := string(kind) + "/" + field
	t, ok := c.trackers[key]
	if !ok {
		t = &issueTracker{issue: Issue{
			Type:        kind,
			Severity:    severity,
			Field:       field,
			Description: description,
		}}
		c.trackers[key] = t
		c.order = append(c.order, key)
	}
	t.add(id)
}

func (c *checker) issues() []Issue {
	out := make([]Issue, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.trackers[key].issue)
	}
	return out
}

type tierKey struct {
	abuse model.AbuseType
	tier  model.DifficultyTier
}

type classAccumulator struct {
	total  decimal.Decimal
	amount accumulator
	age    accumulator
}

// Validate inspects records and reports on them. It never fails and never modifies the
// records; a broken dataset shows up as issues in the report.
func Validate(records []model.TransactionRecord) *Report {
	report := &Report{
		GeneratedAt:   time.Now().UTC(),
		Total:         len(records),
		MissingValues: make(map[string]int),
		Samples:       make(map[model.AbuseType]model.TransactionRecord),
	}
	c := &checker{trackers: make(map[string]*issueTracker)}
	classes := make(map[model.AbuseType]*classAccumulator)
	tiers := make(map[tierKey]*accumulator)
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		r := &records[i]
		clean := true
		flag := func(kind IssueType, severity IssueSeverity, field, description string) {
			clean = false
			c.flag(kind, severity, field, description, r.TransactionID)
		}

		for _, col := range requiredText {
			if col.get(r) == "" {
				report.MissingValues[col.column]++
				flag(IssueMissingValue, SeverityMedium, col.column, col.column+" is empty")
			}
		}
		if r.Timestamp.IsZero() {
			report.MissingValues["timestamp"]++
			flag(IssueMissingValue, SeverityMedium, "timestamp", "timestamp is empty")
		}
		if r.AccountCreatedDate.IsZero() {
			report.MissingValues["account_created_date"]++
			flag(IssueMissingValue, SeverityMedium, "account_created_date", "account_created_date is empty")
		}

		if r.TransactionID != "" {
			if _, dup := seen[r.TransactionID]; dup {
				flag(IssueDuplicateID, SeverityHigh, "transaction_id", "transaction_id appears more than once")
			}
			seen[r.TransactionID] = struct{}{}
		}

		for _, column := range r.InvalidEnums() {
			severity := SeverityHigh
			if column == "abuse_type" || column == "difficulty_tier" {
				severity = SeverityCritical
			}
			flag(IssueInvalidEnum, severity, column, column+" holds an unknown value")
		}
		if r.IsAbuse != r.AbuseType.IsAbuse() {
			flag(IssueLabelMismatch, SeverityCritical, "is_abuse", "is_abuse disagrees with abuse_type")
		}
		if r.AbuseType.Valid() && r.DifficultyTier.Valid() && (r.DifficultyTier == model.TierNA) == r.AbuseType.Tiered() {
			flag(IssueTierMismatch, SeverityCritical, "difficulty_tier", "difficulty_tier is n/a for a fraud class or set for a legitimate one")
		}
		if r.BillingShippingMatch != (r.BillingCountry == r.ShippingCountry) {
			flag(IssueBillingMismatch, SeverityHigh, "billing_shipping_match", "billing_shipping_match disagrees with billing and shipping countries")
		}

		if r.AccountAgeDays < 0 {
			flag(IssueOutOfRange, SeverityHigh, "account_age_days", "account_age_days is negative")
		}
		if !(r.OrderAmount > 0) {
			flag(IssueOutOfRange, SeverityHigh, "order_amount", "order_amount is not positive")
		}
		if r.AbuseConfidence < 0 || r.AbuseConfidence > 1 || math.IsNaN(r.AbuseConfidence) {
			flag(IssueOutOfRange, SeverityHigh, "abuse_confidence", "abuse_confidence is outside [0, 1]")
		}
		if r.OrdersLast24h > r.OrdersLast7d {
			flag(IssueVelocityMismatch, SeverityLow, "orders_last_24h", "orders_last_24h exceeds orders_last_7d")
		}
		if r.DaysSinceAccountFirstPurchase > r.AccountAgeDays {
			flag(IssueFirstPurchaseTime, SeverityLow, "days_since_account_first_purchase", "first purchase predates account creation")
		}

		if clean {
			report.CleanRecords++
		}
		if r.IsAbuse {
			report.AbuseCount++
		}

		if _, ok := report.Samples[r.AbuseType]; !ok {
			report.Samples[r.AbuseType] = *r
		}

		acc, ok := classes[r.AbuseType]
		if !ok {
			acc = &classAccumulator{}
			classes[r.AbuseType] = acc
		}
		acc.total = acc.total.Add(decimal.NewFromFloat(r.OrderAmount))
		acc.amount.add(r.OrderAmount)
		acc.age.add(float64(r.AccountAgeDays))

		key := tierKey{abuse: r.AbuseType, tier: r.DifficultyTier}
		if tiers[key] == nil {
			tiers[key] = &accumulator{}
		}
		tiers[key].add(r.AbuseConfidence)
	}

	report.Classes = classStats(classes, report.Total)
	report.Tiers = tierStats(tiers)
	report.Issues = append(c.issues(), monotonicityIssues(report)...)
	return report
}

func classStats(classes map[model.AbuseType]*classAccumulator, total int) []ClassStat {
	out := make([]ClassStat, 0, len(classes))
	for abuse, acc := range classes {
		out = append(out, ClassStat{
			AbuseType:   abuse,
			Count:       acc.amount.n,
			Proportion:  float64(acc.amount.n) / float64(total),
			TotalAmount: acc.total.Round(2),
			OrderAmount: acc.amount.summary(),
			AccountAge:  acc.age.summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return archetypeRank(out[i].AbuseType) < archetypeRank(out[j].AbuseType)
	})
	return out
}

func tierStats(tiers map[tierKey]*accumulator) []TierStat {
	out := make([]TierStat, 0, len(tiers))
	for key, acc := range tiers {
		out = append(out, TierStat{
			AbuseType:      key.abuse,
			Tier:           key.tier,
			Count:          acc.n,
			MeanConfidence: acc.mean,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AbuseType != out[j].AbuseType {
			return archetypeRank(out[i].AbuseType) < archetypeRank(out[j].AbuseType)
		}
		return tierRank(out[i].Tier) < tierRank(out[j].Tier)
	})
	return out
}

// monotonicityIssues reports fraud archetypes whose mean confidence does not fall from
// easy to medium to hard. Tiers with no records are skipped.
func monotonicityIssues(report *Report) []Issue {
	var issues []Issue
	for _, abuse := range model.Archetypes {
		if !abuse.Tiered() {
			continue
		}
		prev, havePrev := 0.0, false
		var prevTier model.DifficultyTier
		for _, tier := range model.Tiers {
			mean, ok := report.TierConfidence(abuse, tier)
			if !ok {
				continue
			}
			if havePrev && mean >= prev {
				issues = append(issues, Issue{
					Type:     IssueTierNotMonotonic,
					Severity: SeverityLow,
					Field:    "abuse_confidence",
					Description: fmt.Sprintf("%s mean confidence at %s (%.3f) is not below %s (%.3f)",
						abuse, tier, mean, prevTier, prev),
					TransactionIDs: []string{},
				})
			}
			prev, prevTier, havePrev = mean, tier, true
		}
	}
	return issues
}

func archetypeRank(a model.AbuseType) int {
	for i, candidate := range model.Archetypes {
		if candidate == a {
			return i
		}
	}
	return len(model.Archetypes)
}

func tierRank(t model.DifficultyTier) int {
	for i, candidate := range model.Tiers {
		if candidate == t {
			return i
		}
	}
	return len(model.Tiers)
}
