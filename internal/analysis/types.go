// Package analysis inspects composed datasets and reports on their consistency.
package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// IssueSeverity represents how much an issue undermines the dataset.
type IssueSeverity string

const (
	// SeverityCritical marks label errors that make records unusable for training.
	SeverityCritical IssueSeverity = "critical"
	// SeverityHigh marks broken cross-field invariants.
	SeverityHigh IssueSeverity = "high"
	// SeverityMedium marks missing values.
	SeverityMedium IssueSeverity = "medium"
	// SeverityLow marks distribution oddities worth a look.
	SeverityLow IssueSeverity = "low"
)

// IssueType categorizes what a check found.
type IssueType string

// Issue types reported by Validate.
const (
	IssueLabelMismatch     IssueType = "label_mismatch"
	IssueBillingMismatch   IssueType = "billing_shipping_mismatch"
	IssueTierMismatch      IssueType = "tier_mismatch"
	IssueInvalidEnum       IssueType = "invalid_enum"
	IssueOutOfRange        IssueType = "out_of_range"
	IssueMissingValue      IssueType = "missing_value"
	IssueDuplicateID       IssueType = "duplicate_transaction_id"
	IssueTierNotMonotonic  IssueType = "tier_not_monotonic"
	IssueVelocityMismatch  IssueType = "velocity_mismatch"
	IssueFirstPurchaseTime IssueType = "first_purchase_after_creation"
)

// maxExampleIDs bounds how many transaction IDs an issue carries.
const maxExampleIDs = 5

// Issue is one failed check, aggregated over every record it affects.
type Issue struct {
	Type           IssueType     `json:"type"`
	Severity       IssueSeverity `json:"severity"`
	Field          string        `json:"field,omitempty"`
	Description    string        `json:"description"`
	TransactionIDs []string      `json:"transaction_ids"`
	AffectedCount  int           `json:"affected_count"`
}

// Summary holds descriptive statistics of one numeric field.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ClassStat describes one archetype within the dataset.
type ClassStat struct {
	AbuseType   model.AbuseType `json:"abuse_type"`
	Count       int             `json:"count"`
	Proportion  float64         `json:"proportion"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderAmount Summary         `json:"order_amount"`
	AccountAge  Summary         `json:"account_age_days"`
}

// TierStat is the confidence observed for one archetype at one tier.
type TierStat struct {
	AbuseType      model.AbuseType      `json:"abuse_type"`
	Tier           model.DifficultyTier `json:"difficulty_tier"`
	Count          int                  `json:"count"`
	MeanConfidence float64              `json:"mean_confidence"`
}

// Report contains the complete results of a dataset validation.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	// MissingValues counts empty required text fields per column.
	MissingValues map[string]int `json:"missing_values"`
	// Samples holds the first record seen for each archetype.
	Samples    map[model.AbuseType]model.TransactionRecord `json:"samples"`
	Classes    []ClassStat                                 `json:"classes"`
	Tiers      []TierStat                                  `json:"tiers"`
	Issues     []Issue                                     `json:"issues"`
	Total      int                                         `json:"total"`
	AbuseCount int                                         `json:"abuse_count"`
	// CleanRecords counts records that passed every per-record check.
	CleanRecords int `json:"clean_records"`
}

// Valid reports whether no check failed.
func (r *Report) Valid() bool {
	return len(r.Issues) == 0
}

// AbuseRate is the share of records labeled as abuse.
func (r *Report) AbuseRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.AbuseCount) / float64(r.Total)
}

// Score is the share of records that passed every per-record check. An empty dataset
// scores 1.
func (r *Report) Score() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.CleanRecords) / float64(r.Total)
}

// Class returns the stats of one archetype, or a zero ClassStat when it is absent.
func (r *Report) Class(a model.AbuseType) ClassStat {
	for _, c := range r.Classes {
		if c.AbuseType == a {
			return c
		}
	}
	return ClassStat{AbuseType: a}
}

// Issue returns the issue of the given type, if one was reported.
func (r *Report) Issue(t IssueType) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Type == t {
			return issue, true
		}
	}
	return Issue{}, false
}

// TierConfidence returns the mean confidence of an archetype at a tier and whether any
// record of that combination exists.
func (r *Report) TierConfidence(a model.AbuseType, tier model.DifficultyTier) (float64, bool) {
	for _, t := range r.Tiers {
		if t.AbuseType == a && t.Tier == tier {
			return t.MeanConfidence, true
		}
	}
	return 0, false
}
