package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/testutil"
)

func TestValidate_GeneratedDatasetIsClean(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(2000).WithSuspicious(0.05).Records()

	report := Validate(records)

	assert.True(t, report.Valid(), "issues: %+v", report.Issues)
	assert.Equal(t, 2000, report.Total)
	assert.Equal(t, 2000, report.CleanRecords)
	assert.InDelta(t, 1.0, report.Score(), 1e-9)
	assert.Empty(t, report.MissingValues)

	// 0.70 / 0.05 / 0.10 / 0.08 / remainder
	assert.Equal(t, 1400, report.Class(model.AbuseLegitimate).Count)
	assert.Equal(t, 100, report.Class(model.AbuseSuspiciousButLegitimate).Count)
	assert.Equal(t, 200, report.Class(model.AbuseFakeAccount).Count)
	assert.Equal(t, 160, report.Class(model.AbuseAccountTakeover).Count)
	assert.Equal(t, 140, report.Class(model.AbusePaymentFraud).Count)
	assert.Equal(t, 500, report.AbuseCount)
	assert.InDelta(t, 0.25, report.AbuseRate(), 1e-9)
	assert.InDelta(t, 0.70, report.Class(model.AbuseLegitimate).Proportion, 1e-9)

	require.Len(t, report.Samples, len(model.Archetypes))
	for a, sample := range report.Samples {
		assert.Equal(t, a, sample.AbuseType)
	}
}

func TestValidate_ClassOrderAndStats(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(500).Records()
	report := Validate(records)

	var order []model.AbuseType
	for _, c := range report.Classes {
		order = append(order, c.AbuseType)
	}
	assert.Equal(t, []model.AbuseType{
		model.AbuseLegitimate, model.AbuseFakeAccount, model.AbuseAccountTakeover, model.AbusePaymentFraud,
	}, order)

	legit := report.Class(model.AbuseLegitimate)
	assert.GreaterOrEqual(t, legit.OrderAmount.Min, 10.0)
	assert.GreaterOrEqual(t, legit.AccountAge.Min, 30.0)
	assert.LessOrEqual(t, legit.AccountAge.Max, 365.0)
	assert.Positive(t, legit.OrderAmount.Std)
	assert.True(t, legit.TotalAmount.IsPositive())

	sum := 0.0
	for i := range records {
		if records[i].AbuseType == model.AbuseLegitimate {
			sum += records[i].OrderAmount
		}
	}
	assert.InDelta(t, sum, legit.TotalAmount.InexactFloat64(), 0.01)
	assert.InDelta(t, sum/float64(legit.Count), legit.OrderAmount.Mean, 1e-6)

	assert.Equal(t, model.Archetypes[4], report.Class(model.AbusePaymentFraud).AbuseType)
	assert.Zero(t, report.Class(model.AbuseSuspiciousButLegitimate).Count)
}

func TestValidate_TierMonotonicity(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(3000).Records()
	report := Validate(records)

	for _, abuse := range []model.AbuseType{model.AbuseFakeAccount, model.AbuseAccountTakeover, model.AbusePaymentFraud} {
		easy, ok := report.TierConfidence(abuse, model.TierEasy)
		require.True(t, ok)
		medium, ok := report.TierConfidence(abuse, model.TierMedium)
		require.True(t, ok)
		hard, ok := report.TierConfidence(abuse, model.TierHard)
		require.True(t, ok)
		assert.Greater(t, easy, medium, abuse)
		assert.Greater(t, medium, hard, abuse)
	}

	legit, ok := report.TierConfidence(model.AbuseLegitimate, model.TierNA)
	require.True(t, ok)
	assert.Zero(t, legit)
	_, issue := report.Issue(IssueTierNotMonotonic)
	assert.False(t, issue)
}

func TestValidate_ReportsBrokenRecords(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(100).Records()

	tests := []struct {
		mutate   func(r *model.TransactionRecord)
		name     string
		kind     IssueType
		field    string
		severity IssueSeverity
	}{
		{
			name:     "label mismatch",
			mutate:   func(r *model.TransactionRecord) { r.IsAbuse = !r.IsAbuse },
			kind:     IssueLabelMismatch,
			field:    "is_abuse",
			severity: SeverityCritical,
		},
		{
			name: "billing flag mismatch",
			mutate: func(r *model.TransactionRecord) {
				r.BillingShippingMatch = !r.BillingShippingMatch
			},
			kind:     IssueBillingMismatch,
			field:    "billing_shipping_match",
			severity: SeverityHigh,
		},
		{
			name: "tier on legitimate",
			mutate: func(r *model.TransactionRecord) {
				r.AbuseType, r.IsAbuse, r.DifficultyTier = model.AbuseLegitimate, false, model.TierHard
			},
			kind:     IssueTierMismatch,
			field:    "difficulty_tier",
			severity: SeverityCritical,
		},
		{
			name:     "unknown abuse type",
			mutate:   func(r *model.TransactionRecord) { r.AbuseType = "refund_abuse" },
			kind:     IssueInvalidEnum,
			field:    "abuse_type",
			severity: SeverityCritical,
		},
		{
			name:     "unknown device type",
			mutate:   func(r *model.TransactionRecord) { r.DeviceType = "toaster" },
			kind:     IssueInvalidEnum,
			field:    "device_type",
			severity: SeverityHigh,
		},
		{
			name:     "unknown cvv result",
			mutate:   func(r *model.TransactionRecord) { r.CVVCheckResult = "maybe" },
			kind:     IssueInvalidEnum,
			field:    "cvv_check_result",
			severity: SeverityHigh,
		},
		{
			name:     "negative account age",
			mutate:   func(r *model.TransactionRecord) { r.AccountAgeDays = -1; r.DaysSinceAccountFirstPurchase = -1 },
			kind:     IssueOutOfRange,
			field:    "account_age_days",
			severity: SeverityHigh,
		},
		{
			name:     "zero amount",
			mutate:   func(r *model.TransactionRecord) { r.OrderAmount = 0 },
			kind:     IssueOutOfRange,
			field:    "order_amount",
			severity: SeverityHigh,
		},
		{
			name:     "confidence above one",
			mutate:   func(r *model.TransactionRecord) { r.AbuseConfidence = 1.5 },
			kind:     IssueOutOfRange,
			field:    "abuse_confidence",
			severity: SeverityHigh,
		},
		{
			name:     "empty email domain",
			mutate:   func(r *model.TransactionRecord) { r.EmailDomain = "" },
			kind:     IssueMissingValue,
			field:    "email_domain",
			severity: SeverityMedium,
		},
		{
			name:     "velocity",
			mutate:   func(r *model.TransactionRecord) { r.OrdersLast24h = r.OrdersLast7d + 1 },
			kind:     IssueVelocityMismatch,
			field:    "orders_last_24h",
			severity: SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := append([]model.TransactionRecord(nil), records...)
			tt.mutate(&broken[7])
			tt.mutate(&broken[42])

			report := Validate(broken)

			assert.False(t, report.Valid())
			issue, ok := report.Issue(tt.kind)
			require.True(t, ok, "expected %s issue, got %+v", tt.kind, report.Issues)
			assert.Equal(t, tt.field, issue.Field)
			assert.Equal(t, tt.severity, issue.Severity)
			assert.Equal(t, 2, issue.AffectedCount)
			assert.Equal(t, []string{broken[7].TransactionID, broken[42].TransactionID}, issue.TransactionIDs)
			assert.Equal(t, 98, report.CleanRecords)

			// The input is never modified.
			assert.NotEqual(t, records[7], broken[7])
		})
	}
}

func TestValidate_DuplicatesAndMissing(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(50).Records()
	records[10].TransactionID = records[3].TransactionID
	records[20].UserID = ""
	records[21].UserID = ""

	report := Validate(records)

	dup, ok := report.Issue(IssueDuplicateID)
	require.True(t, ok)
	assert.Equal(t, 1, dup.AffectedCount)
	assert.Equal(t, 2, report.MissingValues["user_id"])
	assert.Equal(t, 47, report.CleanRecords)
}

func TestValidate_IssueExamplesAreCapped(t *testing.T) {
	records := testutil.NewDatasetBuilder(t).WithSize(40).Records()
	for i := range records {
		records[i].Currency = ""
	}

	report := Validate(records)
	issue, ok := report.Issue(IssueMissingValue)
	require.True(t, ok)
	assert.Equal(t, 40, issue.AffectedCount)
	assert.Len(t, issue.TransactionIDs, maxExampleIDs)
	assert.Zero(t, report.Score())
}

func TestValidate_Empty(t *testing.T) {
	report := Validate(nil)
	assert.True(t, report.Valid())
	assert.Zero(t, report.Total)
	assert.Zero(t, report.AbuseRate())
	assert.InDelta(t, 1.0, report.Score(), 1e-9)
	assert.Empty(t, report.Classes)
	assert.Empty(t, report.Samples)
}

func TestMonotonicityIssues(t *testing.T) {
	report := &Report{Tiers: []TierStat{
		{AbuseType: model.AbuseFakeAccount, Tier: model.TierEasy, MeanConfidence: 0.9, Count: 1},
		{AbuseType: model.AbuseFakeAccount, Tier: model.TierMedium, MeanConfidence: 0.95, Count: 1},
		{AbuseType: model.AbusePaymentFraud, Tier: model.TierEasy, MeanConfidence: 0.9, Count: 1},
		{AbuseType: model.AbusePaymentFraud, Tier: model.TierHard, MeanConfidence: 0.5, Count: 1},
	}}

	issues := monotonicityIssues(report)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueTierNotMonotonic, issues[0].Type)
	assert.Contains(t, issues[0].Description, "fake_account")
}

func TestAccumulator(t *testing.T) {
	var acc accumulator
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc.add(x)
	}
	s := acc.summary()
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.138, s.Std, 1e-3)
	assert.InDelta(t, 2.0, s.Min, 1e-9)
	assert.InDelta(t, 9.0, s.Max, 1e-9)

	var single accumulator
	single.add(3)
	assert.Zero(t, single.summary().Std)
}
