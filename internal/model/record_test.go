package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() TransactionRecord {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	created := ts.Add(-40*24*time.Hour - 3*time.Hour)
	return TransactionRecord{
		TransactionID:                 "TXN_20240501_103000_ABCDEF12",
		Timestamp:                     ts,
		UserID:                        "USER_12345",
		Currency:                      Currency,
		OrderAmount:                   84.5,
		AccountCreatedDate:            created,
		AccountAgeDays:                AccountAge(created, ts),
		EmailDomain:                   "gmail.com",
		PhoneVerified:                 true,
		EmailVerified:                 true,
		ProfileComplete:               false,
		SuccessfulLogins7d:            4,
		DeviceID:                      "DEV_0A1B2C3D",
		IPAddress:                     "12.34.xxx.xxx",
		IPCountry:                     "US",
		UserAgent:                     "Chrome/120.0",
		DeviceType:                    DeviceMobile,
		PaymentMethod:                 PaymentCreditCard,
		CardBIN:                       "424242",
		CardCountry:                   "US",
		BillingCountry:                "US",
		ShippingCountry:               "CA",
		BillingShippingMatch:          false,
		CVVCheckResult:                CVVPass,
		AVSResult:                     AVSFullMatch,
		PaymentProcessorResponse:      ProcessorApproved,
		DaysSinceAccountFirstPurchase: 12,
		TotalOrdersLifetime:           9,
		OrdersLast24h:                 1,
		OrdersLast7d:                  2,
		AvgOrderValue:                 71.25,
		SessionDurationSeconds:        420,
		CartAdditionsSession:          2,
		IsAbuse:                       true,
		AbuseType:                     AbusePaymentFraud,
		AbuseConfidence:               0.72,
		DifficultyTier:                TierMedium,
	}
}

func TestAccountAge(t *testing.T) {
	ts := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, AccountAge(ts, ts))
	assert.Equal(t, 0, AccountAge(ts.Add(-23*time.Hour), ts))
	assert.Equal(t, 3, AccountAge(ts.Add(-3*24*time.Hour-time.Minute), ts))
	assert.Equal(t, 0, AccountAge(ts.Add(time.Hour), ts))
}

func TestTransactionRecord_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(r *TransactionRecord)
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(_ *TransactionRecord) {},
		},
		{
			name:    "is_abuse disagrees with label",
			mutate:  func(r *TransactionRecord) { r.IsAbuse = false },
			wantErr: true,
			errMsg:  "is_abuse=false disagrees",
		},
		{
			name:    "billing shipping flag contradicts countries",
			mutate:  func(r *TransactionRecord) { r.BillingShippingMatch = true },
			wantErr: true,
			errMsg:  "billing_shipping_match",
		},
		{
			name: "legitimate with a tier",
			mutate: func(r *TransactionRecord) {
				r.AbuseType = AbuseLegitimate
				r.IsAbuse = false
			},
			wantErr: true,
			errMsg:  "difficulty_tier=medium invalid",
		},
		{
			name:    "fraud without a tier",
			mutate:  func(r *TransactionRecord) { r.DifficultyTier = TierNA },
			wantErr: true,
			errMsg:  "difficulty_tier=n/a invalid",
		},
		{
			name:    "zero amount",
			mutate:  func(r *TransactionRecord) { r.OrderAmount = 0 },
			wantErr: true,
			errMsg:  "order_amount",
		},
		{
			name:    "confidence above one",
			mutate:  func(r *TransactionRecord) { r.AbuseConfidence = 1.2 },
			wantErr: true,
			errMsg:  "abuse_confidence",
		},
		{
			name:    "negative age",
			mutate:  func(r *TransactionRecord) { r.AccountAgeDays = -1 },
			wantErr: true,
			errMsg:  "account_age_days=-1",
		},
		{
			name:    "velocity inverted",
			mutate:  func(r *TransactionRecord) { r.OrdersLast24h = 5 },
			wantErr: true,
			errMsg:  "orders_last_24h=5",
		},
		{
			name:    "unknown enum",
			mutate:  func(r *TransactionRecord) { r.CVVCheckResult = "maybe" },
			wantErr: true,
			errMsg:  `cvv_check_result="maybe"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTransactionRecord_ValidateJoinsErrors(t *testing.T) {
	r := validRecord()
	r.OrderAmount = -1
	r.DeviceType = "console"

	err := r.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestValuesMatchColumns(t *testing.T) {
	r := validRecord()
	values := r.Values()
	require.Len(t, values, len(Columns))

	byColumn := make(map[string]string, len(Columns))
	for i, c := range Columns {
		byColumn[c] = values[i]
	}
	assert.Equal(t, "2024-05-01 10:30:00", byColumn["timestamp"])
	assert.Equal(t, "84.50", byColumn["order_amount"])
	assert.Equal(t, "False", byColumn["billing_shipping_match"])
	assert.Equal(t, "True", byColumn["is_abuse"])
	assert.Equal(t, "medium", byColumn["difficulty_tier"])

	parsed, err := ParseRecord(byColumn)
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestParseRecord_Errors(t *testing.T) {
	r := validRecord()
	fields := map[string]string{}
	for i, c := range Columns {
		fields[c] = r.Values()[i]
	}

	t.Run("bad enum", func(t *testing.T) {
		bad := copyFields(fields)
		bad["abuse_type"] = "refund_abuse"
		_, err := ParseRecord(bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidEnum)
	})

	t.Run("missing column", func(t *testing.T) {
		bad := copyFields(fields)
		delete(bad, "card_bin")
		_, err := ParseRecord(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing column "card_bin"`)
	})

	t.Run("bad datetime", func(t *testing.T) {
		bad := copyFields(fields)
		bad["timestamp"] = "2024-05-01T10:30:00Z"
		_, err := ParseRecord(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "timestamp"`)
	})
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func TestTransactionRecord_JSON(t *testing.T) {
	r := validRecord()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2024-05-01 10:30:00"`)
	assert.Contains(t, string(data), `"difficulty_tier":"medium"`)

	var back TransactionRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)

	err = json.Unmarshal([]byte(`{"timestamp":"2024-05-01 10:30:00","account_created_date":"2024-03-01 00:00:00","abuse_type":"nope","difficulty_tier":"n/a"}`), &back)
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseEnums(t *testing.T) {
	tier, err := ParseDifficultyTier("n/a")
	require.NoError(t, err)
	assert.Equal(t, TierNA, tier)

	_, err = ParseDifficultyTier("extreme")
	assert.ErrorIs(t, err, ErrInvalidEnum)

	abuse, err := ParseAbuseType("suspicious_but_legitimate")
	require.NoError(t, err)
	assert.False(t, abuse.IsAbuse())
	assert.False(t, abuse.Tiered())
	assert.True(t, AbuseAccountTakeover.IsAbuse())
}

func TestCatalog(t *testing.T) {
	assert.NotContains(t, BrowserUserAgents, "curl/7.68.0")
	assert.NotContains(t, BrowserUserAgents, "Bot/1.0")
	assert.Len(t, AllCountries, len(LowRiskCountries)+len(HighRiskCountries))
	assert.True(t, IsHighRiskCountry("NG"))
	assert.False(t, IsHighRiskCountry("US"))
}
