package pattern

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// TransactionID derives an identifier from the event time plus a random suffix.
func TransactionID(src *random.Source, ts time.Time) string {
	return fmt.Sprintf("TXN_%s_%s", ts.Format("20060102_150405"), src.Hex(8))
}

// UserID returns a random customer identifier.
func UserID(src *random.Source) string {
	return fmt.Sprintf("USER_%d", src.IntRange(10000, 999999))
}

// DeviceID returns a random device fingerprint.
func DeviceID(src *random.Source) string {
	return "DEV_" + src.Hex(8)
}

// IPAddress returns an anonymized IPv4 address with the host octets masked.
func IPAddress(src *random.Source) string {
	return fmt.Sprintf("%d.%d.xxx.xxx", src.IntRange(1, 255), src.IntRange(0, 255))
}

// accountCreated returns a creation time exactly ageDays whole days before ts, offset by
// part of a day so creation times do not line up with the event clock.
func accountCreated(src *random.Source, ts time.Time, ageDays int) time.Time {
	offset := time.Duration(src.Int64N(int64(24*time.Hour/time.Second))) * time.Second
	return ts.Add(-time.Duration(ageDays)*24*time.Hour - offset)
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// newRecord fills the fields every archetype shares: identifiers, event time and labels.
func newRecord(src *random.Source, ts time.Time, abuse model.AbuseType, tier model.DifficultyTier) model.TransactionRecord {
	ts = ts.UTC().Truncate(time.Second)
	if !abuse.Tiered() {
		tier = model.TierNA
	}
	return model.TransactionRecord{
		TransactionID:  TransactionID(src, ts),
		Timestamp:      ts,
		UserID:         UserID(src),
		Currency:       model.Currency,
		DeviceID:       DeviceID(src),
		IPAddress:      IPAddress(src),
		IsAbuse:        abuse.IsAbuse(),
		AbuseType:      abuse,
		DifficultyTier: tier,
	}
}

func setAccount(r *model.TransactionRecord, src *random.Source, ageDays int) {
	r.AccountCreatedDate = accountCreated(src, r.Timestamp, ageDays)
	r.AccountAgeDays = model.AccountAge(r.AccountCreatedDate, r.Timestamp)
}

func setGeography(r *model.TransactionRecord, ip, card, billing, shipping string) {
	r.IPCountry = ip
	r.CardCountry = card
	r.BillingCountry = billing
	r.ShippingCountry = shipping
	r.BillingShippingMatch = billing == shipping
}

// setVelocity fills order counters so that lifetime >= 7d >= 24h always holds.
func setVelocity(r *model.TransactionRecord, last24h, extra7d, lifetime int) {
	r.OrdersLast24h = last24h
	r.OrdersLast7d = last24h + extra7d
	r.TotalOrdersLifetime = max(lifetime, r.OrdersLast7d)
}

func emailDomain(src *random.Source, legitimateShare float64) string {
	if src.Bool(legitimateShare) {
		return random.Pick(src, model.LegitimateEmailDomains)
	}
	return random.Pick(src, model.TempEmailDomains)
}

func userAgent(src *random.Source, allowAutomation bool) string {
	if allowAutomation {
		return random.Pick(src, model.UserAgents)
	}
	return random.Pick(src, model.BrowserUserAgents)
}

// weights are ordered to match the model's enumeration lists.

func paymentMethod(src *random.Source, w [4]float64) model.PaymentMethod {
	return random.Weighted(src, model.PaymentMethods, w[:])
}

func cvvResult(src *random.Source, w [3]float64) model.CVVResult {
	return random.Weighted(src, model.CVVResults, w[:])
}

func avsResult(src *random.Source, w [3]float64) model.AVSResult {
	return random.Weighted(src, model.AVSResults, w[:])
}

func processorResponse(src *random.Source, w [3]float64) model.ProcessorResponse {
	return random.Weighted(src, model.ProcessorResponses, w[:])
}
