package pattern

import (
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// minLegitimateAmount is the floor applied to normally distributed order amounts.
const minLegitimateAmount = 10.0

type legitimate struct {
	src *random.Source
}

func (g *legitimate) Archetype() model.AbuseType { return model.AbuseLegitimate }

// Generate models an established shopper transacting from a single home country.
func (g *legitimate) Generate(ts time.Time, _ model.DifficultyTier) model.TransactionRecord {
	s := g.src
	r := newRecord(s, ts, model.AbuseLegitimate, model.TierNA)

	setAccount(&r, s, s.IntRange(30, 365))
	r.DaysSinceAccountFirstPurchase = s.IntRange(0, min(30, r.AccountAgeDays))
	r.EmailDomain = random.Pick(s, model.LegitimateEmailDomains)
	r.EmailVerified = s.Bool(0.9)
	r.PhoneVerified = s.Bool(0.8)
	r.ProfileComplete = s.Bool(0.7)
	if !s.Bool(0.95) {
		r.FailedLoginAttempts24h = s.IntRange(1, 2)
	}
	r.SuccessfulLogins7d = s.IntRange(3, 20)
	if !s.Bool(0.9) {
		r.PasswordResetCount30d = 1
	}

	home := random.Pick(s, model.LowRiskCountries)
	card, shipping := home, home
	if !s.Bool(0.9) {
		card = random.Pick(s, model.LowRiskCountries)
	}
	if !s.Bool(0.95) {
		shipping = random.Pick(s, model.LowRiskCountries)
	}
	setGeography(&r, home, card, home, shipping)

	r.UserAgent = userAgent(s, false)
	r.DeviceType = random.Pick(s, model.DeviceTypes)
	r.NewDevice = s.Bool(0.15)
	r.VPNProxyDetected = s.Bool(0.05)

	r.PaymentMethod = paymentMethod(s, [4]float64{0.5, 0.3, 0.15, 0.05})
	r.CardBIN = random.Pick(s, model.AllCardBINs)
	r.CVVCheckResult = cvvResult(s, [3]float64{0.9, 0, 0.1})
	r.AVSResult = avsResult(s, [3]float64{0.85, 0.15, 0})
	r.PaymentProcessorResponse = model.ProcessorApproved

	avg := s.Uniform(30, 200)
	r.AvgOrderValue = round2(avg)
	r.OrderAmount = round2(max(minLegitimateAmount, s.Gaussian(avg, avg*0.3)))
	last24h := random.Weighted(s, []int{0, 1}, []float64{0.8, 0.2})
	setVelocity(&r, last24h, s.IntRange(0, 4), s.IntRange(1, 50))
	r.SessionDurationSeconds = s.IntRange(120, 1800)
	r.CartAdditionsSession = s.IntRange(1, 5)
	r.HighRiskCategory = s.Bool(0.2)

	r.AbuseConfidence = 0
	return r
}
