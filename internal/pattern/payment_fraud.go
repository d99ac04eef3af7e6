package pattern

import (
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

type paymentFraudParams struct {
	summary string

	legitimateEmail      float64
	emailVerified        float64
	phoneVerified        float64
	ipMismatch           float64
	minAmount, maxAmount float64
	minAvg, maxAvg       float64
	min24h, max24h       int
	maxFailedLogins      int
	newDevice            float64
	vpn                  float64
	automationAgents     bool
	cvv                  [3]float64
	avs                  [3]float64
	processor            [3]float64
	minSession           int
	maxSession           int
	highRiskCategory     float64
}

var paymentFraudTiers = map[model.DifficultyTier]paymentFraudParams{
	model.TierEasy: {
		summary:          "card, billing, shipping and IP countries all disagree, $500-2000, 3-8 orders in 24h",
		legitimateEmail:  0.4,
		emailVerified:    0.4,
		phoneVerified:    0.2,
		ipMismatch:       1,
		minAmount:        500,
		maxAmount:        2000,
		minAvg:           0.7,
		maxAvg:           1.3,
		min24h:           3,
		max24h:           8,
		maxFailedLogins:  3,
		newDevice:        0.8,
		vpn:              0.5,
		automationAgents: true,
		cvv:              [3]float64{0.2, 0.65, 0.15},
		avs:              [3]float64{0.1, 0.25, 0.65},
		processor:        [3]float64{0.3, 0.3, 0.4},
		minSession:       60,
		maxSession:       300,
		highRiskCategory: 0.9,
	},
	model.TierMedium: {
		summary:          "billing matches card, shipping differs, IP sometimes foreign, $250-900, 1-4 orders in 24h",
		legitimateEmail:  0.6,
		emailVerified:    0.6,
		phoneVerified:    0.4,
		ipMismatch:       0.5,
		minAmount:        250,
		maxAmount:        900,
		minAvg:           0.5,
		maxAvg:           1.1,
		min24h:           1,
		max24h:           4,
		maxFailedLogins:  2,
		newDevice:        0.5,
		vpn:              0.35,
		automationAgents: false,
		cvv:              [3]float64{0.5, 0.35, 0.15},
		avs:              [3]float64{0.3, 0.4, 0.3},
		processor:        [3]float64{0.55, 0.2, 0.25},
		minSession:       120,
		maxSession:       600,
		highRiskCategory: 0.75,
	},
	model.TierHard: {
		summary:          "only shipping differs (gift-like), $100-500, verification mostly passes, 0-1 orders in 24h",
		legitimateEmail:  0.85,
		emailVerified:    0.8,
		phoneVerified:    0.6,
		ipMismatch:       0,
		minAmount:        100,
		maxAmount:        500,
		minAvg:           0.4,
		maxAvg:           0.9,
		min24h:           0,
		max24h:           1,
		maxFailedLogins:  1,
		newDevice:        0.3,
		vpn:              0.15,
		automationAgents: false,
		cvv:              [3]float64{0.8, 0.1, 0.1},
		avs:              [3]float64{0.6, 0.3, 0.1},
		processor:        [3]float64{0.85, 0.05, 0.1},
		minSession:       180,
		maxSession:       1200,
		highRiskCategory: 0.55,
	},
}

type paymentFraud struct {
	src *random.Source
}

func (g *paymentFraud) Archetype() model.AbuseType { return model.AbusePaymentFraud }

// Generate models a stolen or synthetic payment instrument. Account history is
// incidental; the signal lives in country mismatches, verification failures and
// card-testing velocity.
func (g *paymentFraud) Generate(ts time.Time, tier model.DifficultyTier) model.TransactionRecord {
	tier = fraudTier(tier)
	p := paymentFraudTiers[tier]
	s := g.src
	r := newRecord(s, ts, model.AbusePaymentFraud, tier)

	setAccount(&r, s, s.IntRange(1, 180))
	r.DaysSinceAccountFirstPurchase = s.IntRange(0, min(30, r.AccountAgeDays))
	r.EmailDomain = emailDomain(s, p.legitimateEmail)
	r.EmailVerified = s.Bool(p.emailVerified)
	r.PhoneVerified = s.Bool(p.phoneVerified)
	r.ProfileComplete = s.Bool(0.5)
	r.FailedLoginAttempts24h = s.IntRange(0, p.maxFailedLogins)
	r.SuccessfulLogins7d = s.IntRange(1, 10)
	r.PasswordResetCount30d = random.Weighted(s, []int{0, 1}, []float64{0.8, 0.2})

	card := random.Pick(s, model.LowRiskCountries)
	billing, ip := card, card
	var shipping string
	switch tier {
	case model.TierEasy:
		billing = random.PickExcept(s, model.LowRiskCountries, card)
		shipping = random.PickExcept(s, model.AllCountries, card, billing)
		ip = random.Pick(s, model.HighRiskCountries)
	default:
		shipping = random.PickExcept(s, model.LowRiskCountries, billing)
		if s.Bool(p.ipMismatch) {
			ip = random.PickExcept(s, model.AllCountries, card)
		}
	}
	setGeography(&r, ip, card, billing, shipping)

	r.UserAgent = userAgent(s, p.automationAgents)
	r.DeviceType = random.Pick(s, model.DeviceTypes)
	r.NewDevice = s.Bool(p.newDevice)
	r.VPNProxyDetected = s.Bool(p.vpn)

	r.PaymentMethod = paymentMethod(s, [4]float64{0.7, 0.2, 0.08, 0.02})
	r.CardBIN = random.Pick(s, model.AllCardBINs)
	r.CVVCheckResult = cvvResult(s, p.cvv)
	r.AVSResult = avsResult(s, p.avs)
	r.PaymentProcessorResponse = processorResponse(s, p.processor)

	r.OrderAmount = round2(s.Uniform(p.minAmount, p.maxAmount))
	r.AvgOrderValue = round2(r.OrderAmount * s.Uniform(p.minAvg, p.maxAvg))
	last24h := s.IntRange(p.min24h, p.max24h)
	setVelocity(&r, last24h, s.IntRange(0, 5), s.IntRange(1, 10))
	r.SessionDurationSeconds = s.IntRange(p.minSession, p.maxSession)
	r.CartAdditionsSession = s.IntRange(1, 10)
	r.HighRiskCategory = s.Bool(p.highRiskCategory)

	r.AbuseConfidence = drawConfidence(s, tierConfidence[tier])
	return r
}
