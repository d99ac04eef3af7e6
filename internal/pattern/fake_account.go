package pattern

import (
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

type fakeAccountParams struct {
	summary string

	minAge, maxAge       int
	immediatePurchase    float64
	legitimateEmail      float64
	emailVerified        float64
	phoneVerified        float64
	profileComplete      float64
	maxFailedLogins      int
	minLogins, maxLogins int
	automationAgents     bool
	newDevice            float64
	vpn                  float64
	highRiskIP           float64
	shippingMismatch     float64
	cvv                  [3]float64
	avs                  [3]float64
	processor            [3]float64
	minAmount, maxAmount float64
	minOrders, maxOrders int
	minSession           int
	maxSession           int
	maxCart              int
	highRiskCategory     float64
}

var fakeAccountTiers = map[model.DifficultyTier]fakeAccountParams{
	model.TierEasy: {
		summary:           "0-3 day account, disposable email, unverified, rushed session, poor CVV/AVS",
		minAge:            0,
		maxAge:            3,
		immediatePurchase: 0.7,
		legitimateEmail:   0,
		emailVerified:     0.1,
		phoneVerified:     0.05,
		profileComplete:   0.1,
		minLogins:         1,
		maxLogins:         5,
		automationAgents:  true,
		newDevice:         1,
		vpn:               0.4,
		highRiskIP:        0.5,
		shippingMismatch:  0.6,
		cvv:               [3]float64{0.45, 0.35, 0.2},
		avs:               [3]float64{0.2, 0.3, 0.5},
		processor:         [3]float64{0.55, 0.1, 0.35},
		minAmount:         50,
		maxAmount:         500,
		minOrders:         1,
		maxOrders:         3,
		minSession:        30,
		maxSession:        180,
		maxCart:           3,
		highRiskCategory:  0.6,
	},
	model.TierMedium: {
		summary:           "3-7 day account, mixed email, partial verification, short session",
		minAge:            3,
		maxAge:            7,
		immediatePurchase: 0.5,
		legitimateEmail:   0.5,
		emailVerified:     0.45,
		phoneVerified:     0.25,
		profileComplete:   0.35,
		maxFailedLogins:   1,
		minLogins:         2,
		maxLogins:         7,
		automationAgents:  true,
		newDevice:         0.85,
		vpn:               0.25,
		highRiskIP:        0.25,
		shippingMismatch:  0.4,
		cvv:               [3]float64{0.65, 0.2, 0.15},
		avs:               [3]float64{0.4, 0.35, 0.25},
		processor:         [3]float64{0.7, 0.1, 0.2},
		minAmount:         40,
		maxAmount:         350,
		minOrders:         1,
		maxOrders:         4,
		minSession:        90,
		maxSession:        600,
		maxCart:           4,
		highRiskCategory:  0.45,
	},
	model.TierHard: {
		summary:           "7-30 day account, mainstream email, mostly verified, near-normal session and checks",
		minAge:            7,
		maxAge:            30,
		immediatePurchase: 0.2,
		legitimateEmail:   1,
		emailVerified:     0.75,
		phoneVerified:     0.6,
		profileComplete:   0.6,
		maxFailedLogins:   1,
		minLogins:         3,
		maxLogins:         12,
		automationAgents:  false,
		newDevice:         0.5,
		vpn:               0.1,
		highRiskIP:        0,
		shippingMismatch:  0.15,
		cvv:               [3]float64{0.85, 0.05, 0.1},
		avs:               [3]float64{0.7, 0.25, 0.05},
		processor:         [3]float64{0.88, 0.04, 0.08},
		minAmount:         30,
		maxAmount:         250,
		minOrders:         1,
		maxOrders:         6,
		minSession:        300,
		maxSession:        1500,
		maxCart:           6,
		highRiskCategory:  0.3,
	},
}

type fakeAccount struct {
	src *random.Source
}

func (g *fakeAccount) Archetype() model.AbuseType { return model.AbuseFakeAccount }

// Generate models a disposable identity created to abuse the storefront. Lower tiers
// leave a fresher, less verified footprint.
func (g *fakeAccount) Generate(ts time.Time, tier model.DifficultyTier) model.TransactionRecord {
	tier = fraudTier(tier)
	p := fakeAccountTiers[tier]
	s := g.src
	r := newRecord(s, ts, model.AbuseFakeAccount, tier)

	setAccount(&r, s, s.IntRange(p.minAge, p.maxAge))
	// Fake accounts usually buy within the day they are created.
	if s.Bool(p.immediatePurchase) {
		r.DaysSinceAccountFirstPurchase = 0
	} else {
		r.DaysSinceAccountFirstPurchase = s.IntRange(0, r.AccountAgeDays)
	}
	r.EmailDomain = emailDomain(s, p.legitimateEmail)
	r.EmailVerified = s.Bool(p.emailVerified)
	r.PhoneVerified = s.Bool(p.phoneVerified)
	r.ProfileComplete = s.Bool(p.profileComplete)
	r.FailedLoginAttempts24h = s.IntRange(0, p.maxFailedLogins)
	r.SuccessfulLogins7d = s.IntRange(p.minLogins, p.maxLogins)

	card := random.Pick(s, model.LowRiskCountries)
	ip := card
	if s.Bool(p.highRiskIP) {
		ip = random.Pick(s, model.HighRiskCountries)
	}
	shipping := card
	if s.Bool(p.shippingMismatch) {
		shipping = random.PickExcept(s, model.LowRiskCountries, card)
	}
	setGeography(&r, ip, card, card, shipping)

	r.UserAgent = userAgent(s, p.automationAgents)
	r.DeviceType = random.Pick(s, model.DeviceTypes)
	r.NewDevice = s.Bool(p.newDevice)
	r.VPNProxyDetected = s.Bool(p.vpn)

	r.PaymentMethod = paymentMethod(s, [4]float64{0.6, 0.2, 0.15, 0.05})
	r.CardBIN = random.Pick(s, model.AllCardBINs)
	r.CVVCheckResult = cvvResult(s, p.cvv)
	r.AVSResult = avsResult(s, p.avs)
	r.PaymentProcessorResponse = processorResponse(s, p.processor)

	r.OrderAmount = round2(s.Uniform(p.minAmount, p.maxAmount))
	r.AvgOrderValue = round2(r.OrderAmount * s.Uniform(0.8, 1.2))
	lifetime := s.IntRange(p.minOrders, p.maxOrders)
	last24h := s.IntRange(1, min(3, lifetime))
	setVelocity(&r, last24h, s.IntRange(0, lifetime-last24h), lifetime)
	r.SessionDurationSeconds = s.IntRange(p.minSession, p.maxSession)
	r.CartAdditionsSession = s.IntRange(1, p.maxCart)
	r.HighRiskCategory = s.Bool(p.highRiskCategory)

	r.AbuseConfidence = drawConfidence(s, tierConfidence[tier])
	return r
}
