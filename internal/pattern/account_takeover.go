package pattern

import (
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

type takeoverParams struct {
	summary string

	minFailed, maxFailed int
	minResets, maxResets int
	minLogins, maxLogins int
	// geography selects where the attacker transacts from relative to the account's
	// home country.
	geography        takeoverGeography
	shipToIP         float64
	minMultiple      float64
	maxMultiple      float64
	newDevice        float64
	vpn              float64
	automationAgents bool
	cvv              [3]float64
	avs              [3]float64
	processor        [3]float64
	minSession       int
	maxSession       int
	max24h           int
	highRiskCategory float64
}

type takeoverGeography int

const (
	geoHighRisk takeoverGeography = iota
	geoForeignLowRisk
	geoHome
)

var takeoverTiers = map[model.DifficultyTier]takeoverParams{
	model.TierEasy: {
		summary:          "5-15 failed logins and resets, high-risk foreign IP and shipping, 2-4x usual spend",
		minFailed:        5,
		maxFailed:        15,
		minResets:        1,
		maxResets:        2,
		minLogins:        1,
		maxLogins:        3,
		geography:        geoHighRisk,
		shipToIP:         0.75,
		minMultiple:      2,
		maxMultiple:      4,
		newDevice:        1,
		vpn:              0.5,
		automationAgents: true,
		cvv:              [3]float64{0.4, 0.35, 0.25},
		avs:              [3]float64{0.2, 0.4, 0.4},
		processor:        [3]float64{0.5, 0.1, 0.4},
		minSession:       60,
		maxSession:       300,
		max24h:           3,
		highRiskCategory: 0.7,
	},
	model.TierMedium: {
		summary:          "1-5 failed logins, different low-risk country, 1.5-2.5x usual spend",
		minFailed:        1,
		maxFailed:        5,
		minResets:        0,
		maxResets:        1,
		minLogins:        2,
		maxLogins:        6,
		geography:        geoForeignLowRisk,
		shipToIP:         0.5,
		minMultiple:      1.5,
		maxMultiple:      2.5,
		newDevice:        0.85,
		vpn:              0.35,
		automationAgents: false,
		cvv:              [3]float64{0.6, 0.25, 0.15},
		avs:              [3]float64{0.4, 0.4, 0.2},
		processor:        [3]float64{0.65, 0.1, 0.25},
		minSession:       90,
		maxSession:       600,
		max24h:           2,
		highRiskCategory: 0.55,
	},
	model.TierHard: {
		summary:          "no failed logins or resets, home-country or VPN-masked IP, 0.9-1.8x usual spend",
		minLogins:        3,
		maxLogins:        12,
		geography:        geoHome,
		minMultiple:      0.9,
		maxMultiple:      1.8,
		newDevice:        0.6,
		vpn:              0.3,
		automationAgents: false,
		cvv:              [3]float64{0.85, 0.05, 0.1},
		avs:              [3]float64{0.7, 0.25, 0.05},
		processor:        [3]float64{0.85, 0.05, 0.1},
		minSession:       180,
		maxSession:       900,
		max24h:           1,
		highRiskCategory: 0.4,
	},
}

type accountTakeover struct {
	src *random.Source
}

func (g *accountTakeover) Archetype() model.AbuseType { return model.AbuseAccountTakeover }

// Generate models an attacker transacting on a compromised, established account. The
// account history looks legitimate; only the session shows the compromise.
func (g *accountTakeover) Generate(ts time.Time, tier model.DifficultyTier) model.TransactionRecord {
	tier = fraudTier(tier)
	p := takeoverTiers[tier]
	s := g.src
	r := newRecord(s, ts, model.AbuseAccountTakeover, tier)

	setAccount(&r, s, s.IntRange(90, 730))
	r.DaysSinceAccountFirstPurchase = s.IntRange(30, r.AccountAgeDays-30)
	r.EmailDomain = random.Pick(s, model.LegitimateEmailDomains)
	r.EmailVerified = true
	r.PhoneVerified = s.Bool(0.7)
	r.ProfileComplete = s.Bool(0.8)
	r.FailedLoginAttempts24h = s.IntRange(p.minFailed, p.maxFailed)
	r.PasswordResetCount30d = s.IntRange(p.minResets, p.maxResets)
	r.SuccessfulLogins7d = s.IntRange(p.minLogins, p.maxLogins)

	home := random.Pick(s, model.LowRiskCountries)
	var ip string
	switch p.geography {
	case geoHighRisk:
		ip = random.Pick(s, model.HighRiskCountries)
	case geoForeignLowRisk:
		ip = random.PickExcept(s, model.LowRiskCountries, home)
	default:
		ip = home
	}
	shipping := home
	switch {
	case p.geography == geoHome:
		// Drop shipping to a new address while everything else still looks like home.
		if !s.Bool(0.7) {
			shipping = random.PickExcept(s, model.LowRiskCountries, home)
		}
	case s.Bool(p.shipToIP):
		shipping = ip
	}
	setGeography(&r, ip, home, home, shipping)

	r.UserAgent = userAgent(s, p.automationAgents)
	r.DeviceType = random.Pick(s, model.DeviceTypes)
	r.NewDevice = s.Bool(p.newDevice)
	r.VPNProxyDetected = s.Bool(p.vpn)

	r.PaymentMethod = paymentMethod(s, [4]float64{0.5, 0.3, 0.15, 0.05})
	r.CardBIN = random.Pick(s, model.AllCardBINs)
	r.CVVCheckResult = cvvResult(s, p.cvv)
	r.AVSResult = avsResult(s, p.avs)
	r.PaymentProcessorResponse = processorResponse(s, p.processor)

	historical := s.Uniform(40, 150)
	r.AvgOrderValue = round2(historical)
	r.OrderAmount = round2(historical * s.Uniform(p.minMultiple, p.maxMultiple))
	last24h := s.IntRange(1, p.max24h)
	setVelocity(&r, last24h, s.IntRange(0, 2), s.IntRange(5, 50))
	r.SessionDurationSeconds = s.IntRange(p.minSession, p.maxSession)
	r.CartAdditionsSession = s.IntRange(1, 3)
	r.HighRiskCategory = s.Bool(p.highRiskCategory)

	r.AbuseConfidence = drawConfidence(s, tierConfidence[tier])
	return r
}
