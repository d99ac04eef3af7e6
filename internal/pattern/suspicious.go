package pattern

import (
	"strings"
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// SuspiciousProfile names the reason a genuine shopper looks risky.
type SuspiciousProfile string

// Suspicious profiles.
const (
	ProfileVPNUser       SuspiciousProfile = "vpn_user"
	ProfileTraveler      SuspiciousProfile = "traveler"
	ProfileGiftBuyer     SuspiciousProfile = "gift_buyer"
	ProfileHighFrequency SuspiciousProfile = "high_frequency_shopper"
	ProfileExpatriate    SuspiciousProfile = "expatriate"
)

var (
	suspiciousProfiles       = []SuspiciousProfile{ProfileVPNUser, ProfileTraveler, ProfileGiftBuyer, ProfileHighFrequency, ProfileExpatriate}
	suspiciousProfileWeights = []float64{0.25, 0.2, 0.25, 0.15, 0.15}
)

func joinProfiles() string {
	names := make([]string, len(suspiciousProfiles))
	for i, p := range suspiciousProfiles {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

type suspicious struct {
	src *random.Source
}

func (g *suspicious) Archetype() model.AbuseType { return model.AbuseSuspiciousButLegitimate }

// Generate models a verified, long-standing customer whose one unusual trait pushes them
// into the ambiguous confidence band.
func (g *suspicious) Generate(ts time.Time, _ model.DifficultyTier) model.TransactionRecord {
	s := g.src
	r := newRecord(s, ts, model.AbuseSuspiciousButLegitimate, model.TierNA)
	profile := random.Weighted(s, suspiciousProfiles, suspiciousProfileWeights)

	setAccount(&r, s, s.IntRange(60, 1500))
	r.DaysSinceAccountFirstPurchase = s.IntRange(0, min(60, r.AccountAgeDays))
	r.EmailDomain = random.Pick(s, model.LegitimateEmailDomains)
	r.EmailVerified = s.Bool(0.95)
	r.PhoneVerified = s.Bool(0.85)
	r.ProfileComplete = s.Bool(0.8)
	if !s.Bool(0.9) {
		r.FailedLoginAttempts24h = s.IntRange(1, 2)
	}
	r.SuccessfulLogins7d = s.IntRange(3, 25)

	home := random.Pick(s, model.LowRiskCountries)
	ip, card, billing, shipping := home, home, home, home
	switch profile {
	case ProfileVPNUser:
		ip = random.PickExcept(s, model.AllCountries, home)
	case ProfileTraveler:
		ip = random.PickExcept(s, model.AllCountries, home)
		if !s.Bool(0.6) {
			shipping = ip
		}
	case ProfileGiftBuyer:
		shipping = random.PickExcept(s, model.LowRiskCountries, home)
	case ProfileExpatriate:
		residence := random.PickExcept(s, model.LowRiskCountries, home)
		ip, billing, shipping = residence, residence, residence
	}
	setGeography(&r, ip, card, billing, shipping)

	r.UserAgent = userAgent(s, false)
	r.DeviceType = random.Pick(s, model.DeviceTypes)
	switch profile {
	case ProfileTraveler:
		r.NewDevice = s.Bool(0.7)
		r.VPNProxyDetected = s.Bool(0.1)
	case ProfileVPNUser:
		r.NewDevice = s.Bool(0.2)
		r.VPNProxyDetected = true
	default:
		r.NewDevice = s.Bool(0.2)
		r.VPNProxyDetected = s.Bool(0.05)
	}

	r.PaymentMethod = paymentMethod(s, [4]float64{0.5, 0.3, 0.17, 0.03})
	r.CardBIN = random.Pick(s, model.AllCardBINs)
	r.CVVCheckResult = cvvResult(s, [3]float64{0.9, 0.02, 0.08})
	if profile == ProfileExpatriate {
		r.AVSResult = avsResult(s, [3]float64{0.3, 0.6, 0.1})
	} else {
		r.AVSResult = avsResult(s, [3]float64{0.75, 0.22, 0.03})
	}
	r.PaymentProcessorResponse = processorResponse(s, [3]float64{0.92, 0.03, 0.05})

	avg := s.Uniform(40, 220)
	r.AvgOrderValue = round2(avg)
	var amount float64
	if profile == ProfileGiftBuyer {
		amount = s.Uniform(150, 600)
	} else {
		amount = s.Gaussian(avg, avg*0.35)
	}
	r.OrderAmount = round2(max(minLegitimateAmount, amount))
	if profile == ProfileHighFrequency {
		setVelocity(&r, s.IntRange(3, 6), s.IntRange(5, 14), s.IntRange(50, 300))
	} else {
		last24h := random.Weighted(s, []int{0, 1}, []float64{0.7, 0.3})
		setVelocity(&r, last24h, s.IntRange(0, 5), s.IntRange(5, 80))
	}
	r.SessionDurationSeconds = s.IntRange(90, 1800)
	r.CartAdditionsSession = s.IntRange(1, 8)
	if profile == ProfileGiftBuyer {
		r.HighRiskCategory = s.Bool(0.5)
	} else {
		r.HighRiskCategory = s.Bool(0.25)
	}

	r.AbuseConfidence = drawConfidence(s, suspiciousConfidence)
	return r
}
