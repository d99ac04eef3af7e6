// Package engine composes labeled datasets by mixing archetype generators at configured
// ratios.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// RatioTolerance is how far the archetype ratios may sum away from 1.0.
const RatioTolerance = 0.01

// floorEpsilon absorbs float error so that 0.29*100 allocates 29 records, not 28.
const floorEpsilon = 1e-9

// Ratios is the fraction of the dataset allotted to each archetype.
type Ratios struct {
	Legitimate              float64 `json:"legitimate"`
	SuspiciousButLegitimate float64 `json:"suspicious_but_legitimate"`
	FakeAccount             float64 `json:"fake_account"`
	AccountTakeover         float64 `json:"account_takeover"`
	PaymentFraud            float64 `json:"payment_fraud"`
}

// DefaultRatios returns the standard class balance.
func DefaultRatios() Ratios {
	return Ratios{
		Legitimate:      0.75,
		FakeAccount:     0.10,
		AccountTakeover: 0.08,
		PaymentFraud:    0.07,
	}
}

// For returns the ratio of the given archetype.
func (r Ratios) For(a model.AbuseType) float64 {
	switch a {
	case model.AbuseLegitimate:
		return r.Legitimate
	case model.AbuseSuspiciousButLegitimate:
		return r.SuspiciousButLegitimate
	case model.AbuseFakeAccount:
		return r.FakeAccount
	case model.AbuseAccountTakeover:
		return r.AccountTakeover
	case model.AbusePaymentFraud:
		return r.PaymentFraud
	}
	return 0
}

// Sum returns the total of every ratio.
func (r Ratios) Sum() float64 {
	total := 0.0
	for _, a := range model.Archetypes {
		total += r.For(a)
	}
	return total
}

// TierMix weights the difficulty tier drawn for each fraud record.
type TierMix struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// DefaultTierMix returns the standard tier distribution.
func DefaultTierMix() TierMix {
	return TierMix{Easy: 0.40, Medium: 0.35, Hard: 0.25}
}

// Weights returns the mix in model.Tiers order.
func (m TierMix) Weights() []float64 {
	return []float64{m.Easy, m.Medium, m.Hard}
}

// Config describes one dataset.
type Config struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Ratios Ratios    `json:"ratios"`
	// FixedTier, when set, is used for every fraud record instead of drawing from TierMix.
	FixedTier model.DifficultyTier `json:"difficulty,omitempty"`
	TierMix   TierMix              `json:"tier_mix"`
	Size      int                  `json:"size"`
	Seed      int64                `json:"seed"`
	Parallel  bool                 `json:"parallel"`
}

// DefaultConfig returns the standard configuration with a window of the 90 days
// ending at now.
func DefaultConfig(now time.Time) Config {
	end := now.UTC().Truncate(time.Second)
	return Config{
		Size:    50000,
		Ratios:  DefaultRatios(),
		Seed:    42,
		Start:   end.AddDate(0, 0, -90),
		End:     end,
		TierMix: DefaultTierMix(),
	}
}

// Validate checks the configuration before any record is generated.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", common.ErrInvalidConfig, c.Size)
	}
	for _, a := range model.Archetypes {
		if r := c.Ratios.For(a); r < 0 || math.IsNaN(r) {
			return fmt.Errorf("%w: %s ratio must not be negative, got %v", common.ErrInvalidConfig, a, r)
		}
	}
	if sum := c.Ratios.Sum(); math.Abs(sum-1) > RatioTolerance+floorEpsilon {
		return fmt.Errorf("%w: ratios must sum to 1.0 (±%.2f), got %.4f", common.ErrInvalidConfig, RatioTolerance, sum)
	}
	if !c.End.After(c.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", common.ErrDegenerateWindow,
			c.End.Format(model.DateTimeLayout), c.Start.Format(model.DateTimeLayout))
	}

	switch c.FixedTier {
	case "":
		total := 0.0
		for _, w := range c.TierMix.Weights() {
			if w < 0 || math.IsNaN(w) {
				return fmt.Errorf("%w: tier weights must not be negative", common.ErrInvalidConfig)
			}
			total += w
		}
		if math.Abs(total-1) > RatioTolerance+floorEpsilon {
			return fmt.Errorf("%w: tier mix must sum to 1.0, got %.4f", common.ErrInvalidConfig, total)
		}
	case model.TierEasy, model.TierMedium, model.TierHard:
	default:
		return fmt.Errorf("%w: difficulty %q is not easy, medium or hard", common.ErrInvalidConfig, c.FixedTier)
	}
	return nil
}

// Allocation is the number of records one archetype contributes.
type Allocation struct {
	Archetype model.AbuseType
	Count     int
}

// Allocate splits size across the archetypes in model.Archetypes order. Every archetype
// but the last receives floor(size*ratio); the last absorbs the remainder so the counts
// always total size. If the floors overshoot size, the surplus comes out of the largest
// earlier allocations.
func Allocate(size int, ratios Ratios) []Allocation {
	out := make([]Allocation, len(model.Archetypes))
	last := len(model.Archetypes) - 1
	assigned := 0
	for i, a := range model.Archetypes[:last] {
		n := int(math.Floor(float64(size)*ratios.For(a) + floorEpsilon))
		out[i] = Allocation{Archetype: a, Count: n}
		assigned += n
	}

	remainder := size - assigned
	for remainder < 0 {
		largest := 0
		for i := 1; i < last; i++ {
			if out[i].Count > out[largest].Count {
				largest = i
			}
		}
		out[largest].Count--
		remainder++
	}
	out[last] = Allocation{Archetype: model.Archetypes[last], Count: remainder}
	return out
}
