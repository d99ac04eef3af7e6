// Package pattern synthesizes transaction records for each behavioral archetype.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// ErrUnknownArchetype is returned by New for an abuse type with no generator.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Generator produces records for one archetype.
type Generator interface {
	// Archetype returns the abuse type every generated record is labeled with.
	Archetype() model.AbuseType
	// Generate returns one fully populated record for the given event time. The tier is
	// ignored by archetypes that are not fraud classes; their records carry n/a.
	Generate(ts time.Time, tier model.DifficultyTier) model.TransactionRecord
}

// New returns the generator for archetype. Every draw the generator makes comes from
// src, so the caller controls reproducibility by how it seeds and shares src.
func New(archetype model.AbuseType, src *random.Source) (Generator, error) {
	switch archetype {
	case model.AbuseLegitimate:
		return &legitimate{src: src}, nil
	case model.AbuseSuspiciousButLegitimate:
		return &suspicious{src: src}, nil
	case model.AbuseFakeAccount:
		return &fakeAccount{src: src}, nil
	case model.AbuseAccountTakeover:
		return &accountTakeover{src: src}, nil
	case model.AbusePaymentFraud:
		return &paymentFraud{src: src}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
}
