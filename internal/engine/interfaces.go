package engine

import (
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/pattern"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// GeneratorFactory builds the generator for one archetype around its own source.
type GeneratorFactory func(archetype model.AbuseType, src *random.Source) (pattern.Generator, error)

// ProgressFunc receives the running record count of one archetype. With parallel
// generation it is called from several goroutines at once.
type ProgressFunc func(archetype model.AbuseType, done, total int)
