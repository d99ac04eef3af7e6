package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/pattern"
	"github.com/Veraticus/abuse-forge/internal/random"
	"github.com/Veraticus/abuse-forge/internal/service"
)

// progressEvery is how many records pass between progress callbacks and context checks.
const progressEvery = 256

var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Veraticus/abuse-forge/runs"))

// Dataset is a composed, shuffled set of records together with the configuration that
// produced it.
type Dataset struct {
	CreatedAt time.Time
	RunID     string
	Records   []model.TransactionRecord
	Config    Config
}

// Counts returns the number of records per archetype.
func (d *Dataset) Counts() map[model.AbuseType]int {
	counts := make(map[model.AbuseType]int, len(model.Archetypes))
	for i := range d.Records {
		counts[d.Records[i].AbuseType]++
	}
	return counts
}

// ByArchetype returns the records labeled with the given archetype in dataset order.
func (d *Dataset) ByArchetype(a model.AbuseType) []model.TransactionRecord {
	var out []model.TransactionRecord
	for i := range d.Records {
		if d.Records[i].AbuseType == a {
			out = append(out, d.Records[i])
		}
	}
	return out
}

// Summary describes the dataset for storage and publishing.
func (d *Dataset) Summary() (service.RunSummary, error) {
	cfg, err := json.Marshal(d.Config)
	if err != nil {
		return service.RunSummary{}, fmt.Errorf("failed to encode config: %w", err)
	}
	return service.RunSummary{
		ID:          d.RunID,
		CreatedAt:   d.CreatedAt,
		Start:       d.Config.Start,
		End:         d.Config.End,
		Seed:        d.Config.Seed,
		Config:      string(cfg),
		RecordCount: len(d.Records),
		Counts:      d.Counts(),
	}, nil
}

// RunID returns a stable identifier for cfg. Identical configurations always map to the
// same ID, which in turn identifies an identical dataset.
func RunID(cfg Config) string {
	key := fmt.Sprintf("size=%d seed=%d start=%s end=%s ratios=%v tiers=%v fixed=%s",
		cfg.Size, cfg.Seed,
		cfg.Start.UTC().Format(time.RFC3339), cfg.End.UTC().Format(time.RFC3339),
		cfg.Ratios, cfg.TierMix, cfg.FixedTier)
	return uuid.NewSHA1(runNamespace, []byte(key)).String()
}

// Composer turns a Config into a Dataset.
type Composer struct {
	newGenerator GeneratorFactory
	progress     ProgressFunc
}

// NewComposer creates a composer backed by the archetype generators.
func NewComposer() *Composer {
	return &Composer{newGenerator: pattern.New}
}

// WithProgress registers a callback for generation progress.
func (c *Composer) WithProgress(fn ProgressFunc) *Composer {
	c.progress = fn
	return c
}

// WithGeneratorFactory replaces the generator constructor.
func (c *Composer) WithGeneratorFactory(fn GeneratorFactory) *Composer {
	c.newGenerator = fn
	return c
}

// Compose validates cfg and builds the dataset. Invalid configuration fails before any
// record is generated. Archetype i draws from a source derived from (Seed, i+1); within
// it each record draws its timestamp, then its tier, then its fields. The concatenated
// records are shuffled with a source seeded by Seed.
func (c *Composer) Compose(ctx context.Context, cfg Config) (*Dataset, error) {
	cfg.Start = cfg.Start.UTC().Truncate(time.Second)
	cfg.End = cfg.End.UTC().Truncate(time.Second)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allocations := Allocate(cfg.Size, cfg.Ratios)
	root := random.New(cfg.Seed)
	parts := make([][]model.TransactionRecord, len(allocations))

	generate := func(ctx context.Context, i int) error {
		records, err := c.generateArchetype(ctx, cfg, root.Derive(uint64(i+1)), allocations[i])
		if err != nil {
			return err
		}
		parts[i] = records
		return nil
	}

	start := time.Now()
	if cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range allocations {
			if allocations[i].Count == 0 {
				continue
			}
			g.Go(func() error { return generate(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range allocations {
			if allocations[i].Count == 0 {
				continue
			}
			if err := generate(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	records := make([]model.TransactionRecord, 0, cfg.Size)
	for _, part := range parts {
		records = append(records, part...)
	}
	random.New(cfg.Seed).Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	ds := &Dataset{
		RunID:     RunID(cfg),
		Config:    cfg,
		Records:   records,
		CreatedAt: time.Now().UTC(),
	}

	fields := common.Fields{
		"run_id":   ds.RunID,
		"records":  len(records),
		"seed":     cfg.Seed,
		"parallel": cfg.Parallel,
		"duration": time.Since(start).String(),
	}
	for _, alloc := range allocations {
		fields[string(alloc.Archetype)] = alloc.Count
	}
	common.LogInfo("Composed dataset", fields)

	return ds, nil
}

func (c *Composer) generateArchetype(ctx context.Context, cfg Config, src *random.Source, alloc Allocation) ([]model.TransactionRecord, error) {
	gen, err := c.newGenerator(alloc.Archetype, src)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", alloc.Archetype, err)
	}

	slog.Debug("Generating archetype", "archetype", alloc.Archetype, "count", alloc.Count)

	span := int64(cfg.End.Sub(cfg.Start) / time.Second)
	weights := cfg.TierMix.Weights()
	records := make([]model.TransactionRecord, 0, alloc.Count)

	for n := 0; n < alloc.Count; n++ {
		if n%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation of %s interrupted: %w", alloc.Archetype, err)
			}
			if c.progress != nil && n > 0 {
				c.progress(alloc.Archetype, n, alloc.Count)
			}
		}

		ts := cfg.Start.Add(time.Duration(src.Int64N(span)) * time.Second)
		tier := model.TierNA
		if alloc.Archetype.Tiered() {
			if cfg.FixedTier != "" {
				tier = cfg.FixedTier
			} else {
				tier = random.Weighted(src, model.Tiers, weights)
			}
		}
		records = append(records, gen.Generate(ts, tier))
	}

	if c.progress != nil {
		c.progress(alloc.Archetype, alloc.Count, alloc.Count)
	}
	return records, nil
}

// Compose builds a dataset with the default generators and no progress reporting.
func Compose(ctx context.Context, cfg Config) (*Dataset, error) {
	return NewComposer().Compose(ctx, cfg)
}
