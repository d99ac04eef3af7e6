package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// Progress renders dataset generation progress as one bar over every archetype.
// Update may be called from several goroutines.
type Progress struct {
	bar  *progressbar.ProgressBar
	done map[model.AbuseType]int
	mu   sync.Mutex
}

// NewProgress creates a bar for total records written to w.
func NewProgress(w io.Writer, total int) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetDescription("[cyan][bold]Generating records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &Progress{
		bar:  bar,
		done: make(map[model.AbuseType]int),
	}
}

// Update records that done of total records of archetype exist. It matches
// engine.ProgressFunc.
func (p *Progress) Update(archetype model.AbuseType, done, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delta := done - p.done[archetype]
	if delta <= 0 {
		return
	}
	p.done[archetype] = done
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Generating %s...[reset]", archetype))
	if err := p.bar.Add(delta); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Total returns how many records have been reported so far.
func (p *Progress) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.done {
		total += n
	}
	return total
}

// Finish completes the bar.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
