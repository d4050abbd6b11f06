// Package join implements the multi-way merge-join of sorted .bim streams.
package join

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/bim-inner-join/internal/bim"
)

// ErrTooFewStreams is returned when fewer than two streams are joined.
var ErrTooFewStreams = errors.New("at least two input streams are required")

// Stats summarizes a join run.
type Stats struct {
	Steps     int // Engine steps taken
	Matches   int // Loci present and allele-compatible in every stream
	Conflicts int // Loci present in every stream whose alleles disagree
	Reads     int // Variants read across all streams
}

// Engine advances one cursor per input stream in lock-step to find loci
// shared by every stream.
type Engine struct {
	readers   []bim.VariantReader
	cur       []bim.Variant
	exhausted []bool
	log       MatchLogger
	logger    *zap.Logger
	stats     Stats
	primed    bool
}

// NewEngine creates an engine over the given readers. Matches are reported
// to log.
func NewEngine(readers []bim.VariantReader, log MatchLogger) (*Engine, error) {
	if len(readers) < 2 {
		return nil, ErrTooFewStreams
	}
	return &Engine{
		readers:   readers,
		cur:       make([]bim.Variant, len(readers)),
		exhausted: make([]bool, len(readers)),
		log:       log,
		logger:    zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for debug and info messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Cursors returns the current variant of each stream. Slots of exhausted
// streams hold the last variant read.
func (e *Engine) Cursors() []bim.Variant {
	return e.cur
}

// Done returns true once any stream has reached end of input.
func (e *Engine) Done() bool {
	for _, ex := range e.exhausted {
		if ex {
			return true
		}
	}
	return false
}

// Prime reads the first variant of every stream.
func (e *Engine) Prime() error {
	if e.primed {
		return nil
	}
	e.primed = true
	for i := range e.readers {
		if err := e.advance(i); err != nil {
			return err
		}
	}
	return nil
}

// Run primes the cursors and steps until any stream is exhausted.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	if err := e.Prime(); err != nil {
		return e.stats, err
	}

	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return e.stats, err
		}
		if err := e.Step(); err != nil {
			return e.stats, err
		}
	}

	e.logger.Info("join finished",
		zap.Int("streams", len(e.readers)),
		zap.Int("steps", e.stats.Steps),
		zap.Int("matches", e.stats.Matches),
		zap.Int("conflicts", e.stats.Conflicts),
		zap.Int("reads", e.stats.Reads))

	return e.stats, nil
}

// Step performs one round of the join. If every cursor matches the first,
// the match is logged and all streams advance. Otherwise every stream behind
// the furthest cursor advances by one variant. When all cursors share a locus
// but the alleles conflict, the locus is skipped in every stream.
func (e *Engine) Step() error {
	e.stats.Steps++

	if e.fullMatch() {
		return e.recordMatch()
	}

	m := MaxIndex(e.cur)
	behind := false
	for i := range e.cur {
		if e.exhausted[i] || bim.Compare(&e.cur[i], &e.cur[m]) >= 0 {
			continue
		}
		behind = true
		if err := e.advance(i); err != nil {
			return err
		}
	}
	if behind {
		return nil
	}

	e.stats.Conflicts++
	e.logger.Debug("allele conflict", zap.Stringer("reference", &e.cur[0]))
	if err := e.log.RecordMismatch(&e.cur[0]); err != nil {
		return fmt.Errorf("record mismatch: %w", err)
	}
	return e.advanceAll()
}

// fullMatch reports whether every cursor sits at the first cursor's locus
// with compatible alleles.
func (e *Engine) fullMatch() bool {
	first := &e.cur[0]
	for i := 1; i < len(e.cur); i++ {
		if !bim.LocusEqual(first, &e.cur[i]) || !bim.AllelesCompatible(first, &e.cur[i]) {
			return false
		}
	}
	return true
}

func (e *Engine) recordMatch() error {
	e.stats.Matches++

	for i := range e.cur {
		if err := e.log.RecordName(i, e.cur[i].Name); err != nil {
			return fmt.Errorf("record name for stream %d: %w", i+1, err)
		}
	}
	if err := e.log.RecordMatch(Consensus(e.cur)); err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	return e.advanceAll()
}

func (e *Engine) advanceAll() error {
	for i := range e.readers {
		if e.exhausted[i] {
			continue
		}
		if err := e.advance(i); err != nil {
			return err
		}
	}
	return nil
}

// advance reads the next variant of stream i. At end of input the slot
// keeps its last value and the stream is marked exhausted.
func (e *Engine) advance(i int) error {
	v, err := e.readers[i].Next()
	if err != nil {
		return fmt.Errorf("stream %d: %w", i+1, err)
	}
	if v == nil {
		e.exhausted[i] = true
		return nil
	}
	e.cur[i] = *v
	e.stats.Reads++
	return nil
}

// MaxIndex returns the index of the furthest variant by (chromosome,
// position). Ties go to the first occurrence.
func MaxIndex(vs []bim.Variant) int {
	m := 0
	for i := 1; i < len(vs); i++ {
		if bim.Compare(&vs[i], &vs[m]) > 0 {
			m = i
		}
	}
	return m
}

// Consensus picks the variant written for a matched locus: the first one with
// both alleles called, or the first variant if none is.
func Consensus(vs []bim.Variant) *bim.Variant {
	for i := range vs {
		if vs[i].Called() {
			return &vs[i]
		}
	}
	return &vs[0]
}
