package duckdb

import (
	"database/sql/driver"
	"fmt"

	"github.com/inodb/bim-inner-join/internal/bim"
)

// DefaultBatchSize is the number of buffered rows that triggers a write.
const DefaultBatchSize = 10000

// Recorder buffers join results and batch-inserts them into a Store.
// It implements join.MatchLogger.
type Recorder struct {
	store     *Store
	batchSize int

	matches    [][]driver.Value
	mismatches [][]driver.Value
	names      [][]driver.Value

	matchSeq    int64
	mismatchSeq int64
	nameSeq     map[int]int64

	recordMismatches bool
}

// NewRecorder creates a recorder writing to s. A batchSize of 0 uses
// DefaultBatchSize.
func NewRecorder(s *Store, batchSize int) *Recorder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Recorder{
		store:     s,
		batchSize: batchSize,
		nameSeq:   make(map[int]int64),
	}
}

func variantRow(seq int64, v *bim.Variant) []driver.Value {
	return []driver.Value{seq, int64(v.Chrom), v.Name, int64(v.Pos), v.Allele1, v.Allele2}
}

// RecordName buffers a matched name for stream (0-based, stored 1-based).
func (r *Recorder) RecordName(stream int, name string) error {
	seq := r.nameSeq[stream]
	r.nameSeq[stream] = seq + 1
	r.names = append(r.names, []driver.Value{int64(stream + 1), seq, name})
	return r.maybeFlush()
}

// RecordMatch buffers a consolidated match.
func (r *Recorder) RecordMatch(v *bim.Variant) error {
	r.matches = append(r.matches, variantRow(r.matchSeq, v))
	r.matchSeq++
	return r.maybeFlush()
}

// SetRecordMismatches configures whether conflicting loci are stored.
func (r *Recorder) SetRecordMismatches(record bool) {
	r.recordMismatches = record
}

// RecordMismatch buffers the reference variant of a conflicting locus if
// mismatch recording is on.
func (r *Recorder) RecordMismatch(v *bim.Variant) error {
	if !r.recordMismatches {
		return nil
	}
	r.mismatches = append(r.mismatches, variantRow(r.mismatchSeq, v))
	r.mismatchSeq++
	return r.maybeFlush()
}

func (r *Recorder) maybeFlush() error {
	if len(r.matches)+len(r.mismatches)+len(r.names) < r.batchSize {
		return nil
	}
	return r.Flush()
}

// Flush writes all buffered rows.
func (r *Recorder) Flush() error {
	if err := r.store.appendRows("matches", r.matches); err != nil {
		return fmt.Errorf("write matches: %w", err)
	}
	r.matches = r.matches[:0]

	if err := r.store.appendRows("mismatches", r.mismatches); err != nil {
		return fmt.Errorf("write mismatches: %w", err)
	}
	r.mismatches = r.mismatches[:0]

	if err := r.store.appendRows("stream_names", r.names); err != nil {
		return fmt.Errorf("write names: %w", err)
	}
	r.names = r.names[:0]

	return nil
}

// MatchCount returns the number of stored matches.
func (s *Store) MatchCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

// LookupLocus returns the stored matches at a locus.
func (s *Store) LookupLocus(chrom, pos uint32) ([]bim.Variant, error) {
	rows, err := s.db.Query(`SELECT chrom, name, pos, allele1, allele2
		FROM matches
		WHERE chrom=? AND pos=?
		ORDER BY seq`, int64(chrom), int64(pos))
	if err != nil {
		return nil, fmt.Errorf("query locus: %w", err)
	}
	defer rows.Close()

	var out []bim.Variant
	for rows.Next() {
		var c, p int64
		var v bim.Variant
		if err := rows.Scan(&c, &v.Name, &p, &v.Allele1, &v.Allele2); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		v.Chrom, v.Pos = uint32(c), uint32(p)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

// NamesForStream returns the matched names of stream (0-based) in the order
// they were recorded.
func (s *Store) NamesForStream(stream int) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM stream_names WHERE stream=? ORDER BY seq`, int64(stream+1))
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// MismatchCount returns the number of stored conflicting loci.
func (s *Store) MismatchCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mismatches").Scan(&n); err != nil {
		return 0, fmt.Errorf("count mismatches: %w", err)
	}
	return n, nil
}
