package duckdb

import (
	"database/sql/driver"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// WriteInputs records the fingerprints of the joined files, numbered from 1
// in argument order.
func (s *Store) WriteInputs(inputs []FileFingerprint) error {
	rows := make([][]driver.Value, len(inputs))
	for i, fp := range inputs {
		rows[i] = []driver.Value{int64(i + 1), fp.Path, fp.Size, fp.ModTime.UTC()}
	}
	if err := s.appendRows("inputs", rows); err != nil {
		return fmt.Errorf("write inputs: %w", err)
	}
	return nil
}

// Inputs returns the recorded input fingerprints in stream order.
func (s *Store) Inputs() ([]FileFingerprint, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time FROM inputs ORDER BY stream`)
	if err != nil {
		return nil, fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()

	var out []FileFingerprint
	for rows.Next() {
		var fp FileFingerprint
		if err := rows.Scan(&fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inputs: %w", err)
	}
	return out, nil
}
