// Package output provides the on-disk destinations of a join.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inodb/bim-inner-join/internal/bim"
)

// DefaultPrefix is the file name prefix of every output file.
const DefaultPrefix = "bij"

// NamesPath returns the path of the matched-names list for stream i (0-based).
// Files are numbered from 1.
func NamesPath(dir, prefix string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_names_%d.txt", prefix, i+1))
}

// MatchesPath returns the path of the consolidated matches .bim file.
func MatchesPath(dir, prefix string) string {
	return filepath.Join(dir, prefix+"_matches.bim")
}

// MismatchesPath returns the path of the mismatches .bim file.
func MismatchesPath(dir, prefix string) string {
	return filepath.Join(dir, prefix+"_mismatches.bim")
}

// FileLogger writes join results to one names file per input stream plus
// the matches and mismatches .bim files.
type FileLogger struct {
	files      []*os.File
	names      []*bufio.Writer
	matches    *bim.Writer
	mismatches *bim.Writer

	recordMismatches bool
}

// NewFileLogger creates (truncating) every output file for n streams in dir.
// Mismatches are only written when recordMismatches is set; the file is
// created either way.
func NewFileLogger(dir, prefix string, n int, recordMismatches bool) (*FileLogger, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	fl := &FileLogger{recordMismatches: recordMismatches}

	for i := 0; i < n; i++ {
		f, err := fl.create(NamesPath(dir, prefix, i))
		if err != nil {
			return nil, err
		}
		fl.names = append(fl.names, bufio.NewWriter(f))
	}

	f, err := fl.create(MatchesPath(dir, prefix))
	if err != nil {
		return nil, err
	}
	fl.matches = bim.NewWriter(f)

	f, err = fl.create(MismatchesPath(dir, prefix))
	if err != nil {
		return nil, err
	}
	fl.mismatches = bim.NewWriter(f)

	return fl, nil
}

// create opens path for writing. On failure every file opened so far is
// closed.
func (fl *FileLogger) create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		fl.closeFiles()
		return nil, fmt.Errorf("could not write to %s: %w", path, err)
	}
	fl.files = append(fl.files, f)
	return f, nil
}

// RecordName appends name to the list of stream.
func (fl *FileLogger) RecordName(stream int, name string) error {
	if stream < 0 || stream >= len(fl.names) {
		return fmt.Errorf("stream %d out of range", stream+1)
	}
	w := fl.names[stream]
	if _, err := w.WriteString(name); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// RecordMatch writes v to the matches file.
func (fl *FileLogger) RecordMatch(v *bim.Variant) error {
	return fl.matches.Write(v)
}

// RecordMismatch writes v to the mismatches file if mismatch recording is on.
func (fl *FileLogger) RecordMismatch(v *bim.Variant) error {
	if !fl.recordMismatches {
		return nil
	}
	return fl.mismatches.Write(v)
}

// Flush flushes all buffered output.
func (fl *FileLogger) Flush() error {
	var errs []error
	for _, w := range fl.names {
		errs = append(errs, w.Flush())
	}
	if fl.matches != nil {
		errs = append(errs, fl.matches.Flush())
	}
	if fl.mismatches != nil {
		errs = append(errs, fl.mismatches.Flush())
	}
	return errors.Join(errs...)
}

// Close flushes and closes every output file.
func (fl *FileLogger) Close() error {
	err := fl.Flush()
	return errors.Join(err, fl.closeFiles())
}

func (fl *FileLogger) closeFiles() error {
	var errs []error
	for _, f := range fl.files {
		errs = append(errs, f.Close())
	}
	fl.files = nil
	return errors.Join(errs...)
}
