package join

import "github.com/inodb/bim-inner-join/internal/bim"

// MatchLogger records the outcome of a join.
type MatchLogger interface {
	// RecordName records the name of a matched variant for one input stream.
	RecordName(stream int, name string) error
	// RecordMatch records the consolidated variant for a matched locus.
	RecordMatch(v *bim.Variant) error
	// RecordMismatch records the reference variant of a conflicting locus.
	RecordMismatch(v *bim.Variant) error
}

// MultiLogger fans every record out to several loggers in order.
// It stops at the first error.
type MultiLogger []MatchLogger

// RecordName implements MatchLogger.
func (m MultiLogger) RecordName(stream int, name string) error {
	for _, l := range m {
		if err := l.RecordName(stream, name); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatch implements MatchLogger.
func (m MultiLogger) RecordMatch(v *bim.Variant) error {
	for _, l := range m {
		if err := l.RecordMatch(v); err != nil {
			return err
		}
	}
	return nil
}

// RecordMismatch implements MatchLogger.
func (m MultiLogger) RecordMismatch(v *bim.Variant) error {
	for _, l := range m {
		if err := l.RecordMismatch(v); err != nil {
			return err
		}
	}
	return nil
}
