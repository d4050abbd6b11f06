// Package bim provides PLINK .bim variant parsing and formatting.
package bim

// VariantReader is the interface for sorted streams of .bim variants.
type VariantReader interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
