package bim

import (
	"bufio"
	"io"
	"strconv"
)

// Writer writes variants as .bim lines. The centimorgan column is always
// written as "0".
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a new .bim writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes a single variant line.
func (bw *Writer) Write(v *Variant) error {
	buf := make([]byte, 0, 64)
	buf = strconv.AppendUint(buf, uint64(v.Chrom), 10)
	buf = append(buf, '\t')
	buf = append(buf, v.Name...)
	buf = append(buf, "\t0\t"...)
	buf = strconv.AppendUint(buf, uint64(v.Pos), 10)
	buf = append(buf, '\t')
	buf = append(buf, v.Allele1...)
	buf = append(buf, '\t')
	buf = append(buf, v.Allele2...)
	buf = append(buf, '\n')

	_, err := bw.w.Write(buf)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (bw *Writer) Flush() error {
	return bw.w.Flush()
}
