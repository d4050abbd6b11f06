package bim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Columns of a .bim line.
const (
	ColChrom = iota
	ColName
	ColCentimorgan
	ColPos
	ColAllele1
	ColAllele2
	NumColumns
)

// Parser reads variants from a .bim file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	path       string
	lineNumber int
}

// NewParser creates a new .bim parser for the given file.
// Supports both plain and gzipped (.bim.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bim file: %w", err)
	}

	p := &Parser{file: file, path: path}

	// Check for gzip magic bytes; an empty file is a valid, empty stream.
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read bim file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek bim file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next variant from the .bim file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read bim line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return nil, nil
			}
			continue // Skip empty lines
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single whitespace-delimited .bim line into a Variant.
// Lines with fewer than six fields yield a partially populated variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Fields(line)
	v := &Variant{}

	chrom, err := ParseChrom(fields[ColChrom])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}
	v.Chrom = chrom

	if len(fields) > ColName {
		v.Name = fields[ColName]
	}
	if len(fields) > ColPos {
		pos, err := strconv.ParseUint(fields[ColPos], 10, 32)
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("invalid position: %s", fields[ColPos]),
			}
		}
		v.Pos = uint32(pos)
	}
	if len(fields) > ColAllele1 {
		v.Allele1 = fields[ColAllele1]
	}
	if len(fields) > ColAllele2 {
		v.Allele2 = fields[ColAllele2]
	}

	return v, nil
}

// ParseChrom converts a .bim chromosome code to its PLINK number.
// Numeric codes pass through; X, Y, XY and MT map to 23-26.
func ParseChrom(s string) (uint32, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), nil
	}

	name := strings.ToUpper(s)
	if len(name) > 3 && name[:3] == "CHR" {
		name = name[3:]
		if n, err := strconv.ParseUint(name, 10, 32); err == nil {
			return uint32(n), nil
		}
	}

	switch name {
	case "X":
		return 23, nil
	case "Y":
		return 24, nil
	case "XY":
		return 25, nil
	case "MT", "M":
		return 26, nil
	}
	return 0, fmt.Errorf("invalid chromosome: %s", s)
}

// Path returns the file path the parser reads from, or "" for a reader.
func (p *Parser) Path() string {
	return p.path
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during .bim parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bim parse error at line %d: %s", e.Line, e.Message)
}
