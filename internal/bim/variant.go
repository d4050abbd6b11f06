// Package bim provides PLINK .bim variant parsing and formatting.
package bim

import "fmt"

// Sentinel is the allele code PLINK writes for a missing or monomorphic call.
// It never counts as a concrete allele.
const Sentinel = "0"

// Variant represents a single record from a .bim file.
type Variant struct {
	Chrom   uint32 // Chromosome code (PLINK numbering, X=23, Y=24, XY=25, MT=26)
	Name    string // Variant identifier, unique within its file (e.g., rs ID)
	Pos     uint32 // Base-pair coordinate
	Allele1 string // First allele, or Sentinel
	Allele2 string // Second allele, or Sentinel
}

// Called returns true if neither allele is the sentinel.
func (v *Variant) Called() bool {
	return v.Allele1 != Sentinel && v.Allele2 != Sentinel
}

// String formats the variant for log and debug output.
func (v *Variant) String() string {
	return fmt.Sprintf("<Variant %s chr%d:%d, [%s, %s]>", v.Name, v.Chrom, v.Pos, v.Allele1, v.Allele2)
}

// Compare orders variants by (chromosome, position).
// It returns -1 if a sorts before b, +1 if after, and 0 at the same locus.
func Compare(a, b *Variant) int {
	switch {
	case a.Chrom < b.Chrom:
		return -1
	case a.Chrom > b.Chrom:
		return 1
	case a.Pos < b.Pos:
		return -1
	case a.Pos > b.Pos:
		return 1
	}
	return 0
}

// LocusEqual returns true if both variants sit at the same chromosome and position.
func LocusEqual(a, b *Variant) bool {
	return a.Chrom == b.Chrom && a.Pos == b.Pos
}

// AllelesCompatible reports whether the two variants can describe the same
// biallelic site: the non-sentinel alleles of both sides together must have at
// most two distinct values. A/0 is compatible with G/A but not with T/G.
//
// The result is only meaningful for locus-equal variants.
func AllelesCompatible(a, b *Variant) bool {
	var seen [4]string
	n := 0
	for _, allele := range [...]string{a.Allele1, a.Allele2, b.Allele1, b.Allele2} {
		if allele == Sentinel {
			continue
		}
		dup := false
		for _, s := range seen[:n] {
			if s == allele {
				dup = true
				break
			}
		}
		if !dup {
			seen[n] = allele
			n++
		}
	}
	return n <= 2
}
