package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/bim-inner-join/internal/bim"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileLogger_Paths(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "bij_names_1.txt"), NamesPath("out", "bij", 0))
	assert.Equal(t, filepath.Join("out", "bij_names_12.txt"), NamesPath("out", "bij", 11))
	assert.Equal(t, filepath.Join("out", "run_matches.bim"), MatchesPath("out", "run"))
	assert.Equal(t, filepath.Join("out", "run_mismatches.bim"), MismatchesPath("out", "run"))
}

func TestFileLogger_Write(t *testing.T) {
	dir := t.TempDir()

	fl, err := NewFileLogger(dir, "", 2, false)
	require.NoError(t, err)

	v := &bim.Variant{Chrom: 1, Name: "rs1", Pos: 100, Allele1: "A", Allele2: "G"}
	require.NoError(t, fl.RecordName(0, "rs1"))
	require.NoError(t, fl.RecordName(1, "rs2"))
	require.NoError(t, fl.RecordMatch(v))
	require.NoError(t, fl.RecordMismatch(v))
	assert.Error(t, fl.RecordName(2, "rs3"))
	require.NoError(t, fl.Close())

	assert.Equal(t, "rs1\n", readFile(t, NamesPath(dir, DefaultPrefix, 0)))
	assert.Equal(t, "rs2\n", readFile(t, NamesPath(dir, DefaultPrefix, 1)))
	assert.Equal(t, "1\trs1\t0\t100\tA\tG\n", readFile(t, MatchesPath(dir, DefaultPrefix)))
	assert.Empty(t, readFile(t, MismatchesPath(dir, DefaultPrefix)))
}

func TestFileLogger_RecordMismatches(t *testing.T) {
	dir := t.TempDir()

	fl, err := NewFileLogger(dir, "x", 2, true)
	require.NoError(t, err)
	require.NoError(t, fl.RecordMismatch(&bim.Variant{Chrom: 2, Name: "rs9", Pos: 5, Allele1: "A", Allele2: "0"}))
	require.NoError(t, fl.Close())

	assert.Equal(t, "2\trs9\t0\t5\tA\t0\n", readFile(t, MismatchesPath(dir, "x")))
}

func TestFileLogger_Truncates(t *testing.T) {
	dir := t.TempDir()
	path := MatchesPath(dir, DefaultPrefix)
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	fl, err := NewFileLogger(dir, "", 2, false)
	require.NoError(t, err)
	require.NoError(t, fl.Close())

	assert.Empty(t, readFile(t, path))
}

func TestFileLogger_UnwritableDir(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing"), "", 2, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not write to")
}
