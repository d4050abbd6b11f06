package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/bim-inner-join/internal/duckdb"
	"github.com/inodb/bim-inner-join/internal/output"
)

const (
	cohortA = "1\trs1\t0\t100\tA\tG\n" +
		"1\trs2\t0\t200\tC\t0\n" +
		"1\trs3\t0\t300\tA\tC\n" +
		"2\trs4\t0\t50\tG\tT\n"
	cohortB = "1\tsnp1\t0\t100\tG\tA\n" +
		"1\tsnp2\t0\t200\tC\tT\n" +
		"1\tsnp3\t0\t300\tG\tT\n" +
		"2\tsnp4\t0\t60\tG\tT\n"
)

// setup isolates viper and the home directory, and writes the inputs.
func setup(t *testing.T, inputs ...string) (dir string, paths []string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	dir = t.TempDir()
	for i, content := range inputs {
		path := filepath.Join(dir, "in"+string(rune('a'+i))+".bim")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return dir, paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_Join(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	code := run(append([]string{"-o", out}, paths...))
	require.Equal(t, ExitSuccess, code)

	assert.Equal(t, "rs1\nrs2\n", readFile(t, output.NamesPath(out, "bij", 0)))
	assert.Equal(t, "snp1\nsnp2\n", readFile(t, output.NamesPath(out, "bij", 1)))
	assert.Equal(t, "1\trs1\t0\t100\tA\tG\n1\tsnp2\t0\t200\tC\tT\n",
		readFile(t, output.MatchesPath(out, "bij")))
	assert.Empty(t, readFile(t, output.MismatchesPath(out, "bij")))
}

func TestRun_Idempotent(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)

	args := append([]string{"-o", dir, "--prefix", "again"}, paths...)
	require.Equal(t, ExitSuccess, run(args))
	first := readFile(t, output.MatchesPath(dir, "again"))
	firstNames := readFile(t, output.NamesPath(dir, "again", 1))

	viper.Reset()
	require.Equal(t, ExitSuccess, run(args))
	assert.Equal(t, first, readFile(t, output.MatchesPath(dir, "again")))
	assert.Equal(t, firstNames, readFile(t, output.NamesPath(dir, "again", 1)))
}

func TestRun_RecordMismatches(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)

	code := run(append([]string{"-o", dir, "--record-mismatches"}, paths...))
	require.Equal(t, ExitSuccess, code)

	// 1:300 has A/C against G/T.
	assert.Equal(t, "1\trs3\t0\t300\tA\tC\n", readFile(t, output.MismatchesPath(dir, "bij")))
}

func TestRun_Usage(t *testing.T) {
	dir, paths := setup(t, cohortA)

	assert.Equal(t, ExitError, run([]string{"-o", dir}))
	assert.Equal(t, ExitError, run(append([]string{"-o", dir}, paths...)))

	_, err := os.Stat(output.MatchesPath(dir, "bij"))
	assert.True(t, os.IsNotExist(err), "no output is created on usage errors")
}

func TestRun_MissingInput(t *testing.T) {
	dir, paths := setup(t, cohortA)

	code := run([]string{"-o", dir, paths[0], filepath.Join(dir, "missing.bim")})
	assert.Equal(t, ExitError, code)
}

func TestRun_UnwritableOutput(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)

	code := run(append([]string{"-o", filepath.Join(dir, "no", "such", "dir")}, paths...))
	assert.Equal(t, ExitError, code)
}

func TestRun_ConfigFile(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)

	cfg := filepath.Join(dir, "bij.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output-dir: "+dir+"\nprefix: fromcfg\n"), 0o644))

	code := run(append([]string{"--config", cfg}, paths...))
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "rs1\nrs2\n", readFile(t, output.NamesPath(dir, "fromcfg", 0)))
}

func TestRun_Env(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)
	t.Setenv("BIJ_OUTPUT_DIR", dir)
	t.Setenv("BIJ_PREFIX", "fromenv")

	require.Equal(t, ExitSuccess, run(paths))
	assert.Equal(t, "snp1\nsnp2\n", readFile(t, output.NamesPath(dir, "fromenv", 1)))
}

func TestRunJoin_DuckDB(t *testing.T) {
	dir, paths := setup(t, cohortA, cohortB)
	dbPath := filepath.Join(dir, "join.duckdb")

	opts := joinOptions{OutputDir: dir, Prefix: "db", DBPath: dbPath, RecordMismatches: true}
	require.NoError(t, runJoin(context.Background(), paths, opts, zap.NewNop()))
	// A rerun replaces the previous results.
	require.NoError(t, runJoin(context.Background(), paths, opts, zap.NewNop()))

	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.MatchCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.MismatchCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	names, err := store.NamesForStream(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"snp1", "snp2"}, names)

	inputs, err := store.Inputs()
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, paths[0], inputs[0].Path)
	assert.Equal(t, int64(len(cohortA)), inputs[0].Size)
}

func TestConfigCmd(t *testing.T) {
	setup(t)
	home := os.Getenv("HOME")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "set", "record-mismatches", "yes"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Set record-mismatches = yes")

	data := readFile(t, filepath.Join(home, configName+".yaml"))
	assert.Contains(t, data, "record-mismatches: true")

	buf.Reset()
	root.SetArgs([]string{"config", "get", "record-mismatches"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "true\n", buf.String())

	root.SetArgs([]string{"config", "get", "no-such-key"})
	assert.Error(t, root.Execute())
}
