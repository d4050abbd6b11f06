package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/bim-inner-join/internal/bim"
	"github.com/inodb/bim-inner-join/internal/duckdb"
	"github.com/inodb/bim-inner-join/internal/join"
	"github.com/inodb/bim-inner-join/internal/output"
)

type joinOptions struct {
	OutputDir        string
	Prefix           string
	DBPath           string
	RecordMismatches bool
}

// runJoin opens every input and output, then runs the merge-join to
// completion. All handles are closed before it returns.
func runJoin(ctx context.Context, paths []string, opts joinOptions, logger *zap.Logger) (err error) {
	readers := make([]bim.VariantReader, 0, len(paths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for _, path := range paths {
		logger.Info("opening input", zap.String("path", path))
		r, err := bim.NewParser(path)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", path, err)
		}
		readers = append(readers, r)
	}

	files, err := output.NewFileLogger(opts.OutputDir, opts.Prefix, len(paths), opts.RecordMismatches)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, files.Close())
	}()

	var sink join.MatchLogger = files
	var recorder *duckdb.Recorder
	if opts.DBPath != "" {
		store, err := openStore(opts.DBPath, paths)
		if err != nil {
			return err
		}
		defer store.Close()

		recorder = duckdb.NewRecorder(store, 0)
		recorder.SetRecordMismatches(opts.RecordMismatches)
		sink = join.MultiLogger{files, recorder}
	}

	engine, err := join.NewEngine(readers, sink)
	if err != nil {
		return err
	}
	engine.SetLogger(logger)

	if _, err := engine.Run(ctx); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// openStore opens the DuckDB database, clears any previous run and records
// the fingerprints of the inputs.
func openStore(dbPath string, paths []string) (*duckdb.Store, error) {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Reset(); err != nil {
		store.Close()
		return nil, err
	}

	fps := make([]duckdb.FileFingerprint, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			fps = append(fps, duckdb.FileFingerprint{Path: path})
			continue
		}
		fp, err := duckdb.StatFile(path)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		fps = append(fps, fp)
	}
	if err := store.WriteInputs(fps); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
