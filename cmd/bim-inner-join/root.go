package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/bim-inner-join/internal/output"
)

// errUsage signals that the usage text was printed and the run should fail.
var errUsage = errors.New("usage error")

// Config keys, shared by flags, the config file and BIJ_* environment variables.
const (
	keyOutputDir        = "output-dir"
	keyPrefix           = "prefix"
	keyDB               = "db"
	keyRecordMismatches = "record-mismatches"
	keyVerbose          = "verbose"
)

const configName = ".bim-inner-join"

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "bim-inner-join [flags] file1.bim file2.bim [...]",
		Short: "Inner join of sorted PLINK .bim files",
		Long: `Find the variants present in every input .bim file.

Inputs must be sorted by chromosome and position. A locus matches when it is
present in every file and the alleles agree (at most two distinct alleles
across all files, "0" counting as unknown). For each input i the names of the
matched variants are written to <prefix>_names_<i>.txt, and one line per
matched locus goes to <prefix>_matches.bim.`,
		Example: `  bim-inner-join cohort1.bim cohort2.bim
  bim-inner-join -o joined --prefix run1 a.bim b.bim.gz c.bim
  bim-inner-join --db joined.duckdb a.bim b.bim`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				cmd.Usage()
				return errUsage
			}

			logger, err := newLogger(viper.GetBool(keyVerbose))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			return runJoin(cmd.Context(), args, loadJoinOptions(), logger)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configName+".yaml)")
	pf.BoolP(keyVerbose, "v", false, "Log every allele conflict")

	f := cmd.Flags()
	f.StringP(keyOutputDir, "o", ".", "Directory for the output files")
	f.String(keyPrefix, output.DefaultPrefix, "File name prefix of the output files")
	f.String(keyDB, "", "Also store results in this DuckDB database")
	f.Bool(keyRecordMismatches, false, "Write loci whose alleles conflict to <prefix>_mismatches.bim")

	viper.BindPFlag(keyVerbose, pf.Lookup(keyVerbose))
	for _, key := range []string{keyOutputDir, keyPrefix, keyDB, keyRecordMismatches} {
		viper.BindPFlag(key, f.Lookup(key))
	}

	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment. A missing default config
// file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BIJ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultConfigPath returns the config file written by "config set".
func defaultConfigPath() (string, error) {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func loadJoinOptions() joinOptions {
	return joinOptions{
		OutputDir:        viper.GetString(keyOutputDir),
		Prefix:           viper.GetString(keyPrefix),
		DBPath:           viper.GetString(keyDB),
		RecordMismatches: viper.GetBool(keyRecordMismatches),
	}
}

// newLogger builds a console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
