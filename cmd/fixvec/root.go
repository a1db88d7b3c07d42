package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/fixvec/internal/config"
	"github.com/arloliu/fixvec/internal/ingest"
	"github.com/arloliu/fixvec/internal/logging"
)

// app carries the settings resolved before a subcommand runs.
type app struct {
	configPath string
	envFile    string

	cfg    config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "fixvec",
		Short:        "Encode numeric series as compact fixed-point vectors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with FIXVEC_* overrides, ignored when missing")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.Int("bit-width", 0, "component width: 8, 16, 32 or 64")
	pf.Int("precision", 0, "fractional digits kept, -1 detects them from the input")
	pf.String("compression", "", "backend name, none leaves vectors uncompressed")
	pf.String("delimiter", "", "column delimiter of the input file")
	pf.Int("y-column", 0, "zero-based column holding the values")
	pf.Int("truncate", 0, "read at most this many samples, 0 reads all")

	root.AddCommand(newEncodeCmd(a), newDownsampleCmd(a), newMethodsCmd(a))

	return root
}

// load resolves the configuration in increasing priority: defaults, config
// file, .env file, environment, command-line flags.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}

	overrideString(cmd, "log-level", &cfg.Log.Level)
	overrideString(cmd, "log-format", &cfg.Log.Format)
	overrideString(cmd, "method", &cfg.Pipeline.Method)
	overrideString(cmd, "compression", &cfg.Pipeline.Compression)
	overrideString(cmd, "view", &cfg.Pipeline.View)
	overrideString(cmd, "delimiter", &cfg.Input.Delimiter)
	for name, dst := range map[string]*int{
		"n-out":     &cfg.Pipeline.NOut,
		"bit-width": &cfg.Pipeline.BitWidth,
		"precision": &cfg.Pipeline.Precision,
		"x-column":  &cfg.Input.XColumn,
		"y-column":  &cfg.Input.YColumn,
		"truncate":  &cfg.Input.Truncate,
	} {
		if err := overrideInt(cmd, name, dst); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfg.Log.Format == "json" {
		a.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), level)
	} else {
		a.logger = logging.NewTextLogger(cmd.ErrOrStderr(), level)
	}
	a.cfg = cfg

	return nil
}

// ingestOptions returns the reader settings. Validate has already checked the delimiter.
func (a *app) ingestOptions() ingest.Options {
	delim, _ := a.cfg.Delimiter()

	return ingest.Options{
		Delimiter: delim,
		XColumn:   a.cfg.Input.XColumn,
		YColumn:   a.cfg.Input.YColumn,
		Truncate:  a.cfg.Input.Truncate,
	}
}

// precision resolves config.AutoPrecision against the digits found in the input.
func (a *app) precision(decimals int) int {
	if a.cfg.Pipeline.Precision == config.AutoPrecision {
		a.logger.Debug("detected precision", slog.Int("precision", decimals))
		return decimals
	}

	return a.cfg.Pipeline.Precision
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) error {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}

	n, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = n

	return nil
}
