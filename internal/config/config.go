// Package config loads CLI settings from a YAML file, an optional .env file and
// FIXVEC_* environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
	"github.com/arloliu/fixvec/format"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIXVEC_"

// Config holds every CLI setting.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Input    InputConfig    `yaml:"input"`
	Log      LogConfig      `yaml:"log"`
}

// PipelineConfig configures downsampling and encoding.
type PipelineConfig struct {
	Method      string `yaml:"method"`      // downsampler name
	NOut        int    `yaml:"nOut"`        // target sample count
	BitWidth    int    `yaml:"bitWidth"`    // 8, 16, 32 or 64
	Precision   int    `yaml:"precision"`   // fractional digits; -1 detects them from the input
	Compression string `yaml:"compression"` // backend name, "none" disables compression
	View        string `yaml:"view"`        // "compressed" or "decompressed"
}

// InputConfig configures delimited file ingestion.
type InputConfig struct {
	Delimiter string `yaml:"delimiter"`
	XColumn   int    `yaml:"xColumn"`
	YColumn   int    `yaml:"yColumn"`
	Truncate  int    `yaml:"truncate"` // 0 reads every row
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{
			Method:      "minmax-lttb",
			NOut:        1000,
			BitWidth:    64,
			Precision:   4,
			Compression: "bitpack",
			View:        "compressed",
		},
		Input: InputConfig{
			Delimiter: ";",
			XColumn:   0,
			YColumn:   1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty), the .env files (missing files are ignored) and the process
// environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse config %s: %w", errs.ErrConfiguration, path, err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadEnvFiles loads .env files into the process environment without
// overriding variables that are already set.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv overrides settings from FIXVEC_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"METHOD":      &c.Pipeline.Method,
		"COMPRESSION": &c.Pipeline.Compression,
		"VIEW":        &c.Pipeline.View,
		"DELIMITER":   &c.Input.Delimiter,
		"LOG_LEVEL":   &c.Log.Level,
		"LOG_FORMAT":  &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"N_OUT":     &c.Pipeline.NOut,
		"BIT_WIDTH": &c.Pipeline.BitWidth,
		"PRECISION": &c.Pipeline.Precision,
		"X_COLUMN":  &c.Input.XColumn,
		"Y_COLUMN":  &c.Input.YColumn,
		"TRUNCATE":  &c.Input.Truncate,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", errs.ErrConfiguration, EnvPrefix, key, v)
		}
		*dst = n
	}

	return nil
}

// Validate checks the settings that do not depend on registries.
func (c Config) Validate() error {
	if c.Pipeline.NOut <= 0 {
		return fmt.Errorf("%w: nOut %d must be positive", errs.ErrConfiguration, c.Pipeline.NOut)
	}
	if c.Pipeline.Precision != AutoPrecision {
		if err := fixedpoint.ValidateConfig(c.Pipeline.Precision, c.BitWidth()); err != nil {
			return err
		}
	} else if !c.BitWidth().Valid() {
		return fmt.Errorf("%w: bit width %d", errs.ErrConfiguration, c.Pipeline.BitWidth)
	}
	if _, err := c.ViewMode(); err != nil {
		return err
	}
	if _, err := c.Delimiter(); err != nil {
		return err
	}
	if c.Input.XColumn < 0 || c.Input.YColumn < 0 {
		return fmt.Errorf("%w: column indices must be non-negative", errs.ErrConfiguration)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q, want text or json", errs.ErrConfiguration, c.Log.Format)
	}

	return nil
}

// AutoPrecision makes the CLI use the largest number of fractional digits
// found in the input.
const AutoPrecision = -1

// BitWidth returns the configured component width.
func (c Config) BitWidth() format.BitWidth {
	if c.Pipeline.BitWidth < 0 || c.Pipeline.BitWidth > 64 {
		return 0
	}

	return format.BitWidth(c.Pipeline.BitWidth) //nolint:gosec
}

// ViewMode parses the configured view.
func (c Config) ViewMode() (format.ViewMode, error) {
	switch c.Pipeline.View {
	case "compressed", "":
		return format.ViewCompressed, nil
	case "decompressed":
		return format.ViewDecompressed, nil
	default:
		return 0, fmt.Errorf("%w: view %q, want compressed or decompressed", errs.ErrConfiguration, c.Pipeline.View)
	}
}

// Delimiter returns the single-character column separator.
func (c Config) Delimiter() (rune, error) {
	r := []rune(c.Input.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be one character", errs.ErrConfiguration, c.Input.Delimiter)
	}

	return r[0], nil
}
