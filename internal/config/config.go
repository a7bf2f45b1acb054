// Package config loads service settings from the environment and optional
// .env files. Every variable carries the DYNAFORM_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-dynaform/internal/logging"
	"github.com/goliatone/go-dynaform/pkg/form"
)

// Prefix is prepended to every variable name.
const Prefix = "DYNAFORM_"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed into Config.
	ErrParsingConfig = errors.New("config: failed to parse environment")
	// ErrInvalidConfig is returned when parsed values are out of range.
	ErrInvalidConfig = errors.New("config: invalid value")
)

// Config holds the service settings.
type Config struct {
	Addr              string        `env:"ADDR" envDefault:":8080"`
	FormPath          string        `env:"FORM"`
	OpenAPIPath       string        `env:"OPENAPI"`
	OpenAPIOperation  string        `env:"OPENAPI_OPERATION"`
	Timing            string        `env:"TIMING" envDefault:"change"`
	SubmitDelay       time.Duration `env:"SUBMIT_DELAY" envDefault:"2s"`
	Theme             string        `env:"THEME" envDefault:"dynaform"`
	ThemeVariant      string        `env:"THEME_VARIANT" envDefault:"light"`
	TemplatesDir      string        `env:"TEMPLATES_DIR"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Log               Log           `envPrefix:"LOG_"`
}

// Log mirrors logging.Config.
type Log struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

// Load reads the given .env files (".env" when none are named), overlays the
// process environment and parses the result. Missing files are skipped;
// variables already set in the process win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	environ := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
		for k, v := range values {
			environ[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return Parse(environ)
}

// Parse builds a Config from an explicit environment map.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: environ,
		Prefix:      Prefix,
	}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	if _, err := form.ParseTiming(c.Timing); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, Prefix+"TIMING", err)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, Prefix+"SUBMIT_DELAY")
	}
	if c.OpenAPIOperation != "" && c.OpenAPIPath == "" {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidConfig, Prefix+"OPENAPI_OPERATION", Prefix+"OPENAPI")
	}
	if c.FormPath != "" && c.OpenAPIPath != "" {
		return fmt.Errorf("%w: %s and %s are mutually exclusive", ErrInvalidConfig, Prefix+"FORM", Prefix+"OPENAPI")
	}
	return nil
}

// FormTiming returns the parsed timing strategy.
func (c Config) FormTiming() form.Timing {
	t, err := form.ParseTiming(c.Timing)
	if err != nil {
		return form.OnChange
	}
	return t
}

// Logging converts the log section for the logging package.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		FilePath:   c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}
