// Package config loads formstate-cli settings from the environment and an
// optional .env file. Command line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into Config.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config holds the CLI settings.
type Config struct {
	Form        string        `env:"FORMSTATE_FORM"`
	OpenAPI     string        `env:"FORMSTATE_OPENAPI"`
	Operation   string        `env:"FORMSTATE_OPERATION"`
	Hydrate     string        `env:"FORMSTATE_HYDRATE"`
	Apply       string        `env:"FORMSTATE_APPLY"`
	Output      string        `env:"FORMSTATE_OUTPUT"`
	Interactive bool          `env:"FORMSTATE_INTERACTIVE" envDefault:"false"`
	GroupSeed   int           `env:"FORMSTATE_GROUP_SEED" envDefault:"1"`
	AllowHTTP   bool          `env:"FORMSTATE_ALLOW_HTTP" envDefault:"false"`
	HTTPTimeout time.Duration `env:"FORMSTATE_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"FORMSTATE_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string        `env:"FORMSTATE_LOG_FORMAT" envDefault:"text"`
}

// Load reads the given .env files (or ./.env when none are named) and then
// parses the process environment. Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}
	return parse(env.Options{Environment: env.ToMap(os.Environ())})
}

// Parse builds a Config from environ alone.
func Parse(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Validate checks that exactly one form source is configured.
func (c Config) Validate() error {
	switch {
	case c.Form == "" && c.OpenAPI == "":
		return fmt.Errorf("%w: a form document or an OpenAPI document is required", ErrInvalidConfig)
	case c.Form != "" && c.OpenAPI != "":
		return fmt.Errorf("%w: form and openapi are mutually exclusive", ErrInvalidConfig)
	case c.OpenAPI != "" && c.Operation == "":
		return fmt.Errorf("%w: an operation id is required with openapi", ErrInvalidConfig)
	case c.GroupSeed < 0:
		return fmt.Errorf("%w: group seed must not be negative", ErrInvalidConfig)
	}
	return nil
}
