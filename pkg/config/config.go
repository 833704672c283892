// Package config loads the settings of the promisematchers
// command from flags, environment variables and an optional
// configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"digital.vasic.promisematchers/pkg/logging"
)

// EnvPrefix prefixes the environment variables that override
// configuration keys, e.g. PROMISEMATCHERS_LOG_LEVEL.
const EnvPrefix = "PROMISEMATCHERS"

const (
	defTimeout     = 5 * time.Second
	defConcurrency = 4
	defLogLevel    = logging.LevelInfo
	defLogFormat   = FormatConsole
	defReport      = FormatConsole
)

// Format selects console or JSON output.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// UnmarshalText accepts "console" and "json", case-insensitively.
func (f *Format) UnmarshalText(text []byte) error {
	switch s := Format(strings.ToLower(string(text))); s {
	case FormatConsole, FormatJSON:
		*f = s
		return nil
	}
	return fmt.Errorf("unknown format %q", text)
}

// Config holds the command settings.
type Config struct {
	// Timeout bounds how long a scenario waits for its promise
	// to settle.
	Timeout time.Duration `mapstructure:"timeout"`

	// Concurrency is the number of scenarios evaluated at once.
	Concurrency int `mapstructure:"concurrency"`

	Log struct {
		Level  logging.LogLevel `mapstructure:"level"`
		Format Format           `mapstructure:"format"`
	} `mapstructure:"log"`

	Report struct {
		Format  Format `mapstructure:"format"`
		NoColor bool   `mapstructure:"no_color"`
	} `mapstructure:"report"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var c Config
	c.Timeout = defTimeout
	c.Concurrency = defConcurrency
	c.Log.Level = defLogLevel
	c.Log.Format = defLogFormat
	c.Report.Format = defReport
	return &c
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"timeout":     "timeout",
	"concurrency": "concurrency",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"format":      "report.format",
	"no-color":    "report.no_color",
}

// RegisterFlags adds the configuration flags to f.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config-file", "", "``configuration file (YAML)")
	f.Duration("timeout", defTimeout, "``wait duration for each promise to settle")
	f.Int("concurrency", defConcurrency, "``number of scenarios evaluated at once")
	f.String("log-level", defLogLevel.String(), "``severity level of logging messages")
	f.String("log-format", string(defLogFormat), "``log output format (console|json)")
	f.String("format", string(defReport), "``report format (console|json)")
	f.Bool("no-color", false, "disable colored output")
}

// Load resolves the configuration from the flags registered with
// RegisterFlags, the PROMISEMATCHERS_* environment and the file
// named by --config-file, in that order of precedence.
func Load(f *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("log.level", defaults.Log.Level.String())
	v.SetDefault("log.format", string(defaults.Log.Format))
	v.SetDefault("report.format", string(defaults.Report.Format))
	v.SetDefault("report.no_color", defaults.Report.NoColor)

	for name, key := range flagKeys {
		flag := f.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := f.Lookup("config-file"); file != nil && file.Value.String() != "" {
		v.SetConfigFile(file.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
	}

	options := []viper.DecoderConfigOption{
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		)),
	}

	var config Config
	if err := v.UnmarshalExact(&config, options...); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}
