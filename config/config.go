// Package config loads engine settings from command-line flags, GRENDEL_*
// environment variables and an optional config file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigSearchTime            = "search-time"
	ConfigSeed                  = "seed"
	ConfigIterations            = "iterations"
	ConfigWorkers               = "workers"
	ConfigMaxRolloutPlies       = "max-rollout-plies"
	ConfigExploration           = "exploration"
	ConfigSideRelativeSelection = "side-relative-selection"
	ConfigUseClock              = "use-clock"
	ConfigReportInfo            = "report-info"
	ConfigDiagnosticLog         = "diagnostic-log"
	ConfigLogLevel              = "log-level"
	ConfigEngineName            = "engine-name"
	ConfigEngineAuthor          = "engine-author"
	ConfigFile                  = "config"
)

const envPrefix = "GRENDEL"

type Config struct {
	*viper.Viper
}

// Load parses args (without the program name) and merges them with the
// environment and the config file named by --config, if any.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("grendel", pflag.ContinueOnError)
	fs.Duration(ConfigSearchTime, 5*time.Second, "search time per move when the clock is not used")
	fs.Uint64(ConfigSeed, 0, "rollout random seed, 0 picks a fresh seed per search")
	fs.Int(ConfigIterations, 0, "iteration cap per search, 0 for no cap")
	fs.Int(ConfigWorkers, 1, "independent search trees run in parallel")
	fs.Int(ConfigMaxRolloutPlies, 0, "score rollouts longer than this as draws, 0 for no limit")
	fs.Float64(ConfigExploration, 2.0, "UCT exploration constant (c squared)")
	fs.Bool(ConfigSideRelativeSelection, false, "let Black minimise White's score during selection")
	fs.Bool(ConfigUseClock, false, "derive the budget from wtime/btime instead of search-time")
	fs.Bool(ConfigReportInfo, false, "send an info line before bestmove")
	fs.String(ConfigDiagnosticLog, "engine_debug.log", "file that mirrors protocol traffic, empty to disable")
	fs.String(ConfigLogLevel, "info", "stderr log level")
	fs.String(ConfigEngineName, "Grendel.MCTS.2.024", "name sent in the uci reply")
	fs.String(ConfigEngineAuthor, "Sreek", "author sent in the uci reply")
	fs.String(ConfigFile, "", "optional config file (yaml, json or toml)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(ConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	c := &Config{Viper: v}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.SearchTime() <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", ConfigSearchTime))
	}
	if c.Iterations() < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", ConfigIterations))
	}
	if c.Workers() < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", ConfigWorkers))
	}
	if c.MaxRolloutPlies() < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", ConfigMaxRolloutPlies))
	}
	if c.Exploration() <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", ConfigExploration))
	}
	if _, err := zerolog.ParseLevel(c.GetString(ConfigLogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ConfigLogLevel, err))
	}
	return errors.Join(errs...)
}

func (c *Config) SearchTime() time.Duration { return c.GetDuration(ConfigSearchTime) }
func (c *Config) Seed() uint64              { return c.GetUint64(ConfigSeed) }
func (c *Config) Iterations() int           { return c.GetInt(ConfigIterations) }
func (c *Config) Workers() int              { return c.GetInt(ConfigWorkers) }
func (c *Config) MaxRolloutPlies() int      { return c.GetInt(ConfigMaxRolloutPlies) }
func (c *Config) Exploration() float64      { return c.GetFloat64(ConfigExploration) }
func (c *Config) SideRelativeSelection() bool {
	return c.GetBool(ConfigSideRelativeSelection)
}
func (c *Config) UseClock() bool          { return c.GetBool(ConfigUseClock) }
func (c *Config) ReportInfo() bool        { return c.GetBool(ConfigReportInfo) }
func (c *Config) DiagnosticLog() string   { return c.GetString(ConfigDiagnosticLog) }
func (c *Config) EngineName() string      { return c.GetString(ConfigEngineName) }
func (c *Config) EngineAuthor() string    { return c.GetString(ConfigEngineAuthor) }

// LogLevel falls back to info for an unparsable level; Validate reports it.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.GetString(ConfigLogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
