// Package config loads the optional YAML configuration file and applies
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v3"

	"github.com/julianstephens/versecue/internal/calendar"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/selector"
)

// Environment overrides, applied after the file.
const (
	EnvTimezone = "VERSECUE_TIMEZONE"
	EnvDatabase = "VERSECUE_DB"
	EnvDebug    = "VERSECUE_DEBUG"
	EnvHash     = "VERSECUE_HASH"
)

type Config struct {
	Timezone string         `yaml:"timezone"`
	Database string         `yaml:"database"`
	StateDir string         `yaml:"state_dir"`
	Probe    ProbeConfig    `yaml:"probe"`
	Selector SelectorConfig `yaml:"selector"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Log      LogConfig      `yaml:"log"`
}

type ProbeConfig struct {
	MinHours    int `yaml:"min_hours"`
	MaxHours    int `yaml:"max_hours"`
	StepMinutes int `yaml:"step_minutes"`
}

type SelectorConfig struct {
	Hash            string `yaml:"hash"`
	WindowStartHour int    `yaml:"window_start_hour"`
}

// DispatchConfig durations are Go duration strings ("1m", "30m").
type DispatchConfig struct {
	Interval      string  `yaml:"interval"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	GracePeriod   string  `yaml:"grace_period"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Timezone: constants.DefaultTimezone,
		Database: constants.DefaultDBPath,
		StateDir: constants.DefaultConfigDir,
		Probe: ProbeConfig{
			MinHours:    constants.DefaultProbeMinHours,
			MaxHours:    constants.DefaultProbeMaxHours,
			StepMinutes: constants.DefaultProbeStepMinutes,
		},
		Selector: SelectorConfig{
			Hash:            "fnv1a",
			WindowStartHour: constants.MiddayWindowStartHour,
		},
		Dispatch: DispatchConfig{
			Interval:      constants.DefaultDispatchInterval.String(),
			RatePerSecond: constants.DefaultDispatchRate,
			Burst:         constants.DefaultDispatchBurst,
			GracePeriod:   constants.DefaultGracePeriod.String(),
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(expanded)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
		default:
			if err := decode(b, cfg); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", expanded, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys; an empty document leaves cfg unchanged.
func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvTimezone)); v != "" {
		c.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		c.Database = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHash)); v != "" {
		c.Selector.Hash = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Log.Debug = debug
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := calendar.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if err := c.ProbeRange().Validate(); err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	if _, err := selector.HashByName(c.Selector.Hash); err != nil {
		return fmt.Errorf("selector.hash: %w", err)
	}
	if h := c.Selector.WindowStartHour; h < 0 || h+constants.MiddayWindowHours > 24 {
		return fmt.Errorf("selector.window_start_hour %d out of range", h)
	}
	if _, err := c.DispatchInterval(); err != nil {
		return err
	}
	if _, err := c.GracePeriod(); err != nil {
		return err
	}
	if c.Dispatch.RatePerSecond < 0 {
		return errors.New("dispatch.rate_per_second must be >= 0")
	}
	if c.Dispatch.Burst < 0 {
		return errors.New("dispatch.burst must be >= 0")
	}
	return nil
}

func (c *Config) ProbeRange() calendar.ProbeRange {
	return calendar.ProbeRange{
		MinHours:    c.Probe.MinHours,
		MaxHours:    c.Probe.MaxHours,
		StepMinutes: c.Probe.StepMinutes,
	}
}

// Calendar builds the calendar for the configured zone and probe range.
func (c *Config) Calendar() (*calendar.Calendar, error) {
	return calendar.New(c.Timezone, calendar.WithProbeRange(c.ProbeRange()))
}

// NewSelector builds the selector for the configured hash and window.
func (c *Config) NewSelector() (selector.Selector, error) {
	hash, err := selector.HashByName(c.Selector.Hash)
	if err != nil {
		return selector.Selector{}, err
	}
	return selector.New(hash, selector.WithWindow(c.Selector.WindowStartHour, constants.MiddayWindowHours)), nil
}

func (c *Config) DispatchInterval() (time.Duration, error) {
	return ParseDurationOrDefault("dispatch.interval", c.Dispatch.Interval, constants.DefaultDispatchInterval)
}

func (c *Config) GracePeriod() (time.Duration, error) {
	return ParseDurationOrDefault("dispatch.grace_period", c.Dispatch.GracePeriod, constants.DefaultGracePeriod)
}

// ResolvedStateDir returns StateDir with ~ expanded.
func (c *Config) ResolvedStateDir() (string, error) {
	return ExpandPath(c.StateDir)
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
