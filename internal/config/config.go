// Package config provides Viper-based configuration loading for the
// combat engine and its simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the arena daemon's TCP listener settings.
type ServerConfig struct {
	// Host is the bind address for the line-protocol listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the listener.
	Port int `mapstructure:"port"`
	// WriteTimeout is the per-write timeout for client connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the engine-wide combat tunables.
type CombatConfig struct {
	// RoundDelay is the advisory status re-broadcast interval. It never
	// force-resolves a turn.
	RoundDelay time.Duration `mapstructure:"round_delay"`
	// MaxRounds ends any fight whose round counter exceeds it.
	MaxRounds int `mapstructure:"max_rounds"`
	// AFKGrace is how long an AFK-checked player has to respond before
	// further checks count as eviction votes.
	AFKGrace time.Duration `mapstructure:"afk_grace"`
	// RandomDeaths allows a player character to die the same round it
	// is first incapacitated; when false it always gets a one-round
	// reprieve.
	RandomDeaths bool `mapstructure:"random_deaths"`
}

// ContentConfig points at the data files the engine loads at startup.
type ContentConfig struct {
	// WeaponsPath is the YAML weapon catalog.
	WeaponsPath string `mapstructure:"weapons_path"`
	// PoliciesDir holds Lua autoattack policy scripts, one per file.
	// Empty disables scripted policies.
	PoliciesDir string `mapstructure:"policies_dir"`
}

// SimConfig drives the automated fight simulator.
type SimConfig struct {
	// Seed fixes the dice source for reproducible fights; 0 uses
	// crypto randomness.
	Seed int64 `mapstructure:"seed"`
	// Fights is how many automated fights to run.
	Fights int `mapstructure:"fights"`
	// NonLethal reverts all harm when each fight ends.
	NonLethal bool `mapstructure:"non_lethal"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Combat  CombatConfig  `mapstructure:"combat"`
	Content ContentConfig `mapstructure:"content"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be in [0, 65535], got %d", s.Port))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.write_timeout must be positive, got %s", s.WriteTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.RoundDelay <= 0 {
		errs = append(errs, fmt.Sprintf("combat.round_delay must be positive, got %s", c.RoundDelay))
	}
	if c.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_rounds must be >= 1, got %d", c.MaxRounds))
	}
	if c.AFKGrace <= 0 {
		errs = append(errs, fmt.Sprintf("combat.afk_grace must be positive, got %s", c.AFKGrace))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSim(s SimConfig) error {
	if s.Fights < 1 {
		return fmt.Errorf("sim.fights must be >= 1, got %d", s.Fights)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 4000, WriteTimeout: 10 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Combat: CombatConfig{
			RoundDelay:   30 * time.Second,
			MaxRounds:    250,
			AFKGrace:     2 * time.Minute,
			RandomDeaths: true,
		},
		Content: ContentConfig{WeaponsPath: "configs/weapons.yaml"},
		Sim:     SimConfig{Fights: 1},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.round_delay", "30s")
	v.SetDefault("combat.max_rounds", 250)
	v.SetDefault("combat.afk_grace", "2m")
	v.SetDefault("combat.random_deaths", true)

	v.SetDefault("content.weapons_path", "configs/weapons.yaml")
	v.SetDefault("content.policies_dir", "")

	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.fights", 1)
	v.SetDefault("sim.non_lethal", false)
}
