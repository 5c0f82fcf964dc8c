// Package config provides Viper-based configuration loading for the skirmish runner.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds encounter settings.
type CombatConfig struct {
	// Seed fixes the random stream; 0 draws a fresh seed at startup.
	Seed int64 `mapstructure:"seed"`
	// MaxRounds ends an encounter in a stalemate after this many rounds.
	MaxRounds int `mapstructure:"max_rounds"`
	// PartySize caps the player party.
	PartySize int `mapstructure:"party_size"`
}

// ContentConfig holds the YAML content directories.
type ContentConfig struct {
	AbilitiesDir string `mapstructure:"abilities_dir"`
	ClassesDir   string `mapstructure:"classes_dir"`
	RacesDir     string `mapstructure:"races_dir"`
	ItemsDir     string `mapstructure:"items_dir"`
	MonstersDir  string `mapstructure:"monsters_dir"`
}

// ScriptingConfig holds Lua AI settings.
type ScriptingConfig struct {
	// AIScriptDir holds one *.lua file per AI script.
	AIScriptDir string `mapstructure:"ai_script_dir"`
	// InstructionLimit bounds the opcodes of one hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SkirmishConfig controls what the skirmish runner sets up.
type SkirmishConfig struct {
	// Recruits is the number of characters recruited into the party.
	Recruits int `mapstructure:"recruits"`
	// Bands is the number of monster bands placed in the world.
	Bands int `mapstructure:"bands"`
	// MaxBandLevel caps the level of generated bands.
	MaxBandLevel int `mapstructure:"max_band_level"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Skirmish  SkirmishConfig  `mapstructure:"skirmish"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateCombat(c.Combat),
		validateContent(c.Content),
		validateScripting(c.Scripting),
		validateSkirmish(c.Skirmish, c.Combat),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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
	if c.Seed < 0 {
		errs = append(errs, fmt.Sprintf("combat.seed must be >= 0, got %d", c.Seed))
	}
	if c.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_rounds must be >= 1, got %d", c.MaxRounds))
	}
	if c.PartySize < 1 {
		errs = append(errs, fmt.Sprintf("combat.party_size must be >= 1, got %d", c.PartySize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	for key, dir := range map[string]string{
		"abilities_dir": c.AbilitiesDir,
		"classes_dir":   c.ClassesDir,
		"races_dir":     c.RacesDir,
		"items_dir":     c.ItemsDir,
		"monsters_dir":  c.MonstersDir,
	} {
		if dir == "" {
			errs = append(errs, "content."+key+" must not be empty")
		}
	}
	if len(errs) > 0 {
		// Map order is random; keep the message stable.
		slices.Sort(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateSkirmish(s SkirmishConfig, c CombatConfig) error {
	var errs []string
	if s.Recruits < 1 || (c.PartySize >= 1 && s.Recruits > c.PartySize) {
		errs = append(errs, fmt.Sprintf("skirmish.recruits must be 1-%d (combat.party_size), got %d", c.PartySize, s.Recruits))
	}
	if s.Bands < 1 {
		errs = append(errs, fmt.Sprintf("skirmish.bands must be >= 1, got %d", s.Bands))
	}
	if s.MaxBandLevel < 1 {
		errs = append(errs, fmt.Sprintf("skirmish.max_band_level must be >= 1, got %d", s.MaxBandLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

	// Environment variable overrides with WARBAND_ prefix
	v.SetEnvPrefix("WARBAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
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

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("combat.seed", 0)
	v.SetDefault("combat.max_rounds", 200)
	v.SetDefault("combat.party_size", 5)

	v.SetDefault("content.abilities_dir", "content/abilities")
	v.SetDefault("content.classes_dir", "content/classes")
	v.SetDefault("content.races_dir", "content/races")
	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.monsters_dir", "content/monsters")

	v.SetDefault("scripting.ai_script_dir", "content/scripts/ai")
	v.SetDefault("scripting.instruction_limit", 100_000)

	v.SetDefault("skirmish.recruits", 3)
	v.SetDefault("skirmish.bands", 3)
	v.SetDefault("skirmish.max_band_level", 3)
}
