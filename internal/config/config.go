// Package config provides Viper-based configuration loading for the combat engine.
package config

import (
	"errors"
	"fmt"
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

// CombatConfig holds the numeric constants consumed by combat resolution.
type CombatConfig struct {
	// ScalingStatMultiplier multiplies the attacker's scaling stat in damage and heal formulas.
	ScalingStatMultiplier float64 `mapstructure:"scaling_stat_multiplier"`
	// PowerMultiplier multiplies the skill's declared power in damage and heal formulas.
	PowerMultiplier float64 `mapstructure:"power_multiplier"`
	// InitiativeDice is the dice expression added to speed when rolling initiative.
	InitiativeDice string `mapstructure:"initiative_dice"`
	// MinHitChance is the floor, in percent, of every hit chance.
	MinHitChance int `mapstructure:"min_hit_chance"`
	// BasicAttackSkill is the skill id AI combatants fall back to.
	BasicAttackSkill string `mapstructure:"basic_attack_skill"`
	// DespawnDefeated destroys defeated non-player entities when combat ends.
	DespawnDefeated bool `mapstructure:"despawn_defeated"`
	// MaxRounds ends an encounter after this many rounds; 0 disables the bound.
	MaxRounds int `mapstructure:"max_rounds"`
}

// ContentConfig holds content directory locations.
type ContentConfig struct {
	SkillsDir  string `mapstructure:"skills_dir"`
	EffectsDir string `mapstructure:"effects_dir"`
	MobsDir    string `mapstructure:"mobs_dir"`
	// ScriptsDir holds Lua AI profile scripts; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit bounds the opcodes a single script call may execute.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// RosterEntry places one mob template on a team.
type RosterEntry struct {
	Template string `mapstructure:"template"`
	// Row is "front" or "back".
	Row string `mapstructure:"row"`
}

// SimulationConfig drives the cmd/simulate binary.
type SimulationConfig struct {
	// Encounters is the number of encounters to run.
	Encounters int `mapstructure:"encounters"`
	// Concurrency is the number of encounters that may run at once.
	Concurrency int `mapstructure:"concurrency"`
	// Seed makes runs reproducible; 0 selects the crypto source.
	Seed  uint64        `mapstructure:"seed"`
	Team1 []RosterEntry `mapstructure:"team1"`
	Team2 []RosterEntry `mapstructure:"team2"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Content    ContentConfig    `mapstructure:"content"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
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
	if c.ScalingStatMultiplier < 0 {
		errs = append(errs, fmt.Sprintf("combat.scaling_stat_multiplier must be >= 0, got %v", c.ScalingStatMultiplier))
	}
	if c.PowerMultiplier < 0 {
		errs = append(errs, fmt.Sprintf("combat.power_multiplier must be >= 0, got %v", c.PowerMultiplier))
	}
	if c.InitiativeDice == "" {
		errs = append(errs, "combat.initiative_dice must not be empty")
	}
	if c.MinHitChance < 0 || c.MinHitChance > 100 {
		errs = append(errs, fmt.Sprintf("combat.min_hit_chance must be 0-100, got %d", c.MinHitChance))
	}
	if c.BasicAttackSkill == "" {
		errs = append(errs, "combat.basic_attack_skill must not be empty")
	}
	if c.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("combat.max_rounds must be >= 0, got %d", c.MaxRounds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.SkillsDir == "" {
		errs = append(errs, "content.skills_dir must not be empty")
	}
	if c.EffectsDir == "" {
		errs = append(errs, "content.effects_dir must not be empty")
	}
	if c.MobsDir == "" {
		errs = append(errs, "content.mobs_dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, "content.script_instruction_limit must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Encounters < 0 {
		errs = append(errs, fmt.Sprintf("simulation.encounters must be >= 0, got %d", s.Encounters))
	}
	if s.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("simulation.concurrency must be >= 1, got %d", s.Concurrency))
	}
	for _, team := range []struct {
		name   string
		roster []RosterEntry
	}{{"team1", s.Team1}, {"team2", s.Team2}} {
		for i, e := range team.roster {
			if e.Template == "" {
				errs = append(errs, fmt.Sprintf("simulation.%s[%d].template must not be empty", team.name, i))
			}
			if e.Row != "front" && e.Row != "back" {
				errs = append(errs, fmt.Sprintf("simulation.%s[%d].row must be one of [front, back], got %q", team.name, i, e.Row))
			}
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
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

// Defaults returns a Viper instance populated only with default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.scaling_stat_multiplier", 2.0)
	v.SetDefault("combat.power_multiplier", 1.0)
	v.SetDefault("combat.initiative_dice", "1d11-1")
	v.SetDefault("combat.min_hit_chance", 5)
	v.SetDefault("combat.basic_attack_skill", "basic_attack")
	v.SetDefault("combat.despawn_defeated", true)
	v.SetDefault("combat.max_rounds", 200)

	v.SetDefault("content.skills_dir", "content/skills")
	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.mobs_dir", "content/mobs")
	v.SetDefault("content.scripts_dir", "content/scripts/ai")
	v.SetDefault("content.script_instruction_limit", 100000)

	v.SetDefault("simulation.encounters", 1)
	v.SetDefault("simulation.concurrency", 1)
	v.SetDefault("simulation.seed", 0)
}
