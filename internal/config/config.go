// Package config loads KIE's configuration: triage scoring weights,
// toolchain version floors, Brand Validator strictness, and logging
// level. Precedence follows the teacher's convention exactly:
// environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the kie CLI.
type Config struct {
	Triage    TriageConfig    `toml:"triage"`
	Toolchain ToolchainConfig `toml:"toolchain"`
	Brand     BrandConfig     `toml:"brand"`
	Log       LogConfig       `toml:"log"`
}

// TriageConfig holds the priority-scoring weights used by
// internal/intelligence/triage (priority = alpha*magnitude +
// beta*confidence + gamma*objective_relevance).
type TriageConfig struct {
	Alpha             float64 `toml:"alpha"`
	Beta              float64 `toml:"beta"`
	Gamma             float64 `toml:"gamma"`
	MaxInsightsPerRun int     `toml:"max_insights_per_run"`
}

// ToolchainConfig holds the minimum toolchain versions the Gate Engine
// enforces before a dashboard build.
type ToolchainConfig struct {
	NodeFloor   string `toml:"node_floor"`
	PythonFloor string `toml:"python_floor"`
}

// BrandConfig controls the Brand Validator's strictness.
type BrandConfig struct {
	// Mode is "strict" (WARN findings block as well as CRITICAL ones) or
	// "lenient" (only CRITICAL findings block).
	Mode string `toml:"mode"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Load builds a Config from defaults, an optional TOML file, and
// environment variables, in that precedence order (env wins).
//
// Config file search order (first found wins):
//  1. configPath parameter (from --config flag)
//  2. KIE_CONFIG environment variable
//  3. ./kie.toml (current directory)
//  4. ~/.config/kie/kie.toml (XDG-style)
//
// All fields are optional in the config file; the config file itself is
// optional.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Triage: TriageConfig{
			Alpha:             0.5,
			Beta:              0.3,
			Gamma:             0.2,
			MaxInsightsPerRun: 15,
		},
		Toolchain: ToolchainConfig{
			NodeFloor:   "18.0.0",
			PythonFloor: "3.10.0",
		},
		Brand: BrandConfig{
			Mode: "strict",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns empty
// string if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}
	if p := os.Getenv("KIE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("kie.toml"); err == nil {
		return "kie.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/kie/kie.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config
// values. An env var only takes effect if it is non-empty/parseable.
func (c *Config) applyEnv() {
	envOverrideString("KIE_LOG_LEVEL", &c.Log.Level)
	envOverrideString("KIE_BRAND_MODE", &c.Brand.Mode)
	envOverrideString("KIE_NODE_FLOOR", &c.Toolchain.NodeFloor)
	envOverrideString("KIE_PYTHON_FLOOR", &c.Toolchain.PythonFloor)

	envOverrideFloat("KIE_TRIAGE_ALPHA", &c.Triage.Alpha)
	envOverrideFloat("KIE_TRIAGE_BETA", &c.Triage.Beta)
	envOverrideFloat("KIE_TRIAGE_GAMMA", &c.Triage.Gamma)
	envOverrideInt("KIE_TRIAGE_MAX_INSIGHTS", &c.Triage.MaxInsightsPerRun)
}

// Validate checks that loaded values are internally consistent.
func (c *Config) Validate() error {
	switch c.Brand.Mode {
	case "strict", "lenient":
	default:
		return fmt.Errorf("invalid brand.mode: %q (must be \"strict\" or \"lenient\")", c.Brand.Mode)
	}
	if c.Triage.Alpha < 0 || c.Triage.Beta < 0 || c.Triage.Gamma < 0 {
		return fmt.Errorf("triage weights must be non-negative: alpha=%v beta=%v gamma=%v", c.Triage.Alpha, c.Triage.Beta, c.Triage.Gamma)
	}
	if c.Triage.MaxInsightsPerRun <= 0 {
		return fmt.Errorf("triage.max_insights_per_run must be positive, got %d", c.Triage.MaxInsightsPerRun)
	}
	return nil
}

func envOverrideString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			*dst = f
		}
	}
}

func envOverrideInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			*dst = n
		}
	}
}
