package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the per-project state directory, relative to the working directory.
const Dir = ".engram"

// Config holds all engram configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
	Hooks     HooksConfig     `yaml:"hooks"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Bind        string   `yaml:"bind"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"`     // "claude-cli", "anthropic", "gemini", "ollama"
	LightModel   string `yaml:"light_model"`  // watch mode
	StrictModel  string `yaml:"strict_model"` // hook mode
	OllamaURL    string `yaml:"ollama_url"`
	AnthropicKey string `yaml:"anthropic_key"`
	GeminiKey    string `yaml:"gemini_key"`
}

type WatchConfig struct {
	Threshold int      `yaml:"threshold"` // changes per check
	Ignore    []string `yaml:"ignore"`    // extra glob patterns
	Ref       string   `yaml:"ref"`       // diff reference point
	Timeout   int      `yaml:"timeout"`   // seconds per judge call
}

type HooksConfig struct {
	Timeout    int  `yaml:"timeout"` // seconds per judge call
	FailClosed bool `yaml:"fail_closed"`
}

type LifecycleConfig struct {
	DecayDays int `yaml:"decay_days"`
	Interval  int `yaml:"interval"` // hours between maintenance runs in serve
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 3000,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via DBPath()
		},
		LLM: LLMConfig{
			Provider: "claude-cli",
		},
		Watch: WatchConfig{
			Threshold: 3,
			Ref:       "HEAD",
			Timeout:   30,
		},
		Hooks: HooksConfig{
			Timeout: 60,
		},
		Lifecycle: LifecycleConfig{
			DecayDays: 7,
			Interval:  24,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config file location: ./.engram/config.yaml
func DefaultPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv("ENGRAM_DB"); p != "" {
		c.Database.Path = p
	}
	if p := os.Getenv("ENGRAM_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.AnthropicKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.GeminiKey = key
	}
	if lvl := os.Getenv("ENGRAM_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
}

var knownProviders = map[string]bool{
	"claude-cli": true,
	"anthropic":  true,
	"gemini":     true,
	"ollama":     true,
}

// Validate checks for values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if !knownProviders[c.LLM.Provider] {
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Watch.Threshold < 1 {
		return fmt.Errorf("watch.threshold must be >= 1, got %d", c.Watch.Threshold)
	}
	if c.Watch.Timeout < 0 || c.Hooks.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Lifecycle.DecayDays < 0 {
		return fmt.Errorf("lifecycle.decay_days must not be negative")
	}
	return nil
}

// DBPath returns the configured database path or ./.engram/engram.db.
func (c *Config) DBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(Dir, "engram.db")
}

// PauseFile is the sentinel whose presence pauses watch mode.
func (c *Config) PauseFile() string {
	return filepath.Join(Dir, "paused")
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// HookTimeout is the judge deadline in hook mode.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.Timeout) * time.Second
}

// WatchTimeout is the judge deadline in watch mode.
func (c *Config) WatchTimeout() time.Duration {
	return time.Duration(c.Watch.Timeout) * time.Second
}

// MaintenanceInterval is how often serve runs decay and prune.
func (c *Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.Lifecycle.Interval) * time.Hour
}
