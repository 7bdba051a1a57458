package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var configValidate = validator.New()

// Config is the complete arrestflow configuration
type Config struct {
	Rules       RulesConfig       `yaml:"rules" mapstructure:"rules"`
	Render      RenderConfig      `yaml:"render" mapstructure:"render"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// RulesConfig selects the rule graph
type RulesConfig struct {
	File string `yaml:"file" mapstructure:"file"` // YAML rules file; empty uses the built-in Criminal Code graph
}

// RenderConfig controls graph styling
type RenderConfig struct {
	Format         string `yaml:"format" mapstructure:"format" validate:"oneof=dot svg png mermaid json text"`
	RankDir        string `yaml:"rank_dir" mapstructure:"rank_dir" validate:"oneof=TB LR"`
	RelevantFill   string `yaml:"relevant_fill" mapstructure:"relevant_fill" validate:"hexcolor"`
	IrrelevantFill string `yaml:"irrelevant_fill" mapstructure:"irrelevant_fill" validate:"hexcolor"`
	IrrelevantFont string `yaml:"irrelevant_font" mapstructure:"irrelevant_font" validate:"hexcolor"`
	Color          bool   `yaml:"color" mapstructure:"color"` // ANSI styling for text output
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `yaml:"burst" mapstructure:"burst" validate:"gt=0"`
	Watch             bool          `yaml:"watch" mapstructure:"watch"` // reload the rules file on change
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// TrustedClients are remote IPs exempt from the graph rate limit
	TrustedClients []string `yaml:"trusted_clients" mapstructure:"trusted_clients" validate:"omitempty,dive,ip"`
}

// CacheConfig controls the rendered output cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch rendering
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=256"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Dir     string `yaml:"dir" mapstructure:"dir"` // default directory for atlas output
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Format:         "svg",
			RankDir:        "TB",
			RelevantFill:   "#e8f1fb",
			IrrelevantFill: "#f4f4f4",
			IrrelevantFont: "#a8a8a8",
			Color:          true,
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			RequestsPerSecond: 5,
			Burst:             10,
			ShutdownTimeout:   5 * time.Second,
			TrustedClients:    []string{"127.0.0.1", "::1"},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".arrestflow-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Dir: "./arrestflow-atlas",
		},
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
