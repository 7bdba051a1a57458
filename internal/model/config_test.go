package model

import (
	"strings"
	"testing"

	"github.com/ppiankov/arrestflow/internal/facts"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		desc   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown format", func(c *Config) { c.Render.Format = "gif" }, "Format"},
		{"bad rank dir", func(c *Config) { c.Render.RankDir = "diagonal" }, "RankDir"},
		{"bad colour", func(c *Config) { c.Render.RelevantFill = "blue" }, "RelevantFill"},
		{"no workers", func(c *Config) { c.Concurrency.Workers = 0 }, "Workers"},
		{"zero rate", func(c *Config) { c.Server.RequestsPerSecond = 0 }, "RequestsPerSecond"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "Addr"},
		{"trusted client not an ip", func(c *Config) { c.Server.TrustedClients = []string{"localhost"} }, "TrustedClients"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		facts facts.Facts
		want  string
	}{
		{facts.Facts{}, "any_any_any.svg"},
		{facts.Facts{ArrestingPerson: facts.PersonPolice, Warrant: facts.WarrantNo, OffenceCategory: facts.CategoryS469}, "police_nowarrant_s469.svg"},
		{facts.Facts{ArrestingPerson: facts.PersonCitizen, Warrant: facts.WarrantYes}, "citizen_warrant_any.svg"},
	}

	for _, tt := range tests {
		if got := FileName(tt.facts, ".svg"); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.facts, got, tt.want)
		}
	}

	seen := make(map[string]bool)
	for _, f := range facts.All() {
		name := FileName(f, ".svg")
		if seen[name] {
			t.Errorf("duplicate file name %s", name)
		}
		seen[name] = true
	}
}
