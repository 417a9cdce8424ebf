package core

import (
	"errors"
	"testing"
	"time"

	"foxypack/pkg/foxypack"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default configuration should be valid, got %v", err)
	}

	if config.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, config.Server.Port)
	}

	if config.Chain.BypassPolicy != BypassBroad {
		t.Errorf("Expected default bypass policy %s, got %s", BypassBroad, config.Chain.BypassPolicy)
	}

	if len(config.Chain.Analyzers) == 0 {
		t.Error("Expected default analyzers to be configured")
	}

	if config.Chain.Analyzers[0] != "fakesocial" {
		t.Errorf("Expected fakesocial to be tried first, got %s", config.Chain.Analyzers[0])
	}
}

func TestConfigConstants(t *testing.T) {
	if DefaultServerPort <= 0 || DefaultServerPort > 65535 {
		t.Error("DefaultServerPort should be a valid port number")
	}

	if DefaultCacheSize <= 0 {
		t.Error("DefaultCacheSize should be positive")
	}

	if DefaultCacheFalsePositiveRate <= 0 || DefaultCacheFalsePositiveRate >= 1 {
		t.Error("DefaultCacheFalsePositiveRate should be between 0 and 1")
	}

	if DefaultCollectorTimeout <= 0 {
		t.Error("DefaultCollectorTimeout should be positive")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "port zero", modify: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too large", modify: func(c *Config) { c.Server.Port = 70000 }},
		{name: "no analyzers", modify: func(c *Config) { c.Chain.Analyzers = nil }},
		{name: "unknown analyzer", modify: func(c *Config) { c.Chain.Analyzers = []string{"myspace"} }},
		{name: "unknown collector", modify: func(c *Config) { c.Chain.Collectors = []string{"myspace"} }},
		{name: "unknown bypass policy", modify: func(c *Config) { c.Chain.BypassPolicy = "lenient" }},
		{name: "negative cache size", modify: func(c *Config) { c.Chain.CacheSize = -1 }},
		{name: "invalid false positive rate", modify: func(c *Config) { c.Chain.CacheFalsePositiveRate = 1.5 }},
		{name: "negative timeout", modify: func(c *Config) { c.Chain.CollectorTimeout = -time.Second }},
		{name: "unknown log format", modify: func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if !errors.Is(err, foxypack.ErrConfiguration) {
				t.Errorf("Validate() error = %v, want configuration error", err)
			}
		})
	}
}

func TestConfigValidate_Accepted(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "strict policy", modify: func(c *Config) { c.Chain.BypassPolicy = "STRICT" }},
		{name: "empty policy defaults to broad", modify: func(c *Config) { c.Chain.BypassPolicy = "" }},
		{name: "cache disabled ignores rate", modify: func(c *Config) {
			c.Chain.CacheSize = 0
			c.Chain.CacheFalsePositiveRate = 0
		}},
		{name: "no collectors", modify: func(c *Config) { c.Chain.Collectors = nil }},
		{name: "timeout disabled", modify: func(c *Config) { c.Chain.CollectorTimeout = 0 }},
		{name: "console log format", modify: func(c *Config) { c.Log.Format = "Console" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			if err := config.Validate(); err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
