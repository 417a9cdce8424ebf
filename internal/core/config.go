package core

import (
	"fmt"
	"strings"
	"time"

	"foxypack/pkg/foxypack"
	"foxypack/pkg/platform"
)

const (
	// DefaultServerHost is the default HTTP listen host.
	DefaultServerHost = "0.0.0.0"
	// DefaultServerPort is the default HTTP listen port.
	DefaultServerPort = 8080
	// DefaultCacheSize is the default number of memoized classifications per analyzer.
	DefaultCacheSize = 10000
	// DefaultCacheFalsePositiveRate is the default Bloom filter false positive rate.
	DefaultCacheFalsePositiveRate = 0.001
	// DefaultCollectorTimeout bounds each asynchronous collector call.
	DefaultCollectorTimeout = 10 * time.Second

	// LogFormatJSON writes structured JSON logs.
	LogFormatJSON = "json"
	// LogFormatConsole writes human readable development logs.
	LogFormatConsole = "console"

	// BypassBroad lets every collection error, including wrong-mode errors, continue the chain.
	BypassBroad = "broad"
	// BypassStrict aborts the statistics chain on wrong-mode errors.
	BypassStrict = "strict"
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Chain  ChainConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ChainConfig selects the handlers and routing policy of the controller.
type ChainConfig struct {
	Analyzers              []string
	Collectors             []string
	BypassPolicy           string
	CollectorTimeout       time.Duration
	CacheSize              int
	CacheFalsePositiveRate float64
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
		Chain: ChainConfig{
			Analyzers:              append([]string(nil), platform.DefaultAnalyzers...),
			Collectors:             append([]string(nil), platform.DefaultCollectors...),
			BypassPolicy:           BypassBroad,
			CollectorTimeout:       DefaultCollectorTimeout,
			CacheSize:              DefaultCacheSize,
			CacheFalsePositiveRate: DefaultCacheFalsePositiveRate,
		},
	}
}

// Validate checks the configuration and returns a foxypack.ErrConfiguration
// error describing the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return foxypack.NewConfiguration(fmt.Sprintf("server port %d is out of range", c.Server.Port))
	}

	switch strings.ToLower(c.Log.Format) {
	case LogFormatJSON, LogFormatConsole, "":
	default:
		return foxypack.NewConfiguration(fmt.Sprintf("unknown log format %q (use %s or %s)",
			c.Log.Format, LogFormatJSON, LogFormatConsole))
	}

	if len(c.Chain.Analyzers) == 0 {
		return foxypack.NewConfiguration("at least one analyzer must be configured")
	}
	for _, name := range c.Chain.Analyzers {
		if _, err := platform.NewAnalyzer(name); err != nil {
			return err
		}
	}
	for _, name := range c.Chain.Collectors {
		if _, err := platform.NewCollector(name); err != nil {
			return err
		}
	}

	if _, err := c.Chain.bypassPolicy(); err != nil {
		return err
	}

	if c.Chain.CacheSize < 0 {
		return foxypack.NewConfiguration(fmt.Sprintf("cache size %d must not be negative", c.Chain.CacheSize))
	}
	if c.Chain.CacheSize > 0 && (c.Chain.CacheFalsePositiveRate <= 0 || c.Chain.CacheFalsePositiveRate >= 1) {
		return foxypack.NewConfiguration(fmt.Sprintf("cache false positive rate %g must be between 0 and 1",
			c.Chain.CacheFalsePositiveRate))
	}
	if c.Chain.CollectorTimeout < 0 {
		return foxypack.NewConfiguration("collector timeout must not be negative")
	}

	return nil
}

func (c *ChainConfig) bypassPolicy() (foxypack.BypassPolicy, error) {
	switch strings.ToLower(c.BypassPolicy) {
	case BypassBroad, "":
		return foxypack.BypassCollection, nil
	case BypassStrict:
		return foxypack.BypassCollectionStrict, nil
	default:
		return nil, foxypack.NewConfiguration(fmt.Sprintf("unknown bypass policy %q (use %s or %s)",
			c.BypassPolicy, BypassBroad, BypassStrict))
	}
}
