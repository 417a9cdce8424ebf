// Package main provides the foxypack CLI application entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"foxypack/internal/core"
	httpserver "foxypack/internal/http"
	"foxypack/pkg/platform"
)

const envPrefix = "FOXYPACK"

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "foxypack",
	Short: "foxypack - social media URL analysis and statistics",
	Long: `foxypack classifies social media URLs and collects statistics for them by trying
a configurable chain of platform handlers in order until one produces a result.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Classify a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var statsCmd = &cobra.Command{
	Use:   "stats <url>",
	Short: "Collect statistics for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis and statistics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List configured and available handlers",
	Args:  cobra.NoArgs,
	RunE:  runHandlers,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", defaults.Log.Format,
		fmt.Sprintf("log format (%s, %s)", core.LogFormatJSON, core.LogFormatConsole))
	rootCmd.PersistentFlags().String("server-host", defaults.Server.Host, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", defaults.Server.Port, "HTTP server port")
	rootCmd.PersistentFlags().StringSlice("analyzers", defaults.Chain.Analyzers,
		fmt.Sprintf("Analyzers in trial order (%s)", strings.Join(platform.AnalyzerNames(), ", ")))
	rootCmd.PersistentFlags().StringSlice("collectors", defaults.Chain.Collectors,
		fmt.Sprintf("Collectors in trial order (%s)", strings.Join(platform.CollectorNames(), ", ")))
	rootCmd.PersistentFlags().String("bypass-policy", defaults.Chain.BypassPolicy,
		fmt.Sprintf("Statistics bypass policy (%s, %s)", core.BypassBroad, core.BypassStrict))
	rootCmd.PersistentFlags().Duration("collector-timeout", defaults.Chain.CollectorTimeout,
		"Timeout for each asynchronous collector call, 0 disables it")
	rootCmd.PersistentFlags().Int("cache-size", defaults.Chain.CacheSize,
		"Memoized classifications per analyzer, 0 disables the cache")
	rootCmd.PersistentFlags().Float64("cache-false-positive-rate", defaults.Chain.CacheFalsePositiveRate,
		"Bloom filter false positive rate of the analysis cache")
	rootCmd.PersistentFlags().Bool("generate-env-example", false,
		"Generate .env.example file from current configuration and exit")

	statsCmd.Flags().Bool("async", false, "Use the asynchronous collector entry points")

	rootCmd.AddCommand(analyzeCmd, statsCmd, serveCmd, handlersCmd)

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureChain(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = core.DefaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureChain(cfg *core.Config) {
	cfg.Chain.Analyzers = splitList(viper.GetStringSlice("analyzers"))
	cfg.Chain.Collectors = splitList(viper.GetStringSlice("collectors"))
	cfg.Chain.BypassPolicy = viper.GetString("bypass-policy")
	cfg.Chain.CollectorTimeout = viper.GetDuration("collector-timeout")
	cfg.Chain.CacheSize = viper.GetInt("cache-size")
	cfg.Chain.CacheFalsePositiveRate = viper.GetFloat64("cache-false-positive-rate")
}

// splitList accepts both repeated flags and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToLower(part))
			}
		}
	}
	return out
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, core.LogFormatConsole) {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	defer syncLogger()

	svc, err := core.NewService(config, logger.Named("chain"))
	if err != nil {
		return err
	}

	analysis, err := svc.Analyze(args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if analysis == nil {
		return fmt.Errorf("no handler recognized %s", args[0])
	}

	return writeJSON(cmd.OutOrStdout(), analysis)
}

func runStats(cmd *cobra.Command, args []string) error {
	defer syncLogger()

	async, err := cmd.Flags().GetBool("async")
	if err != nil {
		return err
	}
	mode := core.ModeSync
	if async {
		mode = core.ModeAsync
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := core.NewService(config, logger.Named("chain"))
	if err != nil {
		return err
	}

	stats, err := svc.Statistics(ctx, args[0], mode)
	if err != nil {
		return fmt.Errorf("statistics failed: %w", err)
	}
	if stats == nil {
		return fmt.Errorf("no handler produced statistics for %s", args[0])
	}

	return writeJSON(cmd.OutOrStdout(), core.NewStatisticsView(stats))
}

func runHandlers(cmd *cobra.Command, _ []string) error {
	defer syncLogger()

	svc, err := core.NewService(config, logger.Named("chain"))
	if err != nil {
		return err
	}

	analyzerNames, collectorNames := svc.Handlers()
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"analyzers":            analyzerNames,
		"collectors":           collectorNames,
		"available_analyzers":  platform.AnalyzerNames(),
		"available_collectors": platform.CollectorNames(),
		"bypass_policy":        config.Chain.BypassPolicy,
	})
}

func runServe(_ *cobra.Command, _ []string) error {
	defer syncLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting foxypack",
		zap.Strings("analyzers", config.Chain.Analyzers),
		zap.Strings("collectors", config.Chain.Collectors),
		zap.String("bypass_policy", config.Chain.BypassPolicy))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := httpserver.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	svc, err := core.NewService(config, logger.Named("chain"), metrics)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	httpServer := httpserver.NewServer(&config.Server, svc, metrics, registry, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	logger.Info("foxypack started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("foxypack stopped with error", zap.Error(err))
		return err
	}

	logger.Info("foxypack stopped gracefully")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func syncLogger() {
	_ = logger.Sync()
}
