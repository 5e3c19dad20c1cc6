// Package main is the entry point for the cross-DEX arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	arbapp "github.com/dexpulse/arbscan/business/arbitrage/app"
	marketdataapp "github.com/dexpulse/arbscan/business/marketdata/app"
	"github.com/dexpulse/arbscan/business/marketdata/infra/coingecko"
	"github.com/dexpulse/arbscan/business/marketdata/infra/dexscreener"
	"github.com/dexpulse/arbscan/business/marketdata/infra/etherscan"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	"github.com/dexpulse/arbscan/business/momentum/infra/postgres"
	scannerapp "github.com/dexpulse/arbscan/business/scanner/app"
	scannerinfra "github.com/dexpulse/arbscan/business/scanner/infra"
	"github.com/dexpulse/arbscan/business/scanner/infra/rediscache"
	validationapp "github.com/dexpulse/arbscan/business/validation/app"
	"github.com/dexpulse/arbscan/business/validation/infra/rpc"
	"github.com/dexpulse/arbscan/internal/apm"
	"github.com/dexpulse/arbscan/internal/config"
	"github.com/dexpulse/arbscan/internal/health"
	"github.com/dexpulse/arbscan/internal/logger"
	"github.com/dexpulse/arbscan/internal/metrics"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbscan %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// The dashboard owns the terminal; logs would corrupt it.
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting scanner",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	telemetryEnabled := cfg.Telemetry.Enabled
	if telemetryEnabled {
		exporter := apm.ExporterNone
		if cfg.Telemetry.OTLPEndpoint != "" {
			exporter = apm.ExporterOTLPGRPC
		}
		traceProvider, err := apm.NewTraceProvider(ctx, apm.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Exporter:    exporter,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer traceProvider.Stop()

		if _, err := metrics.NewMeterProvider(ctx, metrics.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Prometheus:  true,
		}); err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Telemetry.PrometheusPort)
			if err := metrics.ServePrometheus(ctx, addr); err != nil {
				log.Warn(ctx, "prometheus endpoint stopped", "error", err)
			}
		}()
		log.Info(ctx, "telemetry initialized",
			"otlp_endpoint", cfg.Telemetry.OTLPEndpoint,
			"prometheus_port", cfg.Telemetry.PrometheusPort,
		)
	}

	healthServer := health.NewServer(fmt.Sprintf(":%d", cfg.App.HealthPort), version)
	healthServer.Start()
	defer healthServer.Stop(ctx) //nolint:errcheck

	// Market data clients
	dexCfg := dexscreener.DefaultConfig()
	if cfg.APIs.DexScreenerRPM > 0 {
		dexCfg.RequestsPerMinute = cfg.APIs.DexScreenerRPM
	}
	pairSource, err := dexscreener.New(dexCfg, log)
	if err != nil {
		return fmt.Errorf("failed to create dexscreener client: %w", err)
	}

	ethCfg := etherscan.DefaultConfig(cfg.APIs.EtherscanAPIKey)
	if cfg.APIs.EtherscanRPM > 0 {
		ethCfg.RequestsPerMinute = cfg.APIs.EtherscanRPM
	}
	gasSource, err := etherscan.New(ethCfg, log)
	if err != nil {
		return fmt.Errorf("failed to create etherscan client: %w", err)
	}

	geckoCfg := coingecko.DefaultConfig(cfg.APIs.CoinGeckoAPIKey)
	if cfg.APIs.CoinGeckoRPM > 0 {
		geckoCfg.RequestsPerMinute = cfg.APIs.CoinGeckoRPM
	}
	rsiSource, err := coingecko.New(geckoCfg, log)
	if err != nil {
		return fmt.Errorf("failed to create coingecko client: %w", err)
	}
	defer rsiSource.Close()

	// ETH-native chains can ride out a broken reference pool on the spot price.
	pairs := marketdataapp.WithNativePriceFallback(pairSource, rsiSource, log)

	// Persistence (optional)
	var history momentumapp.HistoryRepo
	var recorder scannerapp.ScanRecorder
	if cfg.Storage.PostgresURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pool.Close()
		if err := pool.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		store := postgres.NewHistoryStore(pool)
		history = store
		recorder = store
		healthServer.RegisterCheck("postgres", pool.Ping)
		log.Info(ctx, "history persistence enabled")
	}

	// Alert cooldown (redis when configured, in-memory otherwise)
	var alerts scannerapp.AlertCache
	if cfg.Storage.RedisURL != "" {
		cooldown, err := rediscache.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cooldown.Close() //nolint:errcheck
		healthServer.RegisterCheck("redis", cooldown.Ping)
		alerts = cooldown
	} else {
		memory := scannerinfra.NewMemoryCooldown()
		defer memory.Close()
		alerts = memory
	}

	// On-chain validation (optional)
	var validator scannerapp.PriceValidator
	if cfg.Validation.Enabled {
		rpcClient, err := rpc.NewClient(cfg.Validation.RPCURL, cfg.Validation.Timeout)
		if err != nil {
			return fmt.Errorf("failed to create rpc client: %w", err)
		}
		validator = validationapp.NewValidator(validationapp.Config{
			MaxDiffPct:    cfg.Validation.MaxDiffPct,
			BlockCacheTTL: cfg.Validation.BlockCacheTTL,
		}, rpcClient, log)
	}

	analyzer := arbapp.NewAnalyzer(arbapp.AnalyzerConfig{
		TradeVolumeUSD:           cfg.Arbitrage.TradeVolumeUSD,
		DexFeePct:                cfg.Arbitrage.DexFeePct,
		SlippagePct:              cfg.Arbitrage.SlippagePct,
		MinBullishProfitPct:      cfg.Arbitrage.MinBullishProfitPct,
		MinBearishDiscrepancyPct: cfg.Arbitrage.MinBearishDiscPct,
		MinLiquidityUSD:          cfg.Arbitrage.MinLiquidityUSD,
		MinVolume24hUSD:          cfg.Arbitrage.MinVolume24hUSD,
		MinTxnsH1:                cfg.Arbitrage.MinTxnsH1,
	}, log)

	var cycles *arbapp.CycleFinder
	if cfg.MultiLeg.Enabled {
		cycles = arbapp.NewCycleFinder(arbapp.CycleFinderConfig{
			MaxCycleLength:  cfg.MultiLeg.MaxCycleLength,
			MinNetProfitUSD: cfg.MultiLeg.MinNetProfitUSD,
			MinLiquidityUSD: cfg.MultiLeg.MinLiquidityUSD,
			TradeVolumeUSD:  cfg.Arbitrage.TradeVolumeUSD,
			DexFeePct:       cfg.Arbitrage.DexFeePct,
			SlippagePct:     cfg.Arbitrage.SlippagePct,
		}, log)
	}

	momentum := momentumapp.NewService(momentumapp.Config{
		MinScoreBullish:   cfg.Momentum.MinScoreBullish,
		MinScoreBearish:   cfg.Momentum.MinScoreBearish,
		HistoryLimit:      cfg.Momentum.HistoryLimit,
		RSIPeriod:         cfg.Momentum.RSIPeriod,
		PersistenceWindow: cfg.Momentum.PersistWindow,
	}, history, rsiSource, log)

	var tuiReporter *scannerinfra.TUIReporter
	var reporter scannerapp.Reporter
	if tuiMode {
		tuiReporter = scannerinfra.NewTUIReporter()
		reporter = tuiReporter
	} else {
		reporter = scannerinfra.NewConsoleReporter()
	}
	if telemetryEnabled {
		instrumented, err := scannerinfra.NewMetricsReporter(otel.Meter("arbscan"), reporter)
		if err != nil {
			return fmt.Errorf("failed to create metrics reporter: %w", err)
		}
		reporter = instrumented
	}

	var tracer apm.Tracer
	if telemetryEnabled {
		tracer = apm.NewTracer("scanner")
	}

	scanner := scannerapp.NewScanner(scannerapp.Config{
		Chains:             cfg.Scan.Chains,
		Tokens:             cfg.Scan.Tokens,
		ScanInterval:       cfg.Scan.Interval,
		AlertCooldown:      cfg.Scan.AlertCooldown,
		MultiLegEnabled:    cfg.MultiLeg.Enabled,
		MultiLegFetchDepth: cfg.MultiLeg.MaxFetchDepth,
		ValidationEnabled:  cfg.Validation.Enabled,
	}, scannerapp.Deps{
		Pairs:     pairs,
		GasPrices: gasSource,
		Analyzer:  analyzer,
		Cycles:    cycles,
		Momentum:  momentum,
		Validator: validator,
		Recorder:  recorder,
		Alerts:    alerts,
		Reporter:  reporter,
		Tracer:    tracer,
		Log:       log,
	})

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}

	if tuiReporter != nil {
		// Quitting the dashboard ends the run.
		select {
		case <-ctx.Done():
		case <-tuiReporter.Done():
		}
	} else {
		<-ctx.Done()
		log.Info(ctx, "shutting down")
	}

	return scanner.Stop()
}
