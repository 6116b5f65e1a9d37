package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"scryptbot/internal/chart"
	"scryptbot/internal/interfaces"
	"scryptbot/internal/logger"
	"scryptbot/internal/marketdata"
	"scryptbot/internal/notify"
	"scryptbot/internal/oracle/claude"
	"scryptbot/internal/oracle/noop"
	"scryptbot/internal/oracle/openai"
	"scryptbot/internal/oracle/oracleobs"
	"scryptbot/internal/pipeline"
	"scryptbot/internal/social"
	"scryptbot/internal/storage"
	"scryptbot/internal/store"
	"scryptbot/internal/trace"
	"scryptbot/internal/tradelog"
	"scryptbot/internal/universe"

	"github.com/joho/godotenv"
)

// initializeSystem loads environment variables and sets up logging and
// tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// compressOldLogs compresses old tradelog files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("SCRYPTBOT_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeOracle returns the configured judgment provider wrapped
// with observability middleware.
func initializeOracle(ctx context.Context, cfg *store.Config) interfaces.Oracle {
	var oracle interfaces.Oracle

	switch cfg.LLM.Provider {
	case "OPENAI":
		oracle = openai.New(cfg)
	case "CLAUDE":
		oracle = claude.New(cfg)
	default:
		oracle = noop.New()
		logger.Warn(ctx, "No LLM provider configured - using noop oracle (never actionable)")
	}

	return oracleobs.Wrap(oracle)
}

// initializePublisher builds the social client from environment
// credentials. Missing credentials abort startup.
func initializePublisher(ctx context.Context) (*social.Client, error) {
	readToken, err := store.RequireEnv("SOCIAL_BEARER_TOKEN")
	if err != nil {
		return nil, err
	}
	writeToken, err := store.RequireEnv("SOCIAL_ACCESS_TOKEN")
	if err != nil {
		return nil, err
	}

	return social.NewClient(social.Params{
		BaseURL:    os.Getenv("SOCIAL_API_URL"),
		UploadURL:  os.Getenv("SOCIAL_UPLOAD_URL"),
		ReadToken:  readToken,
		WriteToken: writeToken,
	}), nil
}

// initializeChart returns the chart renderer, or nil when charts are
// disabled.
func initializeChart(ctx context.Context, cfg *store.Config, st *storage.Store) interfaces.ChartRenderer {
	if !cfg.Chart.Enabled {
		return nil
	}
	if cfg.Chart.ServiceURL == "" {
		logger.Warn(ctx, "Charts enabled but chart.service_url is empty, disabling charts")
		return nil
	}

	renderer, err := chart.NewRenderer(chart.Params{
		ServiceURL: cfg.Chart.ServiceURL,
		OutDir:     filepath.Join(cfg.DataDir, "charts"),
		Store:      st,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize chart renderer, disabling charts", err)
		return nil
	}
	return renderer
}

// initializeNotifier returns the Telegram notifier, or nil when
// notifications are disabled or misconfigured.
func initializeNotifier(ctx context.Context, cfg *store.Config) *notify.Notifier {
	if !cfg.Notify.TelegramEnabled {
		return nil
	}
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" || cfg.Notify.ChatID == "" {
		logger.Warn(ctx, "Telegram notifications enabled but token or chat id missing, disabling")
		return nil
	}
	n, err := notify.NewNotifier(token, cfg.Notify.ChatID)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize Telegram notifier, disabling", err)
		return nil
	}
	return n
}

// initializeEngine wires the gating pipeline together.
func initializeEngine(cfg *store.Config, oracle interfaces.Oracle, pub interfaces.Publisher,
	chartRenderer interfaces.ChartRenderer, st *storage.Store, uni *universe.Universe) *pipeline.Engine {
	return pipeline.NewEngine(pipeline.Params{
		Oracle:              oracle,
		Publisher:           pub,
		Market:              marketdata.NewClient(os.Getenv("MARKET_DATA_URL")),
		Chart:               chartRenderer,
		Universe:            uni,
		Store:               st,
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		WindowCapacity:      cfg.Dedup.WindowCapacity,
		MaxPostLen:          cfg.Publisher.MaxPostLen,
		ChartEnabled:        cfg.Chart.Enabled,
		ChartTimeframe:      cfg.Chart.Timeframe,
		RetryFailed:         cfg.Dedup.RetryFailed,
	})
}
