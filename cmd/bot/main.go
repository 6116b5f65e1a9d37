package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scryptbot/internal/feed"
	"scryptbot/internal/interfaces"
	"scryptbot/internal/logger"
	"scryptbot/internal/pipeline"
	"scryptbot/internal/social"
	"scryptbot/internal/storage"
	"scryptbot/internal/store"
	"scryptbot/internal/trace"
	"scryptbot/internal/tradelog"
	"scryptbot/internal/types"
	"scryptbot/internal/universe"
	"scryptbot/internal/web"
)

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	compressOldLogs(ctx)

	st, err := storage.New(cfg.DataDir)
	must(err)
	uni, err := universe.Load(cfg.Universe.TickerFile)
	must(err)
	logger.Info(ctx, "Instrument universe loaded", "tickers", uni.Size())

	oracle := initializeOracle(ctx, cfg)
	pub, err := initializePublisher(ctx)
	must(err)
	chartRenderer := initializeChart(ctx, cfg, st)
	var notifier notifierIface
	if n := initializeNotifier(ctx, cfg); n != nil {
		notifier = n
	}

	eng := initializeEngine(cfg, oracle, pub, chartRenderer, st, uni)

	var source interfaces.Feed
	if cfg.Feed.RSSURL != "" {
		source = feed.NewRSSClient(cfg.Feed.RSSURL)
	} else {
		source = feed.NewScraper(os.Getenv("SCRAPE_URL"), os.Getenv("SCRAPE_SELECTOR"))
	}
	var fallback interfaces.Feed
	if cfg.Feed.ScraperFallback && cfg.Feed.RSSURL != "" {
		fallback = feed.NewScraper(os.Getenv("SCRAPE_URL"), os.Getenv("SCRAPE_SELECTOR"))
	}

	var webSrv *web.Server
	if cfg.Web.Enabled {
		webSrv = web.NewServer(cfg.Web.Addr, func() map[string]any {
			return map[string]any{"processed": eng.ProcessedCount()}
		}, nil)
		webSrv.Start(ctx)
		defer webSrv.Shutdown(context.Background())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	backoff := time.Duration(cfg.Publisher.BackoffMinutes) * time.Minute
	var backoffUntil time.Time

	logger.Info(ctx, "Bot started", "poll_seconds", cfg.PollSeconds, "provider", cfg.LLM.Provider)

	scan(ctx, cfg, eng, source, fallback, notifier, &backoffUntil, backoff)
	for {
		select {
		case <-tick.C:
			scan(ctx, cfg, eng, source, fallback, notifier, &backoffUntil, backoff)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			return
		case <-ctx.Done():
			return
		}
	}
}

// scan fetches the feed and processes the most recent unprocessed
// headline. One headline per scan keeps the posting rate gentle and
// makes the first run post at most once.
func scan(ctx context.Context, cfg *store.Config, eng *pipeline.Engine,
	source, fallback interfaces.Feed, notifier notifierIface,
	backoffUntil *time.Time, backoff time.Duration) {

	if time.Now().Before(*backoffUntil) {
		logger.Debug(ctx, "In rate-limit backoff, skipping scan", "until", backoffUntil.Format(time.RFC3339))
		return
	}

	items, err := source.RecentItems(ctx, cfg.Feed.MaxResults)
	if err != nil {
		logger.ErrorWithErr(ctx, "Feed fetch failed", err)
		if fallback != nil {
			items, err = fallback.RecentItems(ctx, cfg.Feed.MaxResults)
			if err != nil {
				logger.ErrorWithErr(ctx, "Fallback scrape failed", err)
				return
			}
			logger.Info(ctx, "Using scraper fallback", "items", len(items))
		} else {
			return
		}
	}

	// Items arrive newest first; take the first one not yet handled.
	var next *types.Headline
	for i := range items {
		if !eng.Seen(items[i].SourceID) {
			next = &items[i]
			break
		}
	}
	if next == nil {
		logger.Debug(ctx, "No new headlines", "fetched", len(items))
		return
	}

	res, err := eng.Process(ctx, *next)
	if err != nil && errors.Is(err, social.ErrRateLimited) {
		*backoffUntil = time.Now().Add(backoff)
		logger.Warn(ctx, "Publisher rate limited, backing off",
			"until", backoffUntil.Format(time.RFC3339))
		if notifier != nil {
			if nerr := notifier.Backoff(*backoffUntil); nerr != nil {
				logger.Warn(ctx, "Backoff notification failed", "error", nerr)
			}
		}
		return
	}

	if res.SkipReason != types.SkipAlreadyProcessed {
		if lerr := tradelog.AppendDecision(res); lerr != nil {
			logger.Warn(ctx, "Failed to append decision log", "error", lerr)
		}
	}

	if res.Outcome == types.OutcomePublished && notifier != nil {
		if nerr := notifier.Published(res.Instrument, res.PostID); nerr != nil {
			logger.Warn(ctx, "Publish notification failed", "error", nerr)
		}
	}
}

// notifierIface keeps scan testable without a live Telegram client.
type notifierIface interface {
	Backoff(until time.Time) error
	Published(instrument, postID string) error
}
