// Command feedwatch follows a financial news account, analyzes each new
// post for company mentions, replies with a sentiment breakdown, and
// mirrors the signals into the paper trading portfolio.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"scryptbot/internal/analysis"
	"scryptbot/internal/compose"
	"scryptbot/internal/logger"
	"scryptbot/internal/marketdata"
	"scryptbot/internal/notify"
	"scryptbot/internal/paper"
	"scryptbot/internal/social"
	"scryptbot/internal/storage"
	"scryptbot/internal/store"
	"scryptbot/internal/trace"
	"scryptbot/internal/tradelog"
	"scryptbot/internal/types"
	"scryptbot/internal/web"
)

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type watcher struct {
	cfg      *store.Config
	client   *social.Client
	finder   *analysis.Finder
	trader   *paper.Engine
	store    *storage.Store
	notifier *notify.Notifier
	eastern  *time.Location

	processed    map[string]struct{}
	backoffUntil time.Time
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadConfig("config.yaml")
	must(err)
	if cfg.Feed.Account == "" {
		must(errors.New("feed.account must be set for feedwatch"))
	}

	readToken, err := store.RequireEnv("SOCIAL_BEARER_TOKEN")
	must(err)
	writeToken, err := store.RequireEnv("SOCIAL_ACCESS_TOKEN")
	must(err)

	st, err := storage.New(filepath.Join(cfg.DataDir, "feedwatch"))
	must(err)

	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		eastern = time.UTC
		logger.Warn(ctx, "Eastern timezone unavailable, using UTC for market hours")
	}

	w := &watcher{
		cfg: cfg,
		client: social.NewClient(social.Params{
			BaseURL:    os.Getenv("SOCIAL_API_URL"),
			UploadURL:  os.Getenv("SOCIAL_UPLOAD_URL"),
			ReadToken:  readToken,
			WriteToken: writeToken,
		}),
		finder: analysis.NewFinder(cfg.Trading.MaxCompanies, cfg.Trading.Blacklist),
		trader: paper.NewEngine(paper.Params{
			Market:       marketdata.NewClient(os.Getenv("MARKET_DATA_URL")),
			Store:        st,
			StartingCash: cfg.Trading.StartingCash,
			CashReserve:  cfg.Trading.CashReserve,
			Blacklist:    cfg.Trading.Blacklist,
			RealMoney:    cfg.Trading.RealMoney,
			Persist:      cfg.Trading.PersistPortfolio,
		}),
		store:     st,
		eastern:   eastern,
		processed: st.LoadProcessedIDs(),
	}

	if cfg.Notify.TelegramEnabled {
		if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" && cfg.Notify.ChatID != "" {
			if n, err := notify.NewNotifier(token, cfg.Notify.ChatID); err == nil {
				w.notifier = n
			} else {
				logger.ErrorWithErr(ctx, "Failed to initialize Telegram notifier, disabling", err)
			}
		}
	}

	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web.Addr, func() map[string]any {
			return map[string]any{"processed": len(w.processed), "account": cfg.Feed.Account}
		}, func() map[string]any {
			return w.trader.Summary(context.Background())
		})
		srv.Start(ctx)
		defer srv.Shutdown(context.Background())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Feed watcher started", "account", cfg.Feed.Account, "poll_seconds", cfg.PollSeconds)

	w.scan(ctx)
	for {
		select {
		case <-tick.C:
			w.scan(ctx)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			return
		case <-ctx.Done():
			return
		}
	}
}

// scan handles the most recent unprocessed post from the watched
// account: reshare, analysis reply, then paper trades.
func (w *watcher) scan(ctx context.Context) {
	if time.Now().Before(w.backoffUntil) {
		logger.Debug(ctx, "In rate-limit backoff, skipping scan")
		return
	}

	posts, err := w.client.RecentPosts(ctx, w.cfg.Feed.Account, w.cfg.Feed.MaxResults)
	if err != nil {
		if errors.Is(err, social.ErrRateLimited) {
			w.backOff(ctx)
		} else {
			logger.ErrorWithErr(ctx, "Timeline fetch failed", err)
		}
		return
	}

	var next *types.Headline
	for i := range posts {
		if _, seen := w.processed[posts[i].SourceID]; !seen {
			next = &posts[i]
			break
		}
	}
	if next == nil {
		logger.Debug(ctx, "No new posts", "fetched", len(posts))
		return
	}

	w.handle(ctx, *next)
}

func (w *watcher) handle(ctx context.Context, post types.Headline) {
	defer w.markProcessed(ctx, post.SourceID)

	companies := w.finder.Find(post.Text)
	if len(companies) == 0 {
		logger.Debug(ctx, "No company mentions", "source_id", post.SourceID)
		return
	}
	logger.Info(ctx, "Companies found in post", "source_id", post.SourceID, "count", len(companies))

	if !w.client.Reshare(ctx, post.SourceID) {
		logger.Warn(ctx, "Reshare failed, continuing", "source_id", post.SourceID)
	}

	// Brief pause between the reshare and the reply keeps the two
	// posts from landing in the same platform burst window.
	if d := w.cfg.Publisher.PostDelaySecs; d > 0 {
		time.Sleep(time.Duration(d) * time.Second)
	}

	reply := compose.Analysis(companies, time.Now().In(w.eastern))
	if _, err := w.client.Reply(ctx, reply, post.SourceID); err != nil {
		if errors.Is(err, social.ErrRateLimited) {
			w.backOff(ctx)
		} else {
			logger.ErrorWithErr(ctx, "Analysis reply failed", err, "source_id", post.SourceID)
		}
	}

	if !w.marketOpen(time.Now()) {
		logger.Info(ctx, "Outside market hours, trades are simulated on stale prices")
	}

	before := len(w.trader.History())
	if w.trader.Apply(ctx, companies) {
		for _, rec := range w.trader.History()[before:] {
			if err := tradelog.Append(rec); err != nil {
				logger.Warn(ctx, "Failed to append trade log", "error", err)
			}
			if w.notifier != nil {
				if err := w.notifier.Trade(rec); err != nil {
					logger.Warn(ctx, "Trade notification failed", "error", err)
				}
			}
		}
	}
}

func (w *watcher) markProcessed(ctx context.Context, sourceID string) {
	w.processed[sourceID] = struct{}{}
	if err := w.store.SaveProcessedIDs(w.processed); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist processed ids", err)
	}
}

func (w *watcher) backOff(ctx context.Context) {
	w.backoffUntil = time.Now().Add(time.Duration(w.cfg.Publisher.BackoffMinutes) * time.Minute)
	logger.Warn(ctx, "Rate limited, backing off", "until", w.backoffUntil.Format(time.RFC3339))
	if w.notifier != nil {
		if err := w.notifier.Backoff(w.backoffUntil); err != nil {
			logger.Warn(ctx, "Backoff notification failed", "error", err)
		}
	}
}

func (w *watcher) marketOpen(now time.Time) bool {
	t := now.In(w.eastern)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	mh := w.cfg.MarketHours
	mins := t.Hour()*60 + t.Minute()
	return mins >= mh.OpenHour*60+mh.OpenMinute && mins < mh.CloseHour*60+mh.CloseMinute
}
