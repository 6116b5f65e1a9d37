// Package pipeline implements the gating state machine that decides,
// for each fetched headline, whether to publish a signal post or skip.
// Gates run in a fixed order and short-circuit on the first rejection;
// every terminal state carries a typed reason.
package pipeline

import (
	"context"
	"strings"

	"scryptbot/internal/compose"
	"scryptbot/internal/dedup"
	"scryptbot/internal/interfaces"
	"scryptbot/internal/logger"
	"scryptbot/internal/storage"
	"scryptbot/internal/trace"
	"scryptbot/internal/types"
	"scryptbot/internal/universe"
)

// Params bundles the pipeline's collaborators and tuning knobs.
type Params struct {
	Oracle    interfaces.Oracle
	Publisher interfaces.Publisher
	Market    interfaces.MarketData // optional
	Chart     interfaces.ChartRenderer
	Universe  *universe.Universe
	Store     *storage.Store

	SimilarityThreshold float64
	WindowCapacity      int
	MaxPostLen          int
	ChartEnabled        bool
	ChartTimeframe      string

	// RetryFailed leaves a headline unrecorded on oracle error or
	// publish failure so the next poll retries it. The default marks
	// every examined headline processed regardless of outcome.
	RetryFailed bool
}

// Engine runs headlines through the gates. Not safe for concurrent use;
// the poll loop processes headlines one at a time.
type Engine struct {
	p Params

	processed map[string]struct{}
	hashes    map[string]struct{}
	window    *dedup.Window
}

// NewEngine builds an Engine and restores processed ids, headline
// hashes and the recent-summary window from the store.
func NewEngine(p Params) *Engine {
	if p.SimilarityThreshold <= 0 {
		p.SimilarityThreshold = 0.9
	}
	if p.WindowCapacity <= 0 {
		p.WindowCapacity = 50
	}
	if p.MaxPostLen <= 0 {
		p.MaxPostLen = compose.DefaultMaxLen
	}

	e := &Engine{
		p:         p,
		processed: p.Store.LoadProcessedIDs(),
		hashes:    p.Store.LoadHeadlineHashes(),
		window:    dedup.NewWindow(p.WindowCapacity),
	}
	e.window.Restore(p.Store.LoadRecentSummaries())
	return e
}

// Seen reports whether the source id has already been processed.
func (e *Engine) Seen(sourceID string) bool {
	_, ok := e.processed[sourceID]
	return ok
}

// ProcessedCount returns how many source ids have been recorded.
func (e *Engine) ProcessedCount() int {
	return len(e.processed)
}

func (e *Engine) markProcessed(ctx context.Context, sourceID string) {
	e.processed[sourceID] = struct{}{}
	if err := e.p.Store.SaveProcessedIDs(e.processed); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist processed ids", err)
	}
}

func (e *Engine) recordHash(ctx context.Context, hash string) {
	e.hashes[hash] = struct{}{}
	if err := e.p.Store.SaveHeadlineHashes(e.hashes); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist headline hashes", err)
	}
}

func (e *Engine) rememberSummary(ctx context.Context, summary string) {
	e.window.Add(summary)
	if err := e.p.Store.SaveRecentSummaries(e.window.Snapshot()); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist recent summaries", err)
	}
}

func skip(sourceID string, reason types.SkipReason) types.StepResult {
	return types.StepResult{SourceID: sourceID, Outcome: types.OutcomeSkipped, SkipReason: reason}
}

// normalizeInstrument uppercases the oracle's instrument and strips a
// trailing FX-style "=X" suffix.
func normalizeInstrument(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "=X")
	return s
}

// Process runs one headline through every gate. Gate rejections come
// back as skipped results with a nil error; a non-nil error means
// context cancellation or a publish failure the caller may want to
// inspect (rate limiting in particular).
func (e *Engine) Process(ctx context.Context, h types.Headline) (types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.process")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return types.StepResult{}, err
	}

	if e.Seen(h.SourceID) {
		logger.Debug(ctx, "Headline already processed", "source_id", h.SourceID)
		return skip(h.SourceID, types.SkipAlreadyProcessed), nil
	}

	hash := dedup.Hash(h.Text)
	if _, dup := e.hashes[hash]; dup {
		logger.Info(ctx, "Duplicate headline content, skipping", "source_id", h.SourceID)
		e.markProcessed(ctx, h.SourceID)
		return skip(h.SourceID, types.SkipDuplicateHash), nil
	}

	judgment, err := e.p.Oracle.Judge(ctx, h.Text)
	if err != nil {
		logger.ErrorWithErr(ctx, "Oracle judgment failed", err, "source_id", h.SourceID)
		if !e.p.RetryFailed {
			e.markProcessed(ctx, h.SourceID)
		}
		return skip(h.SourceID, types.SkipOracleError), nil
	}

	instrument := normalizeInstrument(judgment.Instrument)
	if instrument == "" || !e.p.Universe.Known(instrument) {
		logger.Info(ctx, "Instrument outside universe, skipping",
			"source_id", h.SourceID, "instrument", judgment.Instrument)
		e.markProcessed(ctx, h.SourceID)
		return skip(h.SourceID, types.SkipInvalidInstrument), nil
	}

	if e.window.AnySimilar(judgment.Summary, e.p.SimilarityThreshold) {
		logger.Info(ctx, "Summary too similar to a recent post, skipping",
			"source_id", h.SourceID, "summary", judgment.Summary)
		e.markProcessed(ctx, h.SourceID)
		return skip(h.SourceID, types.SkipSimilarSummary), nil
	}

	action := strings.ToLower(strings.TrimSpace(judgment.Action))
	if action != "buy" && action != "sell" {
		logger.Info(ctx, "Judgment not actionable, skipping",
			"source_id", h.SourceID, "action", judgment.Action)
		e.markProcessed(ctx, h.SourceID)
		return skip(h.SourceID, types.SkipNotActionable), nil
	}
	judgment.Action = action

	market := e.marketContext(ctx, instrument)
	text := compose.Compose(judgment, instrument, market, e.p.MaxPostLen)

	imagePath := ""
	if e.p.ChartEnabled && e.p.Chart != nil {
		path, err := e.p.Chart.Render(ctx, instrument, e.p.ChartTimeframe)
		if err != nil {
			logger.ErrorWithErr(ctx, "Chart render failed, posting without image", err, "instrument", instrument)
		} else {
			imagePath = path
		}
	}

	post, err := e.p.Publisher.Publish(ctx, text, imagePath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Publish failed", err, "source_id", h.SourceID)
		if !e.p.RetryFailed {
			e.markProcessed(ctx, h.SourceID)
		}
		return types.StepResult{
			SourceID:   h.SourceID,
			Outcome:    types.OutcomeSkipped,
			SkipReason: types.SkipPublishFailed,
			Instrument: instrument,
			Judgment:   &judgment,
		}, err
	}

	// The summary joins the window only once the post is out, so a
	// retried publish does not collide with itself.
	e.rememberSummary(ctx, judgment.Summary)
	e.recordHash(ctx, hash)
	e.markProcessed(ctx, h.SourceID)

	logger.Decision(ctx, instrument, action, 1.0, judgment.Rationale,
		"source_id", h.SourceID, "post_id", post.ID)

	return types.StepResult{
		SourceID:   h.SourceID,
		Outcome:    types.OutcomePublished,
		Instrument: instrument,
		Judgment:   &judgment,
		PostID:     post.ID,
	}, nil
}

func (e *Engine) marketContext(ctx context.Context, instrument string) types.MarketContext {
	var mc types.MarketContext
	if e.p.Market == nil {
		return mc
	}
	mc.Price, mc.HasPrice = e.p.Market.CurrentPrice(ctx, instrument)
	mc.DayLow, mc.DayHigh, mc.HasLowHigh = e.p.Market.RecentLowHigh(ctx, instrument)
	return mc
}
