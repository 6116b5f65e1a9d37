package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryptbot/internal/storage"
	"scryptbot/internal/types"
	"scryptbot/internal/universe"
)

type fakeOracle struct {
	judgment types.Judgment
	err      error
	calls    int
}

func (f *fakeOracle) Judge(ctx context.Context, headline string) (types.Judgment, error) {
	f.calls++
	if f.err != nil {
		return types.Judgment{}, f.err
	}
	return f.judgment, nil
}

type fakePublisher struct {
	posts []string
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, text, imagePath string) (types.Post, error) {
	if f.err != nil {
		return types.Post{}, f.err
	}
	f.posts = append(f.posts, text)
	return types.Post{ID: "post-1", Text: text}, nil
}

func (f *fakePublisher) Reply(ctx context.Context, text, inReplyTo string) (types.Post, error) {
	return types.Post{ID: "reply-1", Text: text}, nil
}

func (f *fakePublisher) Reshare(ctx context.Context, postID string) bool { return true }

func goodJudgment() types.Judgment {
	return types.Judgment{
		Summary:    "Fed cuts rates by 25bps",
		Sentiment:  "positive",
		Instrument: "SPY",
		Action:     "buy",
		Rationale:  "Easing supports risk assets",
	}
}

func headline(id, text string) types.Headline {
	return types.Headline{SourceID: id, Text: text, FetchedAt: time.Now()}
}

func newTestEngine(t *testing.T, oracle *fakeOracle, pub *fakePublisher, retry bool) *Engine {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	uni, err := universe.Load("")
	require.NoError(t, err)
	return NewEngine(Params{
		Oracle:      oracle,
		Publisher:   pub,
		Universe:    uni,
		Store:       store,
		RetryFailed: retry,
	})
}

func TestProcessPublishesActionableHeadline(t *testing.T) {
	oracle := &fakeOracle{judgment: goodJudgment()}
	pub := &fakePublisher{}
	e := newTestEngine(t, oracle, pub, false)

	res, err := e.Process(context.Background(), headline("h1", "Fed cuts rates by 25 basis points"))
	require.NoError(t, err)

	assert.Equal(t, types.OutcomePublished, res.Outcome)
	assert.Equal(t, "SPY", res.Instrument)
	assert.Equal(t, "post-1", res.PostID)
	require.Len(t, pub.posts, 1)
	assert.Contains(t, pub.posts[0], "Fed cuts rates by 25bps")
}

func TestProcessIsIdempotentPerSourceID(t *testing.T) {
	oracle := &fakeOracle{judgment: goodJudgment()}
	pub := &fakePublisher{}
	e := newTestEngine(t, oracle, pub, false)

	h := headline("h1", "Fed cuts rates by 25 basis points")
	_, err := e.Process(context.Background(), h)
	require.NoError(t, err)

	res, err := e.Process(context.Background(), h)
	require.NoError(t, err)

	assert.Equal(t, types.SkipAlreadyProcessed, res.SkipReason)
	assert.Len(t, pub.posts, 1)
	assert.Equal(t, 1, oracle.calls, "second pass must not call the oracle")
}

func TestProcessSkipsDuplicateContentWithoutOracleCall(t *testing.T) {
	oracle := &fakeOracle{judgment: goodJudgment()}
	pub := &fakePublisher{}
	e := newTestEngine(t, oracle, pub, false)

	_, err := e.Process(context.Background(), headline("h1", "Oil surges on OPEC cuts!"))
	require.NoError(t, err)

	// Same content after normalization, different source id.
	res, err := e.Process(context.Background(), headline("h2", "OIL SURGES ON OPEC CUTS"))
	require.NoError(t, err)

	assert.Equal(t, types.SkipDuplicateHash, res.SkipReason)
	assert.Equal(t, 1, oracle.calls)
	assert.True(t, e.Seen("h2"), "duplicate must still be marked processed")
}

func TestProcessOracleErrorDefaultMarksProcessed(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model overloaded")}
	e := newTestEngine(t, oracle, &fakePublisher{}, false)

	res, err := e.Process(context.Background(), headline("h1", "CPI comes in hot"))
	require.NoError(t, err)

	assert.Equal(t, types.SkipOracleError, res.SkipReason)
	assert.True(t, e.Seen("h1"))
}

func TestProcessOracleErrorRetryModeLeavesUnrecorded(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model overloaded")}
	pub := &fakePublisher{}
	e := newTestEngine(t, oracle, pub, true)

	res, err := e.Process(context.Background(), headline("h1", "CPI comes in hot"))
	require.NoError(t, err)
	assert.Equal(t, types.SkipOracleError, res.SkipReason)
	assert.False(t, e.Seen("h1"), "retry mode must not record the id")

	// Oracle recovers; the same headline goes through on the next pass.
	oracle.err = nil
	oracle.judgment = goodJudgment()
	res, err = e.Process(context.Background(), headline("h1", "CPI comes in hot"))
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePublished, res.Outcome)
}

func TestProcessRejectsUnknownInstrument(t *testing.T) {
	j := goodJudgment()
	j.Instrument = "ZZZZZZ"
	e := newTestEngine(t, &fakeOracle{judgment: j}, &fakePublisher{}, false)

	res, err := e.Process(context.Background(), headline("h1", "Obscure penny stock rallies"))
	require.NoError(t, err)

	assert.Equal(t, types.SkipInvalidInstrument, res.SkipReason)
	assert.True(t, e.Seen("h1"))
}

func TestProcessNormalizesFXInstrument(t *testing.T) {
	j := goodJudgment()
	j.Instrument = "eurusd=X"
	pub := &fakePublisher{}
	e := newTestEngine(t, &fakeOracle{judgment: j}, pub, false)

	res, err := e.Process(context.Background(), headline("h1", "Euro rallies against the dollar"))
	require.NoError(t, err)

	assert.Equal(t, types.OutcomePublished, res.Outcome)
	assert.Equal(t, "EURUSD", res.Instrument)
}

func TestProcessSkipsSimilarSummary(t *testing.T) {
	first := goodJudgment()
	oracle := &fakeOracle{judgment: first}
	pub := &fakePublisher{}
	e := newTestEngine(t, oracle, pub, false)

	_, err := e.Process(context.Background(), headline("h1", "Fed cuts interest rates"))
	require.NoError(t, err)

	near := goodJudgment()
	near.Summary = "Fed cuts rates by 25 bps"
	oracle.judgment = near

	res, err := e.Process(context.Background(), headline("h2", "Federal Reserve lowers benchmark rate"))
	require.NoError(t, err)

	assert.Equal(t, types.SkipSimilarSummary, res.SkipReason)
	assert.Len(t, pub.posts, 1)
}

func TestProcessSkipsNonActionableJudgment(t *testing.T) {
	j := goodJudgment()
	j.Action = "hold"
	pub := &fakePublisher{}
	e := newTestEngine(t, &fakeOracle{judgment: j}, pub, false)

	res, err := e.Process(context.Background(), headline("h1", "Markets flat ahead of data"))
	require.NoError(t, err)

	assert.Equal(t, types.SkipNotActionable, res.SkipReason)
	assert.Empty(t, pub.posts)
}

func TestProcessPublishFailureRetryMode(t *testing.T) {
	oracle := &fakeOracle{judgment: goodJudgment()}
	pub := &fakePublisher{err: errors.New("rate limited")}
	e := newTestEngine(t, oracle, pub, true)

	res, err := e.Process(context.Background(), headline("h1", "Fed cuts rates"))
	require.Error(t, err)
	assert.Equal(t, types.SkipPublishFailed, res.SkipReason)
	assert.False(t, e.Seen("h1"))

	pub.err = nil
	res, err = e.Process(context.Background(), headline("h1", "Fed cuts rates"))
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePublished, res.Outcome)
}

func TestProcessEndToEndRecordsAllState(t *testing.T) {
	tickerFile := filepath.Join(t.TempDir(), "tickers.txt")
	require.NoError(t, os.WriteFile(tickerFile, []byte("AAPL\nMSFT\n"), 0o644))
	uni, err := universe.Load(tickerFile)
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)

	oracle := &fakeOracle{judgment: types.Judgment{
		Summary:    "Apple reports record profits",
		Sentiment:  "positive",
		Instrument: "AAPL",
		Action:     "buy",
		Rationale:  "Record quarter lifts the stock",
	}}
	pub := &fakePublisher{}
	e := NewEngine(Params{Oracle: oracle, Publisher: pub, Universe: uni, Store: store})

	res, err := e.Process(context.Background(), headline("h1", "Apple announces record profits"))
	require.NoError(t, err)

	assert.Equal(t, types.OutcomePublished, res.Outcome)
	assert.Len(t, pub.posts, 1)
	assert.Len(t, store.LoadProcessedIDs(), 1)
	assert.Len(t, store.LoadHeadlineHashes(), 1)
	assert.Equal(t, []string{"Apple reports record profits"}, store.LoadRecentSummaries())
}

func TestEngineRestoresStateFromStore(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)
	uni, err := universe.Load("")
	require.NoError(t, err)

	oracle := &fakeOracle{judgment: goodJudgment()}
	pub := &fakePublisher{}
	e := NewEngine(Params{Oracle: oracle, Publisher: pub, Universe: uni, Store: store})

	_, err = e.Process(context.Background(), headline("h1", "Fed cuts rates by 25 basis points"))
	require.NoError(t, err)

	// A fresh engine over the same store must remember everything.
	store2, err := storage.New(dir)
	require.NoError(t, err)
	e2 := NewEngine(Params{Oracle: oracle, Publisher: pub, Universe: uni, Store: store2})

	res, err := e2.Process(context.Background(), headline("h1", "Fed cuts rates by 25 basis points"))
	require.NoError(t, err)
	assert.Equal(t, types.SkipAlreadyProcessed, res.SkipReason)

	res, err = e2.Process(context.Background(), headline("h2", "FED CUTS RATES BY 25 BASIS POINTS"))
	require.NoError(t, err)
	assert.Equal(t, types.SkipDuplicateHash, res.SkipReason)
	assert.Len(t, pub.posts, 1)
}
