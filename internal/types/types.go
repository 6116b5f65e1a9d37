package types

import "time"

// Headline is one unit of incoming news text with its source identifier.
// Immutable once fetched; consumed exactly once per poll cycle.
type Headline struct {
	SourceID  string
	Text      string
	Link      string
	AuthorID  string
	FetchedAt time.Time
}

// Judgment is the validated structured output of the AI oracle.
// All fields are populated once Validate has accepted the raw output.
type Judgment struct {
	Summary        string `json:"summary"`
	Sentiment      string `json:"sentiment"`
	Instrument     string `json:"instrument"`
	Action         string `json:"action"`
	Rationale      string `json:"rationale"`
	ExpectedImpact string `json:"expected_impact"`
}

// Company is one company mention extracted from a feed post, with a
// sentiment score in [-1, 1].
type Company struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Sentiment float64 `json:"sentiment"`
}

// Strategy is the trading intent derived from a company's sentiment.
type Strategy struct {
	Company   string
	Ticker    string
	Sentiment float64
	Action    string // "buy", "sell", or "hold"
	Reason    string
}

// TradeRecord is one entry in the paper portfolio's history.
// Records are append-only and never mutated.
type TradeRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Ticker    string    `json:"ticker"`
	Action    string    `json:"action"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Value     float64   `json:"value"`
	CashAfter float64   `json:"cash_after"`
	Sentiment float64   `json:"sentiment"`
}

// Position is a held paper position. Quantity is always > 0; a position
// that reaches zero is removed from the portfolio.
type Position struct {
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost"`
	AvgPrice float64 `json:"avg_price"`
}

// MarketContext carries the market data the composer renders. Absent
// values stay zero and their lines are omitted from the post.
type MarketContext struct {
	Price      float64
	HasPrice   bool
	DayLow     float64
	DayHigh    float64
	HasLowHigh bool
}

// Post is the result of a successful publish.
type Post struct {
	ID   string
	Text string
}

// Outcome is the terminal state of the gating pipeline for one headline.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
)

// SkipReason identifies which gate rejected a headline.
type SkipReason string

const (
	SkipNone              SkipReason = ""
	SkipAlreadyProcessed  SkipReason = "already_processed"
	SkipDuplicateHash     SkipReason = "duplicate_hash"
	SkipOracleError       SkipReason = "oracle_error"
	SkipInvalidInstrument SkipReason = "invalid_instrument"
	SkipSimilarSummary    SkipReason = "similar_summary"
	SkipNotActionable     SkipReason = "not_actionable"
	SkipPublishFailed     SkipReason = "publish_failed"
)

// StepResult reports what the pipeline did with one headline.
type StepResult struct {
	SourceID   string     `json:"source_id"`
	Outcome    Outcome    `json:"outcome"`
	SkipReason SkipReason `json:"skip_reason,omitempty"`
	Instrument string     `json:"instrument,omitempty"`
	Judgment   *Judgment  `json:"judgment,omitempty"`
	PostID     string     `json:"post_id,omitempty"`
}
