package noop

import (
	"context"

	"scryptbot/internal/logger"
	"scryptbot/internal/types"
)

// Oracle is a fallback used when no LLM provider is configured.
type Oracle struct{}

// New returns an oracle whose judgments are never actionable.
func New() *Oracle {
	return &Oracle{}
}

// Judge implements the oracle interface. It always returns a neutral
// ignore judgment, so nothing ever reaches the publisher.
func (o *Oracle) Judge(ctx context.Context, headline string) (types.Judgment, error) {
	logger.Debug(ctx, "Noop oracle called - always returns ignore", "headline", headline)
	return types.Judgment{
		Summary:   headline,
		Sentiment: "neutral",
		Action:    "ignore",
	}, nil
}
