package oracleobs

import (
	"context"

	"scryptbot/internal/interfaces"
	"scryptbot/internal/logger"
	"scryptbot/internal/trace"
	"scryptbot/internal/types"
)

// observableOracle wraps an Oracle with observability (logging & tracing)
type observableOracle struct {
	oracle interfaces.Oracle
}

// Compile-time interface check
var _ interfaces.Oracle = (*observableOracle)(nil)

// Wrap wraps an oracle with observability middleware
func Wrap(oracle interfaces.Oracle) interfaces.Oracle {
	return &observableOracle{oracle: oracle}
}

// Judge requests a judgment with observability
func (oo *observableOracle) Judge(ctx context.Context, headline string) (types.Judgment, error) {
	ctx, span := trace.StartSpan(ctx, "oracle.Judge")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting headline judgment", "headline", headline)

	judgment, err := oo.oracle.Judge(ctx, headline)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Headline judgment failed", err, "headline", headline)
		return types.Judgment{}, err
	}

	logger.InfoSkip(ctx, 1, "Headline judgment received",
		"instrument", judgment.Instrument,
		"action", judgment.Action,
		"sentiment", judgment.Sentiment,
	)
	return judgment, nil
}
