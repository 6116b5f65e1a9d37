package interfaces

import (
	"context"

	"scryptbot/internal/types"
)

// Pipeline decides Skip vs Publish for one headline.
type Pipeline interface {
	Process(ctx context.Context, h types.Headline) (types.StepResult, error)
}

// Trader applies company sentiment to the paper portfolio.
type Trader interface {
	Apply(ctx context.Context, companies []types.Company) bool
}
