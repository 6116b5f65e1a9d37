package interfaces

import (
	"context"

	"scryptbot/internal/types"
)

// Publisher posts composed messages to the social platform.
type Publisher interface {
	Publish(ctx context.Context, text, imagePath string) (types.Post, error)
	Reply(ctx context.Context, text, inReplyTo string) (types.Post, error)
	Reshare(ctx context.Context, postID string) bool
}

// Feed returns recent items from a news source, newest first.
type Feed interface {
	RecentItems(ctx context.Context, max int) ([]types.Headline, error)
}

// ChartRenderer produces a chart image for a ticker, or an error when
// no chart could be rendered (the post then goes out without one).
type ChartRenderer interface {
	Render(ctx context.Context, ticker, timeframe string) (string, error)
}
