package interfaces

import (
	"context"

	"scryptbot/internal/types"
)

// Oracle turns a raw headline into a structured trading judgment.
// A non-nil error is the "error judgment" case: callers must branch on
// it before reading any Judgment field.
type Oracle interface {
	Judge(ctx context.Context, headline string) (types.Judgment, error)
}
