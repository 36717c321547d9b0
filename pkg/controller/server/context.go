package server

import (
	"context"

	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// DetachContext creates a new context.Background() based context that
// inherits logger, request ID, and time function from the original
// context. Used when a handler spawns a background goroutine: the
// request context is cancelled as soon as the response is written.
func DetachContext(ctx context.Context) context.Context {
	bgCtx := context.Background()
	bgCtx = logging.With(bgCtx, logging.From(ctx))
	bgCtx = logging.InheritContextValues(bgCtx, ctx)
	return bgCtx
}
