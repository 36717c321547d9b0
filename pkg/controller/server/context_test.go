package server_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/insper-comp/compiler-tester/pkg/controller/server"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

func TestDetachContext(t *testing.T) {
	t.Run("inherits logger, request ID, and clock", func(t *testing.T) {
		originalCtx := context.Background()

		customLogger := slog.Default().With("component", "test")
		originalCtx = logging.With(originalCtx, customLogger)

		reqID, originalCtx := logging.CtxRequestID(originalCtx)

		fixedTime := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
		originalCtx = logging.CtxWithTime(originalCtx, func() time.Time {
			return fixedTime
		})

		bgCtx := server.DetachContext(originalCtx)

		gt.V(t, logging.From(bgCtx)).Equal(customLogger)

		inheritedReqID, _ := logging.CtxRequestID(bgCtx)
		gt.V(t, inheritedReqID).Equal(reqID)

		gt.V(t, logging.CtxTime(bgCtx)).Equal(fixedTime)
	})

	t.Run("survives cancellation of the original context", func(t *testing.T) {
		originalCtx, cancel := context.WithCancel(context.Background())
		bgCtx := server.DetachContext(originalCtx)

		cancel()

		gt.V(t, originalCtx.Err()).Equal(context.Canceled)
		gt.V(t, bgCtx.Err()).Equal(nil)
	})
}
