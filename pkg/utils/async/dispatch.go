package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs a delivery handler in the background. The webhook controller
// uses it so the sender gets an immediate acknowledgement while the relay
// retries in its own goroutine.
//
// The handler gets a fresh background context that keeps the ctxlog logger
// but not the request's cancellation: the HTTP request finishing must not
// abort an in-flight delivery. Panics are recovered and logged, errors
// returned by the handler are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}
