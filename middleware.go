package forms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/reglet-forms/component"
)

// SaveFunc saves one field value and reports whether it was stored.
type SaveFunc func(ctx context.Context, f *component.Field, value any, itemID string) bool

// Middleware wraps a SaveFunc to add cross-cutting behavior. Middleware
// executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	audit := func(next forms.SaveFunc) forms.SaveFunc {
//	    return func(ctx context.Context, f *component.Field, v any, itemID string) bool {
//	        ok := next(ctx, f, v, itemID)
//	        record(f.ID(), ok)
//	        return ok
//	    }
//	}
type Middleware func(next SaveFunc) SaveFunc

func chain(final SaveFunc, mws []Middleware) SaveFunc {
	h := final
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// PanicRecoveryMiddleware turns a panic raised by a sanitize or value
// callback into a failed save.
func PanicRecoveryMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SaveFunc) SaveFunc {
		return func(ctx context.Context, f *component.Field, value any, itemID string) (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("field save panicked",
						"field", f.ID(), "request_id", RequestIDFrom(ctx), "panic", fmt.Sprint(r))
					ok = false
				}
			}()
			return next(ctx, f, value, itemID)
		}
	}
}

// LoggingMiddleware logs every save at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SaveFunc) SaveFunc {
		return func(ctx context.Context, f *component.Field, value any, itemID string) bool {
			start := time.Now()
			ok := next(ctx, f, value, itemID)
			logger.Debug("field saved",
				"field", f.ID(),
				"namespace", f.Namespace().String(),
				"item_id", itemID,
				"saved", ok,
				"request_id", RequestIDFrom(ctx),
				"duration", time.Since(start))
			return ok
		}
	}
}

type requestIDKey struct{}

// WithRequestID returns ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id carried by ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
