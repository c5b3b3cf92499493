package logging

import "context"

type ctxKey struct{}

// WithRequestID returns a context carrying the request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFrom returns the correlation id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns base annotated with the request id in ctx, if any.
func FromContext(ctx context.Context, base Logger) Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return base.With(RequestID(id))
	}
	return base
}
