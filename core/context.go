package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	analysisIDKey     contextKey = "analysisID"
)

// WithSuppressHeader marks the context so analysis runs skip the console header.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withAnalysisID stores the tracked run ID in the context.
func withAnalysisID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// analysisIDFrom returns the tracked run ID, or 0 when the run is not tracked.
func analysisIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(analysisIDKey).(int64)
	return id
}
