package content

import "context"

type runIDKey struct{}

// WithRunID tags a context with the pipeline run id so attempt records made
// deep inside drafting can be correlated back to the run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}
