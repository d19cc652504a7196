package llm

import "context"

// purposeKey carries the tutoring purpose of a call ("material",
// "test-eval", ...) through the context so the logging middleware can
// label the recorded event.
type purposeKey struct{}

// WithPurpose tags the context with the purpose of the next Generate
// call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom reads the purpose tag, defaulting to "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}
