package api

import "context"

// RunIDHeader carries the fingerprint run ID on requests and responses.
const RunIDHeader = "X-Run-ID"

type runIDKey struct{}

// WithRunID stores id on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
