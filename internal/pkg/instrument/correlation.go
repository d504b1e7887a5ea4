package instrument

import "context"

type correlationKey struct{}

// SetCorrelationID returns a copy of ctx carrying id.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the correlation id stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
