package ctxutil

import "context"

type correlationKey struct{}

// Correlation ties log lines and responses for one request together.
type Correlation struct {
	TraceID   string
	RequestID string
}

func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	return context.WithValue(ctx, correlationKey{}, c)
}

func CorrelationFrom(ctx context.Context) (Correlation, bool) {
	if ctx == nil {
		return Correlation{}, false
	}
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}

// LogFields returns trace_id, request_id and owner_id key/value pairs for whatever is set on ctx.
func LogFields(ctx context.Context) []any {
	var out []any
	if c, ok := CorrelationFrom(ctx); ok {
		if c.TraceID != "" {
			out = append(out, "trace_id", c.TraceID)
		}
		if c.RequestID != "" {
			out = append(out, "request_id", c.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil {
		out = append(out, "owner_id", rd.OwnerID.String())
	}
	return out
}
