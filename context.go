package portal

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a correlation ID to ctx. The Client sends it as
// the X-Request-ID header and stamps it on audit events; when absent, a
// fresh UUID is generated per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
