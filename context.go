package dineauth

import "context"

type deviceIDContextKey struct{}
type requestIDContextKey struct{}

// WithDeviceID attaches a stable device identifier to ctx. It is sent as the
// X-Device-ID header on authentication requests and recorded on audit events,
// letting the backend distinguish terminals that share one account.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithRequestID attaches a caller-chosen request identifier to ctx. When
// absent, a fresh UUID is generated per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
