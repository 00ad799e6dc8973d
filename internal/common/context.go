package common

import "context"

type contextKey string

const clientIPKey contextKey = "clientIP"

// WithClientIP stores the caller's network address for audit writes.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the address stored by WithClientIP, or "unknown" for
// flows with no network caller (maintenance jobs, tests).
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
