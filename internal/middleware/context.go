package middleware

import (
	"context"

	"piriven.moe.gov.lk/web/internal/i18n"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID    ctxKey = "req_id"
	ctxKeyIsHTMX       ctxKey = "is_htmx"
	ctxKeySession      ctxKey = "session"
	ctxKeyLang         ctxKey = "lang"
	ctxKeyCookieSecure ctxKey = "cookie_secure"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithLang stores the language snapshot used for the whole request.
func WithLang(ctx context.Context, l i18n.Lang) context.Context {
	return context.WithValue(ctx, ctxKeyLang, l)
}

// PreferenceFrom returns the request language or i18n.Default.
func PreferenceFrom(ctx context.Context) i18n.Lang {
	if v, ok := ctx.Value(ctxKeyLang).(i18n.Lang); ok && v.Valid() {
		return v
	}
	return i18n.Default
}
