package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"piriven.moe.gov.lk/web/internal/i18n"
)

const (
	// LangCookieName holds the persisted language preference.
	LangCookieName = "lang"
	// LangQueryParam overrides the preference for a single request.
	LangQueryParam = "lang"

	langCookieTTL = 365 * 24 * time.Hour
)

// Locale resolves the language once per request: ?lang= override, then the
// lang cookie, then i18n.Default. The override is never persisted here.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := resolveLang(r)
		w.Header().Set("Content-Language", lang.String())
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}

func resolveLang(r *http.Request) i18n.Lang {
	if q := r.URL.Query().Get(LangQueryParam); q != "" {
		if l, ok := i18n.Parse(q); ok {
			return l
		}
	}
	if c, err := r.Cookie(LangCookieName); err == nil {
		if l, ok := i18n.Parse(c.Value); ok {
			return l
		}
	}
	return i18n.Default
}

// Lang returns the language snapshot for the current request.
func Lang(r *http.Request) i18n.Lang {
	return PreferenceFrom(r.Context())
}

// SetLangCookie persists the language preference. Only the toggle action calls it.
func SetLangCookie(w http.ResponseWriter, r *http.Request, l i18n.Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    l.String(),
		Path:     "/",
		Secure:   cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(langCookieTTL),
		MaxAge:   int(langCookieTTL / time.Second),
	})
}

// VaryLocale marks dynamic responses as depending on the preference cookie.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")
		next.ServeHTTP(w, r)
	})
}

// SafeNext returns next when it is a local absolute path, otherwise "/".
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	// drop a stale ?lang= so the cookie decides after a toggle
	q := u.Query()
	if q.Has(LangQueryParam) {
		q.Del(LangQueryParam)
		u.RawQuery = q.Encode()
	}
	return u.RequestURI()
}
