package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mw "piriven.moe.gov.lk/web/internal/middleware"
)

// newRouter wires middleware and routes. Package globals must be initialised
// first (see setup).
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(mw.RequestLogger(logger, metrics))
	r.Use(mw.Recoverer(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.Security(devMode))

	// Machine endpoints stay outside the session, locale and CSRF stack.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if statusChecker != nil {
		r.Method(http.MethodGet, "/readyz", statusChecker.Handler())
	}
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	r.Handle("/assets/*", mw.AssetsWithCache(publicDir, devMode))
	r.Get("/sitemap.xml", SitemapHandler)
	r.Get("/robots.txt", RobotsHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session(mw.SessionOptions{SigningKey: sessionKey, Secure: secureCookies, Logger: logger}))
		r.Use(mw.Locale)
		r.Use(mw.CSRF)
		r.Use(mw.VaryLocale)

		r.Get("/lang", LangHandler)

		r.Get("/", HomeHandler)
		r.Get("/about", AboutHandler)
		r.Get("/hero-intro", HeroIntroHandler)
		r.Get("/news", NewsHandler)
		r.Get("/news/{slug}", NewsDetailHandler)
		r.Get("/notices", NoticesHandler)
		r.Get("/notices/{id}", NoticeDetailHandler)
		r.Get("/events", EventsHandler)
		r.Get("/downloads", DownloadsHandler)
		r.Get("/publications", PublicationsHandler)
		r.Get("/videos", VideosHandler)
		r.Get("/gallery", GalleryHandler)
		r.Get("/contact", ContactHandler)
		r.Post("/contact", ContactSubmitHandler)
		r.Post("/newsletter", NewsletterHandler)

		r.NotFound(NotFoundHandler)
	})
	return r
}
