package main

import (
	"net/http"

	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/seo"
)

// LangHandler is the only writer of the language preference. It stores ?to=
// (or the opposite of the current language) and returns to ?next=.
func LangHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, ok := i18n.Parse(q.Get("to"))
	if !ok {
		target = mw.Lang(r).Toggle()
	}
	mw.SetLangCookie(w, r, target)
	http.Redirect(w, r, mw.SafeNext(q.Get("next")), http.StatusSeeOther)
}

// NotFoundHandler renders the localized 404 page without touching the CMS.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	title := i18nOrDefault(lang, "notfound.title", "Page not found")
	vm := newPageData(r, title, i18nOrDefault(lang, "notfound.body", "The page you are looking for does not exist."))
	vm.SEO.Robots = "noindex"
	vm.Footer = footerFallback(lang)
	renderPageStatus(w, r, http.StatusNotFound, "notfound", vm)
}

// SitemapHandler serves sitemap.xml for the static routes.
func SitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(seo.Sitemap(siteURL, nowFunc())))
}

// RobotsHandler serves robots.txt.
func RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.Robots(siteURL)))
}
