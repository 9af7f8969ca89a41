package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/echocache"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/observability"
)

// fakeCMS serves canned API responses under /api and counts requests per path.
type fakeCMS struct {
	mu     sync.Mutex
	hits   map[string]int
	routes map[string]http.HandlerFunc
}

func (f *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	f.mu.Lock()
	f.hits[path]++
	h := f.routes[path]
	f.mu.Unlock()
	if h != nil {
		h(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"results":[]}`))
}

func (f *fakeCMS) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeCMS) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func jsonBody(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

// newTestRouter builds the production router against a fake content API.
func newTestRouter(t *testing.T, routes map[string]http.HandlerFunc) (http.Handler, *fakeCMS) {
	t.Helper()
	// ensure templates reparse each request and set correct paths
	devMode = true
	templatesDir = "../../templates"
	publicDir = "../../public"
	localesDir = "../../locales"
	_, err := parseTemplates()
	require.NoError(t, err, "parseTemplates")

	i18nBundle, err = i18n.Load(localesDir, i18n.Default)
	require.NoError(t, err, "load i18n")

	fake := &fakeCMS{hits: map[string]int{}, routes: routes}
	api := httptest.NewServer(fake)
	t.Cleanup(api.Close)

	metrics = observability.NewMetrics()
	cmsClient = cms.NewClient(api.URL+"/api", cms.WithMetrics(metrics), cms.WithContentDir(t.TempDir()))
	store := echocache.NewMemory(time.Hour)
	newsEcho = echocache.New[cms.News](store, "news", metrics)
	noticeEcho = echocache.New[cms.Notice](store, "notice", metrics)
	siteURL = "https://piriven.test"
	sessionKey = "test-signing-key"
	secureCookies = false
	statusChecker = nil
	nowFunc = func() time.Time { return testNow }
	return newRouter(), fake
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

var enCookie = &http.Cookie{Name: "lang", Value: "en"}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestHealthzOK(t *testing.T) {
	srv, _ := newTestRouter(t, nil)
	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestNewsListFollowsLanguagePreference(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/": jsonBody(http.StatusOK, `{"results":[{"id":1,"title":"Hello","title_si":"ආයුබෝවන්"}]}`),
	})

	rec := get(t, srv, "/news")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "ආයුබෝවන්", strings.TrimSpace(doc.Find(".card h3").First().Text()))
	require.Equal(t, "si", doc.Find("html").AttrOr("lang", ""))

	rec = get(t, srv, "/news", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hello", strings.TrimSpace(parseDoc(t, rec).Find(".card h3").First().Text()))

	rec = get(t, srv, "/news?lang=en")
	require.Equal(t, "Hello", strings.TrimSpace(parseDoc(t, rec).Find(".card h3").First().Text()))
	for _, c := range rec.Result().Cookies() {
		require.NotEqual(t, "lang", c.Name, "?lang= must not persist the preference")
	}
}

func TestNewsListShowsErrorLine(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/": jsonBody(http.StatusInternalServerError, `{"detail":"boom"}`),
	})
	rec := get(t, srv, "/news", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := parseDoc(t, rec).Find(".section-error").First().Text()
	require.Contains(t, msg, "Error:")
	require.Contains(t, msg, "(500)")
}

// contactSession performs a GET to obtain the session and CSRF cookies.
func contactSession(t *testing.T, srv http.Handler) (string, []*http.Cookie) {
	t.Helper()
	rec := get(t, srv, "/contact", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var token string
	cookies := []*http.Cookie{enCookie}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			token = c.Value
		}
		cookies = append(cookies, c)
	}
	require.NotEmpty(t, token, "missing csrf_token cookie")
	return token, cookies
}

func postForm(t *testing.T, srv http.Handler, target string, form url.Values, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestContactInvalidSubmissionSkipsCMS(t *testing.T) {
	srv, fake := newTestRouter(t, nil)
	token, cookies := contactSession(t, srv)
	before := fake.total()

	rec := postForm(t, srv, "/contact", url.Values{
		"_csrf":   {token},
		"name":    {"Ananda"},
		"email":   {"ananda@example.com"},
		"message": {"   "},
	}, cookies, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := parseDoc(t, rec)
	require.Contains(t, doc.Find(".field-error").Text(), "Please enter a message.")
	require.Equal(t, "Ananda", doc.Find(`input[name="name"]`).AttrOr("value", ""))
	require.Equal(t, before, fake.total(), "no content API request expected")
	require.Zero(t, fake.count("/contact/"))
}

func TestContactSubmissionRedirectsWithFlash(t *testing.T) {
	srv, fake := newTestRouter(t, map[string]http.HandlerFunc{
		"/contact/": jsonBody(http.StatusCreated, `{"id":7}`),
	})
	token, cookies := contactSession(t, srv)

	rec := postForm(t, srv, "/contact", url.Values{
		"_csrf":   {token},
		"name":    {"Ananda"},
		"email":   {"ananda@example.com"},
		"message": {"When does registration open?"},
	}, cookies, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/contact", rec.Header().Get("Location"))
	require.Equal(t, 1, fake.count("/contact/"))

	session := cookieValue(rec, "PIRIVEN_WEB_SESSION")
	require.NotEmpty(t, session)
	for i, c := range cookies {
		if c.Name == "PIRIVEN_WEB_SESSION" {
			cookies[i] = &http.Cookie{Name: c.Name, Value: session}
		}
	}
	follow := get(t, srv, "/contact", cookies...)
	require.Contains(t, parseDoc(t, follow).Find(".flash").Text(), "Your message has been sent")
}

func TestContactRejectsMissingCSRF(t *testing.T) {
	srv, fake := newTestRouter(t, nil)
	_, cookies := contactSession(t, srv)
	rec := postForm(t, srv, "/contact", url.Values{"name": {"A"}}, cookies, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Zero(t, fake.count("/contact/"))
}

func TestNewsletterFragment(t *testing.T) {
	srv, fake := newTestRouter(t, map[string]http.HandlerFunc{
		"/newsletter/": jsonBody(http.StatusCreated, `{"email":"a@example.com"}`),
	})
	token, cookies := contactSession(t, srv)
	rec := postForm(t, srv, "/newsletter", url.Values{"email": {"a@example.com"}, "next": {"/news"}}, cookies, map[string]string{
		"HX-Request":   "true",
		"X-CSRF-Token": token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, 1, doc.Find("form.newsletter").Length())
	require.Contains(t, doc.Find(".form-success").Text(), "Thank you for subscribing!")
	require.Equal(t, 1, fake.count("/newsletter/"))
}

func TestNewsletterRejectsInvalidEmailWithoutCMS(t *testing.T) {
	srv, fake := newTestRouter(t, nil)
	token, cookies := contactSession(t, srv)
	rec := postForm(t, srv, "/newsletter", url.Values{"email": {"not-an-email"}}, cookies, map[string]string{
		"HX-Request":   "true",
		"X-CSRF-Token": token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, parseDoc(t, rec).Find(".form-error").Text(), "valid email")
	require.Zero(t, fake.count("/newsletter/"))
}

func TestNewsletterPlainPostFlashesReason(t *testing.T) {
	srv, fake := newTestRouter(t, map[string]http.HandlerFunc{
		"/newsletter/": jsonBody(http.StatusBadRequest, `{"email":["Email already subscribed."]}`),
	})
	token, cookies := contactSession(t, srv)

	rec := postForm(t, srv, "/newsletter", url.Values{
		"_csrf": {token},
		"email": {"a@example.com"},
		"next":  {"/news"},
	}, cookies, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/news", rec.Header().Get("Location"))
	require.Equal(t, 1, fake.count("/newsletter/"))

	session := cookieValue(rec, "PIRIVEN_WEB_SESSION")
	require.NotEmpty(t, session)
	for i, c := range cookies {
		if c.Name == "PIRIVEN_WEB_SESSION" {
			cookies[i] = &http.Cookie{Name: c.Name, Value: session}
		}
	}
	follow := get(t, srv, "/contact", cookies...)
	require.Contains(t, parseDoc(t, follow).Find(".flash").Text(), "Email already subscribed.")
}

func TestHeroIntroFailureShowsMessage(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/hero-intro/": jsonBody(http.StatusBadGateway, `{"detail":"down"}`),
	})
	rec := get(t, srv, "/hero-intro", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, parseDoc(t, rec).Find(".section-error").Text(), "Unable to load introduction details")

	srv, _ = newTestRouter(t, map[string]http.HandlerFunc{
		"/hero-intro/": jsonBody(http.StatusOK, `[{"id":1,"heading":"Welcome","description":"First.\nSecond."}]`),
	})
	doc := parseDoc(t, get(t, srv, "/hero-intro", enCookie))
	require.Zero(t, doc.Find(".section-error").Length())
	require.Equal(t, 3, doc.Find("#intro-body .prose p").Length())
}

func TestVideosEmptyPlaceholder(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/videos/": jsonBody(http.StatusOK, `[]`),
	})
	rec := get(t, srv, "/videos", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Contains(t, doc.Find("#videos-list .placeholder").Text(), "No videos published yet.")
	require.Zero(t, doc.Find(".section-error").Length())
}

func TestNoticeDetailKeepsEchoOnFailure(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/notices/":    jsonBody(http.StatusOK, `{"results":[{"id":42,"title":"Exam timetable","title_si":"විභාග කාලසටහන"}]}`),
		"/notices/42/": jsonBody(http.StatusInternalServerError, `{"detail":"down"}`),
	})

	list := get(t, srv, "/notices", enCookie)
	require.Equal(t, http.StatusOK, list.Code)
	require.Equal(t, "/notices/42", parseDoc(t, list).Find(".notice a").AttrOr("href", ""))

	rec := get(t, srv, "/notices/42", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "Exam timetable", strings.TrimSpace(doc.Find("article.detail h1").Text()))
	require.Contains(t, doc.Find("article.detail .section-error").Text(), "Error:")
	require.Equal(t, "failed", doc.Find("article.detail").AttrOr("data-state", ""))
}

func TestNewsDetailNotFound(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/missing/": jsonBody(http.StatusNotFound, `{"detail":"Not found."}`),
	})
	rec := get(t, srv, "/news/missing", enCookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsDetailRendersArticle(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/sangha-day/": jsonBody(http.StatusOK, `{"id":3,"slug":"sangha-day","title":"Sangha Day","content":"<p>Celebrations <script>x()</script>held.</p>","published_at":"2024-03-01T10:30:00Z"}`),
	})
	rec := get(t, srv, "/news/sangha-day", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "Sangha Day", strings.TrimSpace(doc.Find("article.detail h1").Text()))
	require.Contains(t, doc.Find(".prose").Text(), "Celebrations")
	require.Zero(t, doc.Find(".prose script").Length())
	require.Equal(t, "article", doc.Find(`meta[property="og:type"]`).AttrOr("content", ""))
}

func TestNewsDetailInlineMarkup(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/poya/": jsonBody(http.StatusOK, `{"id":4,"slug":"poya","title":"Poya","content":"Celebrations held on <b>Poya</b> day.<br>All welcome."}`),
	})
	rec := get(t, srv, "/news/poya", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "Poya", strings.TrimSpace(doc.Find(".prose b").Text()))
	require.Equal(t, 1, doc.Find(".prose br").Length())
	require.NotContains(t, doc.Find(".prose").Text(), "<b>")
}

func TestLangToggleSetsCookieAndRedirects(t *testing.T) {
	srv, _ := newTestRouter(t, nil)

	rec := get(t, srv, "/lang?to=en&next=/news")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/news", rec.Header().Get("Location"))
	require.Equal(t, "en", cookieValue(rec, "lang"))

	rec = get(t, srv, "/lang?next=//evil.example", enCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, "si", cookieValue(rec, "lang"))
}

func TestHomeRendersRegions(t *testing.T) {
	srv, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"/news/featured/": jsonBody(http.StatusOK, `{"results":[{"id":1,"slug":"first","title":"First"}]}`),
		"/stats/":         jsonBody(http.StatusInternalServerError, `{}`),
	})
	rec := get(t, srv, "/", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "/news/first", doc.Find("#news .card a").AttrOr("href", ""))
	require.True(t, doc.Find("#news").HasClass("reveal-hidden"))
	require.NotEmpty(t, doc.Find("body").AttrOr("data-reveal-threshold", ""))
	require.Equal(t, 1, doc.Find("table.calendar").Length())
	require.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), "GovernmentOrganization")
}

func TestAboutFallsBackToLocalContent(t *testing.T) {
	srv, _ := newTestRouter(t, nil)
	cmsClient = cms.NewClient(cmsClient.BaseURL(), cms.WithContentDir("../../content"))
	rec := get(t, srv, "/about?section=vision-mission", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "Vision and Mission", strings.TrimSpace(doc.Find("#about-content h1").Text()))
	require.Equal(t, 2, doc.Find(".side-menu li").Length())
}

func TestDownloadsAndGalleryPlaceholders(t *testing.T) {
	srv, _ := newTestRouter(t, nil)

	rec := get(t, srv, "/downloads", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, parseDoc(t, rec).Find("#downloads-menu .placeholder").Text(), "No categories yet.")

	rec = get(t, srv, "/gallery", enCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, parseDoc(t, rec).Find("#gallery-albums .placeholder").Text(), "No albums yet.")
}

func TestNotFoundPage(t *testing.T) {
	srv, fake := newTestRouter(t, nil)
	rec := get(t, srv, "/no-such-page", enCookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := parseDoc(t, rec)
	require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
	require.Contains(t, doc.Find("h1").Text(), "Page not found")
	require.Zero(t, fake.total())
}

func TestSitemapAndRobots(t *testing.T) {
	srv, _ := newTestRouter(t, nil)

	rec := get(t, srv, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	require.Contains(t, rec.Body.String(), "<loc>https://piriven.test/news</loc>")

	rec = get(t, srv, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: https://piriven.test/sitemap.xml")
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestRouter(t, nil)
	rec := get(t, srv, "/news", enCookie)
	csp := rec.Header().Get("Content-Security-Policy")
	require.Contains(t, csp, "https://www.youtube.com")
	require.Contains(t, rec.Header().Values("Vary"), "Cookie")
}
