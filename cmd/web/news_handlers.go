package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/echocache"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/nav"
	"piriven.moe.gov.lk/web/internal/richtext"
	"piriven.moe.gov.lk/web/internal/seo"
	"piriven.moe.gov.lk/web/internal/settle"
)

// NewsHandler renders the article list.
func NewsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var items []cms.News

	started := time.Now()
	g := newGroup(r)
	settle.Fetch(g, "news", &items, func(ctx context.Context) ([]cms.News, error) {
		return cmsClient.News(ctx, nil)
	})
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "news", res)
	echoNews(r, items, started)

	title := i18nOrDefault(lang, "news.title", "News")
	vm := newPageData(r, title, i18nOrDefault(lang, "news.description", ""), "news-header", "news-list")
	vm.Footer = footer.build(lang)
	vm.NewsList = buildNewsList(lang, items, res.Err("news"))
	renderPage(w, r, "news", vm)
}

// NewsDetailHandler renders one article. An echoed copy from a list page is
// shown when the fresh fetch fails.
func NewsDetailHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))

	var detail *echocache.Detail[cms.News]
	g := newGroup(r)
	g.Go("news_detail", func(ctx context.Context) error {
		detail = echocache.Fetch(ctx, newsEcho, echocache.NewsKey(slug), func(ctx context.Context) (cms.News, error) {
			return cmsClient.NewsDetail(ctx, slug)
		})
		return detail.Err()
	})
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "news_detail", res)
	if detail == nil {
		detail = &echocache.Detail[cms.News]{}
	}

	view := buildArticleView(lang, detail)
	title := view.Title
	if title == "" {
		title = i18nOrDefault(lang, "news.title", "News")
	}
	n, _ := detail.Value()
	vm := newPageData(r, title, richtext.Excerpt(richtext.PlainText(i18n.Prefer(n.Excerpt, n.ExcerptSi, lang)), 160), "article")
	vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, view.Title)
	vm.Footer = footer.build(lang)
	vm.Article = view
	if view.HasValue {
		vm.SEO.OG.Type = "article"
		vm.SEO.OG.Image = view.Image
		vm.SEO.Twitter.Image = view.Image
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.Script(seo.Article(view.Title, vm.SEO.Canonical, view.Image, seo.SiteName, publishedISO(n.PublishedAt))))
	}
	renderPageStatus(w, r, detailStatus(view.HasValue, detail.Err()), "news_detail", vm)
}

// detailStatus is 404 only when nothing can be shown for a missing item.
func detailStatus(hasValue bool, err error) int {
	if !hasValue && errors.Is(err, cms.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// echoNews stores list items so their detail pages can pre-paint. fetched is
// when the list request started.
func echoNews(r *http.Request, items []cms.News, fetched time.Time) {
	for _, n := range items {
		if key := n.Key(); key != "" {
			newsEcho.Save(r.Context(), echocache.NewsKey(key), n, fetched)
		}
	}
}

// echoNotices stores notice list items for their detail pages.
func echoNotices(r *http.Request, items []cms.Notice, fetched time.Time) {
	for _, n := range items {
		if id := n.ID.String(); id != "" {
			noticeEcho.Save(r.Context(), echocache.NoticeKey(id), n, fetched)
		}
	}
}
