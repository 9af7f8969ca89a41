package main

import (
	"context"
	"net/http"
	"time"

	"piriven.moe.gov.lk/web/internal/cms"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/settle"
)

var (
	featuredBookParams = cms.Params{"is_featured": "true", "is_active": "true", "ordering": "-published_at"}
	activeBookParams   = cms.Params{"is_active": "true", "ordering": "-published_at"}
)

// HomeHandler renders the landing page. Every section is fetched
// independently; failed sections render their own error line.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var src homeSources

	started := time.Now()
	g := newGroup(r)
	settle.Fetch(g, "hero_intro", &src.intro, cmsClient.HeroIntro)
	settle.Fetch(g, "text_snippets", &src.snippets, cmsClient.TextSnippets)
	settle.Fetch(g, "slides", &src.slides, cmsClient.Slides)
	settle.Fetch(g, "news", &src.news, cmsClient.FeaturedNews)
	settle.Fetch(g, "notices", &src.notices, cmsClient.Notices)
	settle.Fetch(g, "videos", &src.videos, cmsClient.Videos)
	settle.Fetch(g, "stats", &src.stats, cmsClient.Stats)
	settle.Fetch(g, "links", &src.links, cmsClient.Links)
	settle.Fetch(g, "albums", &src.albums, func(ctx context.Context) ([]cms.Album, error) {
		return cmsClient.Albums(ctx, nil)
	})
	settle.Fetch(g, "books", &src.books, homeBooks)
	settle.Fetch(g, "events", &src.events, cmsClient.Events)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "home", res)

	echoNews(r, src.news, started)
	echoNotices(r, src.notices, started)

	title := i18nOrDefault(lang, "home.title", "Home")
	vm := newPageData(r, title, "", homeRegions...)
	vm.SEO.Title = i18nOrDefault(lang, "site.title", "Piriven & Bhikkhu Education | Ministry of Education")
	vm.SEO.OG.Title = vm.SEO.Title
	vm.Footer = footer.build(lang)
	vm.Home = buildHomeView(lang, src, res, nowFunc())

	renderPage(w, r, "home", vm)
}

// homeBooks lists featured books, falling back to the newest active ones.
func homeBooks(ctx context.Context) ([]cms.Book, error) {
	books, err := cmsClient.Books(ctx, featuredBookParams)
	if err != nil || len(books) > 0 {
		return books, err
	}
	return cmsClient.Books(ctx, activeBookParams)
}
