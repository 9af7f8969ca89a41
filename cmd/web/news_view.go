package main

import (
	"html/template"
	"time"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/echocache"
	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/richtext"
)

// NewsListView backs /news.
type NewsListView struct {
	Items []NewsCard
	Error string
}

// DetailView is the shared shape of the news and notice detail pages. When
// a fetch fails the echoed fields stay and Error is added next to them.
type DetailView struct {
	Title     string
	Date      string
	Time      string
	Expires   string
	Image     string
	Body      template.HTML
	Gallery   []ImageView
	HasValue  bool
	Stale     bool
	State     string
	Error     string
	BackHref  string
	BackLabel string
}

func buildNewsList(lang i18n.Lang, items []cms.News, err error) NewsListView {
	view := NewsListView{Error: sectionError(lang, err)}
	for i, n := range items {
		view.Items = append(view.Items, buildNewsCard(lang, n, i))
	}
	return view
}

func buildArticleView(lang i18n.Lang, d *echocache.Detail[cms.News]) DetailView {
	view := DetailView{
		State:     d.State().String(),
		Stale:     d.Stale(),
		Error:     sectionError(lang, d.Err()),
		BackHref:  "/news",
		BackLabel: i18nOrDefault(lang, "news.back", "Back to all news"),
	}
	n, ok := d.Value()
	if !ok {
		return view
	}
	view.HasValue = true
	view.Title = i18n.Prefer(n.Title, n.TitleSi, lang)
	view.Image = cmsClient.MediaURL(n.Image)
	view.Body = richtext.Body(i18n.Prefer(n.Content, n.ContentSi, lang))
	if view.Body == "" {
		view.Body = richtext.Body(i18n.Prefer(n.Excerpt, n.ExcerptSi, lang))
	}
	view.Gallery = buildImages(lang, n.GalleryImages)
	if !n.PublishedAt.IsZero() {
		view.Date = format.Date(n.PublishedAt.Time, lang.String())
		view.Time = format.Clock(n.PublishedAt.Time)
	}
	return view
}

func publishedISO(t cms.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
