package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/echocache"
	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/nav"
	"piriven.moe.gov.lk/web/internal/richtext"
	"piriven.moe.gov.lk/web/internal/settle"
)

// NoticesListView backs /notices.
type NoticesListView struct {
	Items []NoticeCard
	Error string
}

// NoticesHandler renders the announcement list.
func NoticesHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var items []cms.Notice

	started := time.Now()
	g := newGroup(r)
	settle.Fetch(g, "notices", &items, cmsClient.Notices)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "notices", res)
	echoNotices(r, items, started)

	view := NoticesListView{Error: sectionError(lang, res.Err("notices"))}
	for _, n := range items {
		view.Items = append(view.Items, buildNoticeCard(lang, n))
	}

	title := i18nOrDefault(lang, "notices.title", "Notices")
	vm := newPageData(r, title, i18nOrDefault(lang, "notices.description", ""), "notices-header", "notices-list")
	vm.Footer = footer.build(lang)
	vm.Notices = view
	renderPage(w, r, "notices", vm)
}

// NoticeDetailHandler renders one notice. A failed fetch keeps the echoed
// notice visible and adds the error line.
func NoticeDetailHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var detail *echocache.Detail[cms.Notice]
	g := newGroup(r)
	g.Go("notice_detail", func(ctx context.Context) error {
		detail = echocache.Fetch(ctx, noticeEcho, echocache.NoticeKey(id), func(ctx context.Context) (cms.Notice, error) {
			return cmsClient.Notice(ctx, id)
		})
		return detail.Err()
	})
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "notice_detail", res)
	if detail == nil {
		detail = &echocache.Detail[cms.Notice]{}
	}

	view := buildNoticeView(lang, detail)
	title := view.Title
	if title == "" {
		title = i18nOrDefault(lang, "notices.title", "Notices")
	}
	vm := newPageData(r, title, "", "notice")
	vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, view.Title)
	vm.Footer = footer.build(lang)
	vm.Notice = view
	renderPageStatus(w, r, detailStatus(view.HasValue, detail.Err()), "notice_detail", vm)
}

func buildNoticeView(lang i18n.Lang, d *echocache.Detail[cms.Notice]) DetailView {
	view := DetailView{
		State:     d.State().String(),
		Stale:     d.Stale(),
		Error:     sectionError(lang, d.Err()),
		BackHref:  "/notices",
		BackLabel: i18nOrDefault(lang, "notices.back", "Back to all notices"),
	}
	n, ok := d.Value()
	if !ok {
		return view
	}
	view.HasValue = true
	view.Title = i18n.Prefer(n.Title, n.TitleSi, lang)
	view.Image = cmsClient.MediaURL(n.Image)
	view.Body = richtext.Body(i18n.Prefer(n.Content, n.ContentSi, lang))
	view.Gallery = buildImages(lang, n.GalleryImages)
	if !n.PublishedAt.IsZero() {
		view.Date = format.Date(n.PublishedAt.Time, lang.String())
	}
	if !n.ExpiresAt.IsZero() {
		view.Expires = format.Date(n.ExpiresAt.Time, lang.String())
	}
	return view
}
