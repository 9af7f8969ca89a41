package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/settle"
)

// VideosView backs /videos.
type VideosView struct {
	Items []VideoView
	Error string
}

// VideosHandler renders published videos. An empty list is a placeholder,
// not an error.
func VideosHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var items []cms.Video

	g := newGroup(r)
	settle.Fetch(g, "videos", &items, cmsClient.Videos)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "videos", res)

	view := VideosView{Error: sectionError(lang, res.Err("videos"))}
	for _, v := range items {
		view.Items = append(view.Items, buildVideo(lang, v))
	}

	title := i18nOrDefault(lang, "videos.title", "Videos")
	vm := newPageData(r, title, i18nOrDefault(lang, "videos.description", ""), "videos-header", "videos-list")
	vm.Footer = footer.build(lang)
	vm.Videos = view
	renderPage(w, r, "videos", vm)
}

// AlbumTab is one album filter on the gallery page.
type AlbumTab struct {
	Slug   string
	Title  string
	Href   string
	Cover  string
	Count  int
	Active bool
}

// GalleryView backs /gallery.
type GalleryView struct {
	Albums      []AlbumTab
	AllHref     string
	AllActive   bool
	Images      []ImageView
	Description string
	Error       string
}

// GalleryHandler renders every album's photos, or one album with ?album=.
func GalleryHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var albums []cms.Album

	g := newGroup(r)
	settle.Fetch(g, "albums", &albums, func(ctx context.Context) ([]cms.Album, error) {
		return cmsClient.Albums(ctx, nil)
	})
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "gallery", res)

	q := r.URL.Query()
	selected := strings.TrimSpace(q.Get("album"))
	if selected == "" {
		selected = strings.TrimSpace(q.Get("slug"))
	}
	view := buildGalleryView(lang, albums, selected)
	view.Error = sectionError(lang, res.Err("albums"))

	title := i18nOrDefault(lang, "gallery.title", "Gallery")
	vm := newPageData(r, title, i18nOrDefault(lang, "gallery.description", ""), "gallery-albums", "gallery-grid")
	vm.Footer = footer.build(lang)
	vm.Gallery = view
	renderPage(w, r, "gallery", vm)
}

func buildGalleryView(lang i18n.Lang, albums []cms.Album, selected string) GalleryView {
	view := GalleryView{AllHref: "/gallery", AllActive: selected == ""}
	for _, a := range albums {
		tab := AlbumTab{
			Slug:   a.Slug,
			Title:  i18n.Prefer(a.Title, a.TitleSi, lang),
			Href:   "/gallery?album=" + url.QueryEscape(a.Slug),
			Cover:  cmsClient.MediaURL(a.Cover),
			Count:  len(a.Images),
			Active: selected != "" && a.Slug == selected,
		}
		view.Albums = append(view.Albums, tab)
		switch {
		case selected == "":
			view.Images = append(view.Images, buildImages(lang, a.Images)...)
		case tab.Active:
			view.Images = buildImages(lang, a.Images)
			view.Description = i18n.Prefer(a.Description, a.DescriptionSi, lang)
		}
	}
	return view
}
