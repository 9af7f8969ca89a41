package main

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/settle"
)

var publicationsPageParams = cms.Params{"page_size": "100", "ordering": "-published_at"}

// BookView is one library publication.
type BookView struct {
	Title       string
	Subtitle    string
	Authors     string
	Description string
	Year        string
	Category    string
	Cover       string
	Href        string
	External    bool
	Published   string
}

func buildBook(lang i18n.Lang, b cms.Book) BookView {
	view := BookView{
		Title:       i18n.Prefer(b.Title, b.TitleSi, lang),
		Subtitle:    i18n.Prefer(b.Subtitle, b.SubtitleSi, lang),
		Authors:     i18n.Prefer(b.Authors, b.AuthorsSi, lang),
		Description: i18n.Prefer(b.Description, b.DescriptionSi, lang),
		Year:        b.Year.String(),
		Cover:       cmsClient.MediaURL(b.Cover),
		External:    strings.TrimSpace(b.ExternalURL) != "",
	}
	if view.External {
		view.Href = strings.TrimSpace(b.ExternalURL)
	} else {
		view.Href = cmsClient.MediaURL(b.Href())
	}
	if b.Category != nil {
		view.Category = i18n.Prefer(b.Category.Name, b.Category.NameSi, lang)
	}
	if !b.PublishedAt.IsZero() {
		view.Published = format.Date(b.PublishedAt.Time, lang.String())
	}
	return view
}

// PublicationsView backs /publications.
type PublicationsView struct {
	Items []BookView
	Error string
}

// PublicationsHandler renders the library.
func PublicationsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var items []cms.Book

	g := newGroup(r)
	settle.Fetch(g, "books", &items, func(ctx context.Context) ([]cms.Book, error) {
		return cmsClient.Books(ctx, publicationsPageParams)
	})
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "publications", res)

	view := PublicationsView{Error: sectionError(lang, res.Err("books"))}
	for _, b := range items {
		view.Items = append(view.Items, buildBook(lang, b))
	}

	title := i18nOrDefault(lang, "publications.title", "Publications")
	vm := newPageData(r, title, i18nOrDefault(lang, "publications.description", ""), "publications-header", "publications-list")
	vm.Footer = footer.build(lang)
	vm.Publications = view
	renderPage(w, r, "publications", vm)
}

// CategoryTab is one entry of the downloads sidebar.
type CategoryTab struct {
	ID     string
	Name   string
	Href   string
	Active bool
}

// DocumentView is one downloadable file.
type DocumentView struct {
	Title       string
	Description string
	Department  string
	Href        string
	External    bool
	Published   string
}

// DownloadsView backs /downloads.
type DownloadsView struct {
	Categories  []CategoryTab
	Selected    string
	Description string
	Documents   []DocumentView
	Error       string
}

// DownloadsHandler renders the document sidebar. ?category= selects a
// category; the first one is shown otherwise.
func DownloadsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var categories []cms.DownloadCategory

	g := newGroup(r)
	settle.Fetch(g, "download_categories", &categories, cmsClient.DownloadCategories)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "downloads", res)

	view := buildDownloadsView(lang, categories, strings.TrimSpace(r.URL.Query().Get("category")))
	view.Error = sectionError(lang, res.Err("download_categories"))

	title := i18nOrDefault(lang, "downloads.title", "Downloads")
	vm := newPageData(r, title, i18nOrDefault(lang, "downloads.description", ""), "downloads-menu", "downloads-content")
	vm.Footer = footer.build(lang)
	vm.Downloads = view
	renderPage(w, r, "downloads", vm)
}

func buildDownloadsView(lang i18n.Lang, categories []cms.DownloadCategory, selected string) DownloadsView {
	sorted := append([]cms.DownloadCategory(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	view := DownloadsView{}
	var current *cms.DownloadCategory
	for i := range sorted {
		c := &sorted[i]
		id := c.ID.String()
		if current == nil && (selected == "" || id == selected) {
			current = c
		}
		view.Categories = append(view.Categories, CategoryTab{
			ID:   id,
			Name: i18n.Prefer(c.Name, c.NameSi, lang),
			Href: "/downloads?category=" + id,
		})
	}
	if current == nil && len(sorted) > 0 {
		current = &sorted[0]
	}
	if current == nil {
		return view
	}
	for i := range view.Categories {
		view.Categories[i].Active = view.Categories[i].ID == current.ID.String()
	}
	view.Selected = i18n.Prefer(current.Name, current.NameSi, lang)
	view.Description = i18n.Prefer(current.Description, current.DescriptionSi, lang)
	for _, p := range current.Publications {
		href := strings.TrimSpace(p.ExternalURL)
		external := href != ""
		if !external {
			href = cmsClient.MediaURL(p.File)
		}
		doc := DocumentView{
			Title:       i18n.Prefer(p.Title, p.TitleSi, lang),
			Description: i18n.Prefer(p.Description, p.DescriptionSi, lang),
			Department:  i18n.Prefer(p.Department, p.DepartmentSi, lang),
			Href:        href,
			External:    external,
		}
		if !p.PublishedAt.IsZero() {
			doc.Published = format.Date(p.PublishedAt.Time, lang.String())
		}
		view.Documents = append(view.Documents, doc)
	}
	return view
}
