package main

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"piriven.moe.gov.lk/web/internal/cms"
	handlersPkg "piriven.moe.gov.lk/web/internal/handlers"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/richtext"
	"piriven.moe.gov.lk/web/internal/settle"
)

// AboutTab is one entry of the about page sidebar.
type AboutTab struct {
	Slug   string
	Label  string
	Href   string
	Active bool
}

// AboutView backs /about.
type AboutView struct {
	NavTitle    string
	NavEmpty    string
	Tabs        []AboutTab
	Title       string
	Body        template.HTML
	Placeholder string
	Fallback    bool
	Error       string
}

// AboutHandler renders the about sections with ?section= selecting one. Local
// markdown content stands in when the CMS has none.
func AboutHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var (
		about    aboutResult
		snippets cms.Snippets
	)

	g := newGroup(r)
	settle.Fetch(g, "about_sections", &about, fetchAbout)
	settle.Fetch(g, "text_snippets", &snippets, cmsClient.TextSnippets)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "about", res)

	view := buildAboutView(lang, about, snippets, strings.TrimSpace(r.URL.Query().Get("section")))
	view.Error = sectionError(lang, res.Err("about_sections"))

	title := i18nOrDefault(lang, "about.title", "About")
	vm := newPageData(r, title, i18nOrDefault(lang, "about.description", ""), "about-menu", "about-content")
	vm.Footer = footer.build(lang)
	vm.About = view
	renderPage(w, r, "about", vm)
}

type aboutResult struct {
	sections []cms.AboutSection
	fallback bool
}

func fetchAbout(ctx context.Context) (aboutResult, error) {
	sections, fallback, err := cmsClient.AboutSectionsOrFallback(ctx)
	return aboutResult{sections: sections, fallback: fallback}, err
}

func buildAboutView(lang i18n.Lang, about aboutResult, snippets cms.Snippets, selected string) AboutView {
	view := AboutView{
		NavTitle:    handlersPkg.SnippetText(snippets, "about_nav_title", lang, i18nOrDefault(lang, "about.nav_title", "Ministry Overview")),
		NavEmpty:    handlersPkg.SnippetText(snippets, "about_nav_empty", lang, i18nOrDefault(lang, "about.nav_empty", "No sections available yet.")),
		Placeholder: handlersPkg.SnippetText(snippets, "about_section_empty", lang, i18nOrDefault(lang, "about.section_empty", "Content will appear here once it is added in the admin.")),
		Fallback:    about.fallback,
	}
	untitled := handlersPkg.SnippetText(snippets, "about_nav_untitled", lang, i18nOrDefault(lang, "about.nav_untitled", "Untitled section"))

	var current *cms.AboutSection
	for i := range about.sections {
		s := &about.sections[i]
		if current == nil && (selected == "" || s.Slug == selected) {
			current = s
		}
	}
	if current == nil && len(about.sections) > 0 {
		current = &about.sections[0]
	}
	for i := range about.sections {
		s := &about.sections[i]
		label := i18n.Prefer(s.NavLabel, s.NavLabelSi, lang)
		if label == "" {
			label = i18n.Prefer(s.Title, s.TitleSi, lang)
		}
		if label == "" {
			label = untitled
		}
		view.Tabs = append(view.Tabs, AboutTab{
			Slug:   s.Slug,
			Label:  label,
			Href:   "/about?section=" + url.QueryEscape(s.Slug),
			Active: s == current,
		})
	}
	if current == nil {
		view.Title = handlersPkg.SnippetText(snippets, "about_section_placeholder_title", lang, i18nOrDefault(lang, "about.placeholder_title", "About this section"))
		return view
	}
	view.Title = i18n.Prefer(current.Title, current.TitleSi, lang)
	body := i18n.Prefer(current.Body, current.BodySi, lang)
	if current.Markdown {
		view.Body = richtext.Markdown(body)
	} else {
		view.Body = richtext.Body(body)
	}
	return view
}

// HeroIntroView backs /hero-intro, the full welcome text.
type HeroIntroView struct {
	Hero  handlersPkg.HeroView
	Error string
}

// HeroIntroHandler renders the full explanation behind the home page welcome
// block.
func HeroIntroHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var (
		intro    *cms.HeroIntro
		snippets cms.Snippets
	)

	g := newGroup(r)
	settle.Fetch(g, "hero_intro", &intro, cmsClient.HeroIntro)
	settle.Fetch(g, "text_snippets", &snippets, cmsClient.TextSnippets)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "hero_intro", res)

	view := HeroIntroView{Hero: handlersPkg.BuildHero(lang, intro, snippets)}
	if !res.OK("hero_intro") {
		view.Error = i18nOrDefault(lang, "hero_intro.error", "Unable to load introduction details at this time.")
	}

	title := view.Hero.Heading
	if title == "" {
		title = i18nOrDefault(lang, "hero_intro.title", "Introduction")
	}
	vm := newPageData(r, title, richtext.Excerpt(view.Hero.Preview, 160), "intro-header", "intro-body")
	vm.Footer = footer.build(lang)
	vm.HeroIntro = view
	renderPage(w, r, "hero_intro", vm)
}
