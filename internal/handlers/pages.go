package handlers

import (
	"html/template"

	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/nav"
	"piriven.moe.gov.lk/web/internal/reveal"
	"piriven.moe.gov.lk/web/internal/seo"
)

// PageData is the view model shared by every page rendered in the base layout.
type PageData struct {
	Title     string
	Lang      i18n.Lang
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Sections    []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// LangSwitch links to the toggle action for the other language.
	LangSwitch LangSwitch
	CSRFToken  string
	Flash      string
	Footer     FooterData
	Reveal     *reveal.Set
	RevealBody template.HTMLAttr
	Year       int

	// Optional per-page view model payloads
	Home         any
	NewsList     any
	Article      any
	Notices      any
	Notice       any
	Events       any
	Videos       any
	Downloads    any
	Publications any
	Gallery      any
	About        any
	HeroIntro    any
	Contact      any
}

// LangSwitch is the header language control.
type LangSwitch struct {
	Current i18n.Lang
	Other   i18n.Lang
	Href    string
}
