package handlers

import (
	"strings"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/richtext"
)

// Snippet keys used by the home page.
const (
	SnippetHeroHeading        = "home_hero_heading"
	SnippetHeroHighlight      = "home_hero_highlight"
	SnippetHeroDescription    = "home_hero_description"
	SnippetHeroPrimaryLabel   = "home_hero_primary_label"
	SnippetHeroSecondaryLabel = "home_hero_secondary_label"
	SnippetHeroEmpty          = "home_hero_empty"
)

const (
	defaultHeroEmpty        = "Welcome section content will appear here once configured in the admin."
	defaultHeroPrimaryURL   = "/hero-intro"
	defaultHeroSecondaryURL = "#"
)

// SnippetText returns the localized snippet for key, or def when the snippet
// is missing or blank.
func SnippetText(snippets cms.Snippets, key string, lang i18n.Lang, def string) string {
	s, ok := snippets.Get(key)
	if !ok {
		return def
	}
	if text := i18n.Prefer(s.Text, s.TextSi, lang); strings.TrimSpace(text) != "" {
		return text
	}
	return def
}

// HeroView is the welcome block of the home page.
type HeroView struct {
	Configured     bool
	Heading        string
	Highlight      string
	Preview        string
	Paragraphs     []string
	PrimaryLabel   string
	PrimaryURL     string
	SecondaryLabel string
	SecondaryURL   string
	Empty          string
}

// BuildHero resolves the welcome block. Snippets fill blank fields of a
// configured intro; without an intro only the empty message is shown.
func BuildHero(lang i18n.Lang, intro *cms.HeroIntro, snippets cms.Snippets) HeroView {
	view := HeroView{Empty: SnippetText(snippets, SnippetHeroEmpty, lang, defaultHeroEmpty)}
	if intro == nil {
		return view
	}
	pick := func(primary, secondary, key string) string {
		if v := i18n.Prefer(primary, secondary, lang); strings.TrimSpace(v) != "" {
			return v
		}
		return SnippetText(snippets, key, lang, "")
	}
	view.Configured = true
	view.Heading = pick(intro.Heading, intro.HeadingSi, SnippetHeroHeading)
	view.Highlight = pick(intro.Highlight, intro.HighlightSi, SnippetHeroHighlight)
	description := pick(intro.Description, intro.DescriptionSi, SnippetHeroDescription)
	view.Preview = richtext.Excerpt(description, richtext.DefaultExcerptLimit)
	view.Paragraphs = richtext.Paragraphs(description)
	view.PrimaryLabel = pick(intro.PrimaryLabel, intro.PrimaryLabelSi, SnippetHeroPrimaryLabel)
	view.SecondaryLabel = pick(intro.SecondaryLabel, intro.SecondaryLabelSi, SnippetHeroSecondaryLabel)
	view.PrimaryURL = localHref(intro.PrimaryURL, defaultHeroPrimaryURL)
	view.SecondaryURL = localHref(intro.SecondaryURL, defaultHeroSecondaryURL)
	return view
}

// localHref returns u, or def when blank. Bare page names become root paths.
func localHref(u, def string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return def
	}
	if strings.Contains(u, "://") || strings.HasPrefix(u, "/") || strings.HasPrefix(u, "#") ||
		strings.HasPrefix(u, "mailto:") || strings.HasPrefix(u, "tel:") {
		return u
	}
	return "/" + u
}
