package seo

import (
	"fmt"
	"html/template"
	"strings"
)

// SiteName is the short name used in titles.
const SiteName = "Division of Piriven Education"

// DefaultDescription is used when a page has nothing more specific.
const DefaultDescription = "Official portal of the Division of Piriven & Bhikkhu Education sharing news, publications, events, and resources for Sri Lankan Piriven institutions."

// ThemeColor is the browser theme colour.
const ThemeColor = "#8b0000"

const titleTemplate = "%s | " + SiteName

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is one hreflang link.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []template.JS
}

// Title applies the site title template. An empty page title yields the site name.
func Title(page string) string {
	page = strings.TrimSpace(page)
	if page == "" {
		return SiteName
	}
	return fmt.Sprintf(titleTemplate, page)
}

// Alternates returns the en and si variants of path on siteURL. The
// Sinhala variant carries ?lang=si.
func Alternates(siteURL, path string) []Alternate {
	base := strings.TrimRight(siteURL, "/")
	if path == "" || path == "/" {
		path = "/"
	}
	href := base + path
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return []Alternate{
		{Href: href, Hreflang: "en"},
		{Href: href + sep + "lang=si", Hreflang: "si"},
		{Href: href, Hreflang: "x-default"},
	}
}
