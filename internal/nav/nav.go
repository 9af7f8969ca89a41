package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/about"
	LabelKey string // i18n key, e.g. "nav.about"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation shown in the header.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/downloads", LabelKey: "nav.downloads"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// Sections are pages reached from the home page and the footer.
var Sections = []Item{
	{Path: "/news", LabelKey: "nav.news"},
	{Path: "/notices", LabelKey: "nav.notices"},
	{Path: "/events", LabelKey: "nav.events"},
	{Path: "/publications", LabelKey: "nav.publications"},
	{Path: "/videos", LabelKey: "nav.videos"},
	{Path: "/gallery", LabelKey: "nav.gallery"},
	{Path: "/hero-intro", LabelKey: "nav.hero_intro"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	return render(Main, currentPath)
}

// BuildSections renders the secondary section links.
func BuildSections(currentPath string) []RenderedItem {
	return render(Sections, currentPath)
}

func render(list []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(list))
	for _, it := range list {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/news" or "/news/..."
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - Known sections use their nav label keys
// - Deeper segments use a prettified segment unless a label is supplied
func Breadcrumbs(currentPath string, leaf ...string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	if len(parts) > 0 && parts[0] != "" {
		top := "/" + parts[0]
		crumbs = append(crumbs, Crumb{Href: top, LabelKey: labelKeyFor(top), Label: titleFromSegment(parts[0]), Active: len(parts) == 1})
	}

	if len(parts) > 1 {
		href := "/" + parts[0]
		for i := 1; i < len(parts); i++ {
			href = href + "/" + parts[i]
			label := titleFromSegment(parts[i])
			if i == len(parts)-1 && len(leaf) > 0 && strings.TrimSpace(leaf[0]) != "" {
				label = leaf[0]
			}
			crumbs = append(crumbs, Crumb{
				Href:   href,
				Label:  label,
				Active: i == len(parts)-1,
			})
		}
	}
	return crumbs
}

func labelKeyFor(top string) string {
	for _, list := range [][]Item{Main, Sections} {
		for _, it := range list {
			if it.Path == top {
				return it.LabelKey
			}
		}
	}
	return ""
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// slugs are ASCII
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
