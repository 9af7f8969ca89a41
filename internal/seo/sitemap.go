package seo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Routes are the public pages listed in the sitemap.
var Routes = []string{
	"/",
	"/about",
	"/contact",
	"/downloads",
	"/events",
	"/gallery",
	"/hero-intro",
	"/news",
	"/notices",
	"/publications",
	"/videos",
}

// SitemapEntry is one <url> element.
type SitemapEntry struct {
	Location   string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// SitemapEntries lists Routes on siteURL. The root has priority 1.0, the rest 0.7.
func SitemapEntries(siteURL string, now time.Time) []SitemapEntry {
	base := siteBase(siteURL)
	entries := make([]SitemapEntry, 0, len(Routes))
	for _, route := range Routes {
		entry := SitemapEntry{LastMod: now, ChangeFreq: "weekly", Priority: 0.7}
		if route == "/" {
			entry.Location = base
			entry.Priority = 1.0
		} else {
			entry.Location = base + route
		}
		entries = append(entries, entry)
	}
	return entries
}

// Sitemap renders the sitemap XML document.
func Sitemap(siteURL string, now time.Time) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range SitemapEntries(siteURL, now) {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", entry.ChangeFreq))
		builder.WriteString(fmt.Sprintf("    <priority>%.1f</priority>\n", entry.Priority))
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

// Robots allows everything and points at the sitemap.
func Robots(siteURL string) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", siteBase(siteURL)))
	return builder.String()
}

func siteBase(siteURL string) string {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	return base
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
