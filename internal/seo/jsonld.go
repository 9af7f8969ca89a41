package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script wraps a JSON-LD payload for a <script type="application/ld+json"> body.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// PostalAddress is a schema.org postal address.
type PostalAddress struct {
	Street   string
	Locality string
	Region   string
	Country  string
}

// GovernmentOrganization describes the ministry division.
func GovernmentOrganization(name, url, logoURL, telephone string, addr PostalAddress, languages ...string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "GovernmentOrganization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	if telephone != "" {
		m["telephone"] = telephone
	}
	if addr != (PostalAddress{}) {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   addr.Street,
			"addressLocality": addr.Locality,
			"addressRegion":   addr.Region,
			"addressCountry":  addr.Country,
		}
	}
	if len(languages) > 0 {
		m["contactPoint"] = map[string]any{
			"@type":             "ContactPoint",
			"contactType":       "customer service",
			"telephone":         telephone,
			"availableLanguage": languages,
		}
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string, languages ...string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if len(languages) > 0 {
		m["inLanguage"] = languages
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Article returns a NewsArticle payload published by publisher.
func Article(headline, url, imageURL, publisher, datePublished string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "NewsArticle",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if publisher != "" {
		m["publisher"] = map[string]any{"@type": "GovernmentOrganization", "name": publisher}
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	return m
}
