// Package richtext turns CMS-authored HTML and local markdown into markup that
// is safe to inject into pages. It is the only place that produces
// template.HTML from CMS text.
package richtext

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// DefaultExcerptLimit is the rune budget of a hero description preview.
const DefaultExcerptLimit = 650

const ellipsis = "…"

var (
	embedSource = regexp.MustCompile(`^https://(www\.youtube\.com/embed/|www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/|www\.google\.com/maps(/embed)?\?)`)
	targetBlank = regexp.MustCompile(`^_blank$`)
	spaceRun    = regexp.MustCompile(`\s+`)

	policyOnce sync.Once
	policy     *bluemonday.Policy

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
)

// Policy returns the shared sanitization policy.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = newContentPolicy()
	})
	return policy
}

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "div", "img")
	p.AllowAttrs("loading").OnElements("img")
	p.AllowAttrs("target").Matching(targetBlank).OnElements("a")
	p.RequireNoFollowOnLinks(true)

	p.AllowElements("iframe")
	p.AllowAttrs("src").Matching(embedSource).OnElements("iframe")
	p.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("iframe")
	p.AllowAttrs("title", "allow", "loading", "referrerpolicy").OnElements("iframe")
	p.AllowAttrs("allowfullscreen").Matching(regexp.MustCompile(`^(|allowfullscreen|true)$`)).OnElements("iframe")
	return p
}

// Sanitize cleans CMS HTML for direct injection.
func Sanitize(raw string) template.HTML {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return template.HTML(Policy().Sanitize(raw))
}

// Markdown renders src as GitHub flavoured markdown and sanitizes the result.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(Policy().SanitizeBytes(buf.Bytes()))
}

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed. Script and style contents are dropped.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt collapses whitespace in text and cuts it to at most limit runes on
// a word boundary. A cut excerpt loses trailing punctuation and ends in "…".
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if !unicode.IsSpace(runes[limit]) {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	cut = strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return cut + ellipsis
}

// Paragraphs splits text on blank-or-single newlines, dropping empty lines.
func Paragraphs(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Body renders a CMS body field. Text containing any tag goes through the
// sanitizer; text without tags becomes escaped paragraphs.
func Body(text string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if HasMarkup(text) {
		return Sanitize(text)
	}
	var b strings.Builder
	for _, p := range Paragraphs(text) {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// HasMarkup reports whether text contains at least one HTML tag.
func HasMarkup(text string) bool {
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}
