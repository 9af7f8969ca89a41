package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"piriven.moe.gov.lk/web/internal/observability"
)

const (
	defaultContentDir = "content"
	aboutKind         = "about"
)

// Languages with a directory under content/<kind>/.
const (
	contentLangPrimary   = "en"
	contentLangSecondary = "si"
)

type contentFrontMatter struct {
	Title     string `yaml:"title"`
	NavLabel  string `yaml:"nav_label"`
	Position  int    `yaml:"position"`
	UpdatedAt string `yaml:"updated_at"`
}

var (
	contentCache = struct {
		mu    sync.RWMutex
		items map[string]contentCacheEntry
	}{
		items: map[string]contentCacheEntry{},
	}
	contentCacheTTL = time.Minute * 5
)

type contentCacheEntry struct {
	sections []AboutSection
	expires  time.Time
}

// SetContentCacheDuration allows overriding the in-memory cache duration (primarily for tests).
func SetContentCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	contentCacheTTL = d
}

// ContentDir returns the configured fallback directory.
func (c *Client) ContentDir() string {
	if c == nil || strings.TrimSpace(c.contentDir) == "" {
		return defaultContentDir
	}
	return c.contentDir
}

// AboutSectionsOrFallback returns the CMS about sections. When the CMS fails or
// has none, sections are read from content/about/{en,si}/*.md instead and the
// second result is true. The CMS error is returned only when no local content
// exists either.
func (c *Client) AboutSectionsOrFallback(ctx context.Context) ([]AboutSection, bool, error) {
	sections, err := c.AboutSections(ctx)
	if err == nil && len(sections) > 0 {
		return sections, false, nil
	}
	local, localErr := LocalAboutSections(c.ContentDir())
	if localErr != nil {
		observability.FromContextOr(ctx, c.logger).Warn("about fallback unreadable", zap.Error(localErr))
	}
	if len(local) == 0 {
		return sections, false, err
	}
	return local, true, nil
}

// LocalAboutSections reads the markdown about sections under dir. Files with the
// same slug in en/ and si/ are merged into one bilingual section.
func LocalAboutSections(dir string) ([]AboutSection, error) {
	if strings.TrimSpace(dir) == "" {
		dir = defaultContentDir
	}
	key := filepath.Clean(dir) + "|" + aboutKind
	if cached, ok := cachedContent(key); ok {
		return cached, nil
	}

	bySlug := map[string]*AboutSection{}
	for _, lang := range []string{contentLangPrimary, contentLangSecondary} {
		root := filepath.Join(dir, aboutKind, lang)
		entries, err := os.ReadDir(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("cms: read %s: %w", root, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			slug := sanitizeSlug(strings.TrimSuffix(name, ".md"))
			if slug == "" {
				continue
			}
			page, err := readContentMarkdown(filepath.Join(root, name))
			if err != nil {
				return nil, err
			}
			section, ok := bySlug[slug]
			if !ok {
				section = &AboutSection{ID: ID(slug), Slug: slug, IsActive: true, Markdown: true}
				bySlug[slug] = section
			}
			page.applyTo(section, lang)
		}
	}

	out := make([]AboutSection, 0, len(bySlug))
	for _, s := range bySlug {
		if s.Title == "" && s.TitleSi == "" {
			s.Title = prettifySlug(s.Slug)
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Slug < out[j].Slug
	})
	storeContent(key, out)
	return cloneSections(out), nil
}

type contentPage struct {
	front     contentFrontMatter
	body      string
	updatedAt time.Time
}

func (p contentPage) applyTo(s *AboutSection, lang string) {
	title := strings.TrimSpace(p.front.Title)
	label := strings.TrimSpace(p.front.NavLabel)
	if lang == contentLangSecondary {
		s.TitleSi, s.NavLabelSi, s.BodySi = title, label, p.body
	} else {
		s.Title, s.NavLabel, s.Body = title, label, p.body
	}
	if lang == contentLangPrimary || s.Position == 0 {
		s.Position = p.front.Position
	}
	if p.updatedAt.After(s.UpdatedAt.Time) {
		s.UpdatedAt = Time{p.updatedAt}
	}
}

func readContentMarkdown(file string) (contentPage, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return contentPage{}, fmt.Errorf("cms: read %s: %w", file, err)
	}
	fm, body := splitFrontMatter(string(data))
	page := contentPage{body: body}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &page.front); err != nil {
			return contentPage{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	page.updatedAt = ParseTime(page.front.UpdatedAt).Time
	if page.updatedAt.IsZero() {
		if info, statErr := os.Stat(file); statErr == nil {
			page.updatedAt = info.ModTime()
		}
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	if strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsRune(slug, os.PathSeparator) {
		return ""
	}
	return slug
}

func cachedContent(key string) ([]AboutSection, bool) {
	now := time.Now()
	contentCache.mu.RLock()
	entry, ok := contentCache.items[key]
	contentCache.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return nil, false
	}
	return cloneSections(entry.sections), true
}

func storeContent(key string, sections []AboutSection) {
	contentCache.mu.Lock()
	defer contentCache.mu.Unlock()
	contentCache.items[key] = contentCacheEntry{
		sections: cloneSections(sections),
		expires:  time.Now().Add(contentCacheTTL),
	}
}

func cloneSections(src []AboutSection) []AboutSection {
	out := make([]AboutSection, len(src))
	copy(out, src)
	return out
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
