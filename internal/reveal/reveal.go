// Package reveal tracks which page regions have scrolled into view. Pages
// render a fresh Set, so every region starts hidden and the server only emits
// that initial state plus the observer configuration. Mark and Observe model
// the transitions public/assets/js/reveal.js performs in the browser: flags
// move from hidden to visible once and never back.
package reveal

import (
	"fmt"
	"html/template"
	"strconv"
	"sync"
	"time"
)

// CSS classes shared with site.css and reveal.js.
const (
	ClassBase    = "reveal"
	ClassHidden  = "reveal-hidden"
	ClassVisible = "reveal-visible"
)

// Config holds the intersection observer settings.
type Config struct {
	Threshold  float64
	RootMargin string
	Duration   time.Duration
}

// DefaultConfig matches the site-wide animation: reveal at 10% visibility,
// 50px early, over one second.
func DefaultConfig() Config {
	return Config{Threshold: 0.1, RootMargin: "50px", Duration: time.Second}
}

// BodyAttrs renders the data attributes read by reveal.js.
func (c Config) BodyAttrs() template.HTMLAttr {
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = DefaultConfig().Threshold
	}
	if c.RootMargin == "" {
		c.RootMargin = DefaultConfig().RootMargin
	}
	if c.Duration <= 0 {
		c.Duration = DefaultConfig().Duration
	}
	return template.HTMLAttr(fmt.Sprintf(
		`data-reveal-threshold="%s" data-reveal-margin="%s" data-reveal-duration="%d"`,
		strconv.FormatFloat(c.Threshold, 'f', -1, 64),
		template.HTMLEscapeString(c.RootMargin),
		c.Duration.Milliseconds(),
	))
}

// Entry is one intersection observation.
type Entry struct {
	ID           string
	Intersecting bool
}

// Set is the visibility map of one page render. Flags only move from hidden to
// visible.
type Set struct {
	mu   sync.RWMutex
	keys []string
	seen map[string]bool
}

// NewSet registers the page's region keys, all hidden. Duplicate and empty keys
// are dropped.
func NewSet(keys ...string) *Set {
	s := &Set{seen: make(map[string]bool, len(keys))}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := s.seen[k]; dup {
			continue
		}
		s.seen[k] = false
		s.keys = append(s.keys, k)
	}
	return s
}

// Keys returns the registered region keys in registration order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Mark makes key visible. It reports whether the flag changed.
func (s *Set) Mark(key string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, ok := s.seen[key]
	if !ok || visible {
		return false
	}
	s.seen[key] = true
	return true
}

// Observe applies a batch of observations and returns how many regions became
// visible. Non-intersecting entries are ignored.
func (s *Set) Observe(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Intersecting && s.Mark(e.ID) {
			n++
		}
	}
	return n
}

// Visible reports the flag for key. Unknown keys are hidden.
func (s *Set) Visible(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen[key]
}

// Class returns the CSS classes for key.
func (s *Set) Class(key string) string {
	if s.Visible(key) {
		return ClassBase + " " + ClassVisible
	}
	return ClassBase + " " + ClassHidden
}

// Attrs renders id, data-animate and class attributes for a region element.
func (s *Set) Attrs(key string) template.HTMLAttr {
	id := template.HTMLEscapeString(key)
	return template.HTMLAttr(fmt.Sprintf(`id="%s" data-animate="%s" class="%s"`, id, id, s.Class(key)))
}
