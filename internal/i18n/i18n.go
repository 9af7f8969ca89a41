package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Bundle holds the UI copy that is not managed in the CMS (labels, empty
// states, error lines) for every supported language.
type Bundle struct {
	dict     map[Lang]map[string]string
	fallback Lang
}

// Load reads <dir>/<lang>.json for each supported language. Only the fallback
// catalogue is mandatory.
func Load(dir string, fallback Lang) (*Bundle, error) {
	b := &Bundle{
		dict:     map[Lang]map[string]string{},
		fallback: fallback,
	}
	for _, l := range []Lang{Sinhala, English} {
		path := filepath.Join(dir, string(l)+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	return b, nil
}

// Supported lists the languages with a loaded catalogue.
func (b *Bundle) Supported() []Lang {
	out := make([]Lang, 0, len(b.dict))
	for k := range b.dict {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() Lang { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang Lang, key string) string {
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
