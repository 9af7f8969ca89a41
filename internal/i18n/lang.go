package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is one of the two languages the site is published in.
type Lang string

const (
	// English is the primary content language (fields without a suffix).
	English Lang = "en"
	// Sinhala is the secondary content language (fields with the `_si` suffix).
	Sinhala Lang = "si"

	// Default is used when the visitor has not chosen a language yet.
	Default = Sinhala
)

// secondarySuffix marks the Sinhala half of a bilingual CMS field.
const secondarySuffix = "_si"

// Parse maps a language tag such as "si", "si-LK" or "EN-us" to a supported Lang.
func Parse(code string) (Lang, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch Lang(base.String()) {
	case English:
		return English, true
	case Sinhala:
		return Sinhala, true
	}
	return "", false
}

// String implements fmt.Stringer.
func (l Lang) String() string { return string(l) }

// Valid reports whether l is one of the supported codes.
func (l Lang) Valid() bool { return l == English || l == Sinhala }

// Toggle returns the other language.
func (l Lang) Toggle() Lang {
	if l == Sinhala {
		return English
	}
	return Sinhala
}

// Prefer picks which half of a bilingual pair to display for pref.
// The preferred half wins when it is not blank, then the other half; when both
// are blank the result is empty and callers supply their own fallback copy.
func Prefer(primary, secondary string, pref Lang) string {
	first, second := primary, secondary
	if pref == Sinhala {
		first, second = secondary, primary
	}
	if !isBlank(first) {
		return first
	}
	if !isBlank(second) {
		return second
	}
	return ""
}

// Localize reads baseKey and baseKey+"_si" from a decoded JSON object and
// resolves them with Prefer. Non-string values count as blank.
func Localize(fields map[string]any, baseKey string, pref Lang) string {
	if fields == nil {
		return ""
	}
	primary, _ := fields[baseKey].(string)
	secondary, _ := fields[baseKey+secondarySuffix].(string)
	return Prefer(primary, secondary, pref)
}

// DetectAvailable reports Sinhala when the secondary half of baseKey carries text.
func DetectAvailable(fields map[string]any, baseKey string) Lang {
	if v, ok := fields[baseKey+secondarySuffix].(string); ok && !isBlank(v) {
		return Sinhala
	}
	return English
}

// HasSinhala reports whether text contains any rune from the Sinhala block.
func HasSinhala(text string) bool {
	for _, r := range text {
		if r >= 0x0D80 && r <= 0x0DFF {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
