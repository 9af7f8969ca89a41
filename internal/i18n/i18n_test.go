package i18n

import "testing"

func TestBundleFallsBackToDefaultThenKey(t *testing.T) {
	b, err := Load("../../locales", Sinhala)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T(English, "nav.news"); got != "News" {
		t.Fatalf("expected English nav label, got %q", got)
	}
	if got := b.T(Sinhala, "nav.news"); got == "nav.news" || got == "" {
		t.Fatalf("expected Sinhala nav label, got %q", got)
	}
	if got := b.T(English, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo for unknown key, got %q", got)
	}
	if got := b.Supported(); len(got) != 2 || got[0] != English || got[1] != Sinhala {
		t.Fatalf("unexpected supported languages %v", got)
	}
}

func TestPreferTruthTable(t *testing.T) {
	const en, si = "Hello", "ආයුබෝවන්"
	cases := []struct {
		name      string
		primary   string
		secondary string
		pref      Lang
		want      string
	}{
		{"si both set", en, si, Sinhala, si},
		{"si secondary blank", en, "  ", Sinhala, en},
		{"si primary blank", "", si, Sinhala, si},
		{"si both blank", " ", "", Sinhala, ""},
		{"en both set", en, si, English, en},
		{"en primary blank", "\t", si, English, si},
		{"en secondary blank", en, "", English, en},
		{"en both blank", "", "\n", English, ""},
		{"unknown pref behaves as primary", en, si, Lang("fr"), en},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Prefer(tc.primary, tc.secondary, tc.pref); got != tc.want {
				t.Fatalf("Prefer(%q, %q, %s) = %q, want %q", tc.primary, tc.secondary, tc.pref, got, tc.want)
			}
		})
	}
}

func TestPreferKeepsOriginalWhitespace(t *testing.T) {
	if got := Prefer("  padded  ", "", English); got != "  padded  " {
		t.Fatalf("expected untrimmed value, got %q", got)
	}
}

func TestLocalizeReadsSuffixedKey(t *testing.T) {
	fields := map[string]any{"title": "Hello", "title_si": "ආයුබෝවන්", "count": 3, "count_si": nil}
	if got := Localize(fields, "title", Sinhala); got != "ආයුබෝවන්" {
		t.Fatalf("unexpected sinhala title %q", got)
	}
	if got := Localize(fields, "title", English); got != "Hello" {
		t.Fatalf("unexpected english title %q", got)
	}
	if got := Localize(fields, "count", English); got != "" {
		t.Fatalf("expected non-string values to be blank, got %q", got)
	}
	if got := Localize(nil, "title", English); got != "" {
		t.Fatalf("expected empty for nil entry, got %q", got)
	}
	if got := DetectAvailable(fields, "title"); got != Sinhala {
		t.Fatalf("expected si available, got %s", got)
	}
	if got := DetectAvailable(fields, "count"); got != English {
		t.Fatalf("expected en when si is missing, got %s", got)
	}
}

func TestHasSinhala(t *testing.T) {
	if !HasSinhala("News - පුවත්") {
		t.Fatal("expected sinhala runes to be detected")
	}
	if HasSinhala("News") || HasSinhala("") {
		t.Fatal("expected no sinhala runes")
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Lang{"si": Sinhala, "si-LK": Sinhala, "EN-us": English, "en": English}
	for in, want := range cases {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Fatalf("Parse(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "fr", "not a tag!"} {
		if _, ok := Parse(in); ok {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
	if Sinhala.Toggle() != English || English.Toggle() != Sinhala {
		t.Fatal("toggle should swap languages")
	}
}
