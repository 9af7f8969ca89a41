package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/observability"
	"piriven.moe.gov.lk/web/internal/reveal"
	"piriven.moe.gov.lk/web/internal/seo"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang i18n.Lang, key string) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.T(lang, key)
		},
		"tr": func(lang i18n.Lang, key, def string) string {
			return i18nOrDefault(lang, key, def)
		},
		"date": func(t time.Time, lang i18n.Lang) string {
			return format.Date(t, lang.String())
		},
		"monthYear": func(t time.Time, lang i18n.Lang) string {
			return format.MonthYear(t, lang.String())
		},
		"clock": format.Clock,
		"count": func(n int) string {
			return format.Count(int64(n))
		},
		"reveal": func(set *reveal.Set, key string) template.HTMLAttr {
			return set.Attrs(key)
		},
		"title": seo.Title,
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				k, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				m[k] = pairs[i+1]
			}
			return m, nil
		},
	}
}

// templateSet holds one parsed tree per page, each combining the layouts and
// partials with the page file that defines "content".
type templateSet struct {
	pages  map[string]*template.Template
	shared *template.Template
}

func listTemplates(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func parseTemplates() (*templateSet, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var common []string
	for _, sub := range []string{"layouts", "partials"} {
		files, err := listTemplates(filepath.Join(templatesDir, sub))
		if err != nil {
			return nil, err
		}
		common = append(common, files...)
	}
	pages, err := listTemplates(filepath.Join(templatesDir, "pages"))
	if err != nil {
		return nil, err
	}
	if len(common) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}

	shared, err := template.New("_root").Funcs(templateFuncs()).ParseFiles(common...)
	if err != nil {
		return nil, err
	}
	set := &templateSet{pages: make(map[string]*template.Template, len(pages)), shared: shared}
	for _, page := range pages {
		files := append(append([]string(nil), common...), page)
		t, err := template.New("_root").Funcs(templateFuncs()).ParseFiles(files...)
		if err != nil {
			return nil, err
		}
		set.pages[strings.TrimSuffix(filepath.Base(page), ".tmpl")] = t
	}
	return set, nil
}

// loadTemplates returns the cached set, reparsing on every call in dev mode.
func loadTemplates() (*templateSet, error) {
	if devMode || tmplCache == nil {
		return parseTemplates()
	}
	return tmplCache, nil
}

// renderPage executes the base layout with pages/<name>.tmpl as its content.
func renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderPageStatus(w, r, http.StatusOK, name, data)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	set, err := loadTemplates()
	if err != nil {
		templateFailure(w, r, "template parse error", err)
		return
	}
	t, ok := set.pages[name]
	if !ok {
		templateFailure(w, r, "template missing", fmt.Errorf("page %q not defined", name))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		templateFailure(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// renderTemplate executes a single shared template, used for htmx fragments.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	set, err := loadTemplates()
	if err != nil {
		templateFailure(w, r, "template parse error", err)
		return
	}
	var buf bytes.Buffer
	if err := set.shared.ExecuteTemplate(&buf, name, data); err != nil {
		templateFailure(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func templateFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
}

// i18nOrDefault returns the bundle string for key, or def when the key is
// missing from every catalogue.
func i18nOrDefault(lang i18n.Lang, key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v := i18nBundle.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}

// absoluteURL is the canonical URL of the current page on the public site.
func absoluteURL(r *http.Request) string {
	return strings.TrimRight(siteURL, "/") + r.URL.Path
}

func buildAlternates(r *http.Request) []seo.Alternate {
	return seo.Alternates(siteURL, r.URL.Path)
}
