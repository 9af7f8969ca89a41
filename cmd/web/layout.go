package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/cms"
	handlersPkg "piriven.moe.gov.lk/web/internal/handlers"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/nav"
	"piriven.moe.gov.lk/web/internal/observability"
	"piriven.moe.gov.lk/web/internal/reveal"
	"piriven.moe.gov.lk/web/internal/seo"
	"piriven.moe.gov.lk/web/internal/settle"
)

var (
	footerAboutParams = cms.Params{"is_active": "true", "ordering": "-updated_at"}
	footerLinkParams  = cms.Params{"is_active": "true", "ordering": "position"}
)

// newPageData builds the shared view model. regions are the page's reveal
// keys, all hidden until the browser observes them.
func newPageData(r *http.Request, title, description string, regions ...string) handlersPkg.PageData {
	lang := mw.Lang(r)
	path := r.URL.Path
	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Path:        path,
		Nav:         nav.Build(path),
		Sections:    nav.BuildSections(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		Analytics:   analytics,
		LangSwitch:  langSwitch(r, lang),
		CSRFToken:   mw.CSRFToken(r),
		Reveal:      reveal.NewSet(regions...),
		RevealBody:  revealConfig.BodyAttrs(),
		Year:        nowFunc().Year(),
	}
	if s := mw.GetSession(r); s.Flash != "" {
		msg := s.PopFlash()
		vm.Flash = i18nOrDefault(lang, msg, msg)
	}
	if description == "" {
		description = i18nOrDefault(lang, "site.description", seo.DefaultDescription)
	}

	// SEO defaults
	vm.SEO.Title = seo.Title(title)
	vm.SEO.Description = description
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = seo.SiteName
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = description
	vm.SEO.OG.Type = "website"
	vm.SEO.OG.Locale = ogLocale(lang)
	vm.SEO.Twitter.Card = "summary_large_image"
	vm.SEO.Alternates = buildAlternates(r)
	if path == "/" {
		vm.SEO.JSONLD = append(vm.SEO.JSONLD,
			seo.Script(seo.GovernmentOrganization(seo.SiteName, siteURL, siteURL+"/assets/images/logo.png", "+94 112 785 141",
				seo.PostalAddress{Street: "Isurupaya", Locality: "Battaramulla", Region: "Western Province", Country: "LK"},
				"English", "Sinhala")),
			seo.Script(seo.WebSite(seo.SiteName, siteURL, i18n.English.String(), i18n.Sinhala.String())),
		)
	}
	return vm
}

func ogLocale(lang i18n.Lang) string {
	if lang == i18n.English {
		return "en_US"
	}
	return "si_LK"
}

func langSwitch(r *http.Request, lang i18n.Lang) handlersPkg.LangSwitch {
	other := lang.Toggle()
	q := url.Values{}
	q.Set("to", other.String())
	q.Set("next", mw.SafeNext(r.URL.RequestURI()))
	return handlersPkg.LangSwitch{Current: lang, Other: other, Href: "/lang?" + q.Encode()}
}

// footerSources collects the footer's CMS content alongside page content.
type footerSources struct {
	about    []cms.FooterAbout
	links    []cms.FooterLink
	contacts []cms.ContactInfo
}

func fetchFooter(g *settle.Group) *footerSources {
	src := &footerSources{}
	settle.Fetch(g, "footer_about", &src.about, func(ctx context.Context) ([]cms.FooterAbout, error) {
		return cmsClient.FooterAbout(ctx, footerAboutParams)
	})
	settle.Fetch(g, "footer_links", &src.links, func(ctx context.Context) ([]cms.FooterLink, error) {
		return cmsClient.FooterLinks(ctx, footerLinkParams)
	})
	settle.Fetch(g, "contact_info", &src.contacts, cmsClient.ContactInfo)
	return src
}

func (s *footerSources) build(lang i18n.Lang) handlersPkg.FooterData {
	return handlersPkg.BuildFooter(lang, s.about, s.links, s.contacts)
}

// footerFallback is the footer built from defaults only, for responses that
// must not reach the CMS.
func footerFallback(lang i18n.Lang) handlersPkg.FooterData {
	return handlersPkg.BuildFooter(lang, nil, nil, nil)
}

// newGroup starts an all-settled fetch group bound to the request.
func newGroup(r *http.Request) *settle.Group {
	return settle.New(r.Context(), fetchLimit)
}

// reportFailures logs every failed section and counts it. Failures never fail
// the page.
func reportFailures(r *http.Request, page string, res settle.Results) {
	logger := observability.FromContext(r.Context())
	for _, name := range res.Failed() {
		logger.Warn("section fetch failed",
			zap.String("page", page),
			zap.String("section", name),
			zap.Error(res.Err(name)),
		)
		metrics.SectionFailed(page, name)
	}
}

// sectionError is the inline message shown in place of a failed section.
func sectionError(lang i18n.Lang, err error) string {
	if err == nil {
		return ""
	}
	msg := i18nOrDefault(lang, "common.load_failed", "Could not load content")
	var reqErr *cms.RequestError
	if errors.As(err, &reqErr) {
		msg += fmt.Sprintf(" (%d)", reqErr.StatusCode)
	}
	return i18nOrDefault(lang, "common.error_prefix", "Error") + ": " + msg
}
