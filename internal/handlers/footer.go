package handlers

import (
	"html/template"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/richtext"
)

// DefaultMapEmbed is shown when the CMS has no map for the office.
const DefaultMapEmbed = "https://www.google.com/maps?q=Isurupaya,+Battaramulla,+Sri+Lanka&hl=en&z=16&output=embed"

// Link is a labelled external link.
type Link struct {
	Label string
	URL   string
}

// ContactView is the organisation's contact block in the viewer's language.
type ContactView struct {
	Organization string
	Address      string
	Phone        string
	PhoneHref    string
	Email        string
	MapSrc       string
	MapHTML      template.HTML
	MapLink      string
}

// FooterData backs the shared footer.
type FooterData struct {
	AboutTitle string
	AboutBody  string
	Links      []Link
	Contact    ContactView
}

var fallbackFooterLinks = []Link{
	{Label: "Ministry of Education", URL: "https://moe.gov.lk/"},
	{Label: "Department of Examinations", URL: "https://doenets.lk/"},
	{Label: "National Institute of Education", URL: "https://nie.lk/"},
	{Label: "University Grants Commission", URL: "https://ugc.ac.lk/"},
}

var fallbackContact = cms.ContactInfo{
	Organization:   "Division of Piriven Education",
	OrganizationSi: "පිරිවෙන් අධ්‍යාපන අංශය",
	Address:        "Isurupaya, Battaramulla, Sri Lanka",
	AddressSi:      "ඉසුරුපාය, බත්තරමුල්ල, ශ්‍රී ලංකාව",
	Phone:          "+94 112 785 141",
	Email:          "info@moe.gov.lk",
}

var fallbackAbout = cms.FooterAbout{
	Title:   "About Us",
	TitleSi: "අප ගැන",
	Body:    "The State Ministry is dedicated to the development and administration of Dhamma Schools, Piriven, and Bhikku Education in Sri Lanka.",
	BodySi:  "ශ්‍රී ලංකාවේ ධර්ම පාසල්, පිරිවෙන් සහ භික්ෂු අධ්‍යාපනය සංවර්ධනය සහ කළමනාකරණය සඳහා අපගේ අමාත්‍යාංශය කැපවී සිටී.",
}

// BuildFooter localizes the footer, filling every empty or failed part with
// the built-in defaults.
func BuildFooter(lang i18n.Lang, about []cms.FooterAbout, links []cms.FooterLink, contacts []cms.ContactInfo) FooterData {
	blurb := fallbackAbout
	for _, a := range about {
		if strings.TrimSpace(a.Body+a.BodySi) != "" {
			blurb = a
			break
		}
	}
	footer := FooterData{
		AboutTitle: i18n.Prefer(blurb.Title, blurb.TitleSi, lang),
		AboutBody:  i18n.Prefer(blurb.Body, blurb.BodySi, lang),
		Contact:    BuildContact(lang, contacts),
	}
	if footer.AboutTitle == "" {
		footer.AboutTitle = i18n.Prefer(fallbackAbout.Title, fallbackAbout.TitleSi, lang)
	}

	active := make([]cms.FooterLink, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l.URL) != "" {
			active = append(active, l)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })
	for _, l := range active {
		label := i18n.Prefer(l.Name, l.NameSi, lang)
		if label == "" {
			label = l.URL
		}
		footer.Links = append(footer.Links, Link{Label: label, URL: l.URL})
	}
	if len(footer.Links) == 0 {
		footer.Links = append([]Link(nil), fallbackFooterLinks...)
	}
	return footer
}

// BuildContact localizes the first contact block, field by field over the
// built-in office details.
func BuildContact(lang i18n.Lang, contacts []cms.ContactInfo) ContactView {
	info := fallbackContact
	if len(contacts) > 0 {
		c := contacts[0]
		info = cms.ContactInfo{
			Organization:   firstNonBlank(c.Organization, fallbackContact.Organization),
			OrganizationSi: firstNonBlank(c.OrganizationSi, c.Organization, fallbackContact.OrganizationSi),
			Address:        firstNonBlank(c.Address, fallbackContact.Address),
			AddressSi:      firstNonBlank(c.AddressSi, c.Address, fallbackContact.AddressSi),
			Phone:          firstNonBlank(c.Phone, fallbackContact.Phone),
			Email:          firstNonBlank(c.Email, fallbackContact.Email),
			MapURL:         c.MapURL,
			MapEmbed:       c.MapEmbed,
			Latitude:       c.Latitude,
			Longitude:      c.Longitude,
			MapZoom:        c.MapZoom,
		}
	}
	view := ContactView{
		Organization: i18n.Prefer(info.Organization, info.OrganizationSi, lang),
		Address:      i18n.Prefer(info.Address, info.AddressSi, lang),
		Phone:        info.Phone,
		PhoneHref:    "tel:" + strings.NewReplacer(" ", "", "-", "").Replace(info.Phone),
		Email:        info.Email,
		MapLink:      info.MapURL,
	}
	switch {
	case strings.Contains(info.MapEmbed, "<iframe"):
		view.MapHTML = richtext.Sanitize(info.MapEmbed)
	case strings.HasPrefix(strings.TrimSpace(info.MapEmbed), "https://"):
		view.MapSrc = strings.TrimSpace(info.MapEmbed)
	case strings.TrimSpace(string(info.Latitude)) != "" && strings.TrimSpace(string(info.Longitude)) != "":
		zoom := info.MapZoom
		if zoom <= 0 {
			zoom = 16
		}
		q := url.Values{}
		q.Set("q", string(info.Latitude)+","+string(info.Longitude))
		q.Set("z", strconv.Itoa(zoom))
		q.Set("output", "embed")
		view.MapSrc = "https://www.google.com/maps?" + q.Encode()
	default:
		view.MapSrc = DefaultMapEmbed
	}
	return view
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
