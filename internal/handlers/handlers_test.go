package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/config"
	"piriven.moe.gov.lk/web/internal/i18n"
)

func TestSnippetText(t *testing.T) {
	snips := cms.Snippets{
		"home_hero_empty": {Key: "home_hero_empty", Text: "Coming soon", TextSi: "ඉක්මනින්"},
		"blank":           {Key: "blank", Text: "  "},
	}
	require.Equal(t, "ඉක්මනින්", SnippetText(snips, "home_hero_empty", i18n.Sinhala, "x"))
	require.Equal(t, "Coming soon", SnippetText(snips, "home_hero_empty", i18n.English, "x"))
	require.Equal(t, "x", SnippetText(snips, "blank", i18n.English, "x"))
	require.Equal(t, "x", SnippetText(nil, "missing", i18n.English, "x"))
}

func TestBuildHeroWithoutIntro(t *testing.T) {
	view := BuildHero(i18n.English, nil, cms.Snippets{"home_hero_heading": {Text: "ignored"}})
	require.False(t, view.Configured)
	require.Empty(t, view.Heading)
	require.Equal(t, defaultHeroEmpty, view.Empty)
}

func TestBuildHeroFallsBackToSnippets(t *testing.T) {
	intro := &cms.HeroIntro{
		Heading:      "Welcome",
		HeadingSi:    "සාදරයෙන් පිළිගනිමු",
		Description:  strings.Repeat("Piriven education ", 60),
		PrimaryLabel: "Learn more",
	}
	snips := cms.Snippets{"home_hero_highlight": {Text: "Division of Piriven Education"}}

	view := BuildHero(i18n.Sinhala, intro, snips)
	require.True(t, view.Configured)
	require.Equal(t, "සාදරයෙන් පිළිගනිමු", view.Heading)
	require.Equal(t, "Division of Piriven Education", view.Highlight)
	require.Equal(t, "Learn more", view.PrimaryLabel)
	require.Equal(t, "/hero-intro", view.PrimaryURL)
	require.Equal(t, "#", view.SecondaryURL)
	require.Empty(t, view.SecondaryLabel)
	require.True(t, strings.HasSuffix(view.Preview, "…"))
	require.LessOrEqual(t, len([]rune(view.Preview)), 651)
}

func TestLocalHref(t *testing.T) {
	require.Equal(t, "/hero-intro", localHref("hero-intro", "#"))
	require.Equal(t, "https://pdms.moe.gov.lk/", localHref("https://pdms.moe.gov.lk/", "#"))
	require.Equal(t, "#news", localHref("#news", "/"))
	require.Equal(t, "#", localHref(" ", "#"))
}

func TestBuildFooterFallbacks(t *testing.T) {
	footer := BuildFooter(i18n.Sinhala, nil, nil, nil)
	require.Equal(t, "අප ගැන", footer.AboutTitle)
	require.Contains(t, footer.AboutBody, "පිරිවෙන්")
	require.Len(t, footer.Links, 4)
	require.Equal(t, "https://moe.gov.lk/", footer.Links[0].URL)
	require.Equal(t, "පිරිවෙන් අධ්‍යාපන අංශය", footer.Contact.Organization)
	require.Equal(t, DefaultMapEmbed, footer.Contact.MapSrc)
	require.Equal(t, "tel:+94112785141", footer.Contact.PhoneHref)
}

func TestBuildFooterFromCMS(t *testing.T) {
	about := []cms.FooterAbout{{Title: "About", Body: "Body text"}}
	links := []cms.FooterLink{
		{Name: "Second", URL: "https://b.lk", Position: 2},
		{Name: "First", NameSi: "පළමු", URL: "https://a.lk", Position: 1},
		{Name: "No URL", Position: 0},
	}
	contacts := []cms.ContactInfo{{Organization: "Division", Phone: "011 1234567", MapEmbed: `<iframe src="https://www.google.com/maps/embed?pb=abc" onload="x()"></iframe>`}}

	footer := BuildFooter(i18n.Sinhala, about, links, contacts)
	require.Equal(t, "About", footer.AboutTitle)
	require.Equal(t, []Link{{Label: "පළමු", URL: "https://a.lk"}, {Label: "Second", URL: "https://b.lk"}}, footer.Links)
	require.Equal(t, "Division", footer.Contact.Organization)
	require.Equal(t, "info@moe.gov.lk", footer.Contact.Email)
	require.Contains(t, string(footer.Contact.MapHTML), "https://www.google.com/maps/embed?pb=abc")
	require.NotContains(t, string(footer.Contact.MapHTML), "onload")
	require.Empty(t, footer.Contact.MapSrc)
}

func TestBuildContactCoordinates(t *testing.T) {
	view := BuildContact(i18n.English, []cms.ContactInfo{{Latitude: "6.9", Longitude: "79.9", MapZoom: 14}})
	require.Equal(t, "https://www.google.com/maps?output=embed&q=6.9%2C79.9&z=14", view.MapSrc)
}

func TestAnalyticsFromConfig(t *testing.T) {
	a := AnalyticsFromConfig(config.AnalyticsConfig{GA4MeasurementID: "G-TEST"}, true)
	require.True(t, a.Enabled())
	require.True(t, a.Debug)
	require.False(t, AnalyticsFromConfig(config.AnalyticsConfig{}, false).Enabled())
}
