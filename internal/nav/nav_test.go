package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActive(t *testing.T) {
	items := Build("/about")
	require.Len(t, items, 4)
	for _, it := range items {
		require.Equal(t, it.Href == "/about", it.Active, it.Href)
	}

	home := Build("")
	require.True(t, home[0].Active)
	require.False(t, home[1].Active)
}

func TestBuildSectionsPrefixMatch(t *testing.T) {
	for _, it := range BuildSections("/news/vesak-2025") {
		require.Equal(t, it.Href == "/news", it.Active, it.Href)
	}
	for _, it := range BuildSections("/newsletter") {
		require.False(t, it.Active, it.Href)
	}
}

func TestBreadcrumbs(t *testing.T) {
	require.Equal(t, []Crumb{{Href: "/", LabelKey: "nav.home", Active: true}}, Breadcrumbs("/"))

	crumbs := Breadcrumbs("/news/vesak-day", "Vesak Day Message")
	require.Len(t, crumbs, 3)
	require.Equal(t, "nav.news", crumbs[1].LabelKey)
	require.False(t, crumbs[1].Active)
	require.Equal(t, "Vesak Day Message", crumbs[2].Label)
	require.True(t, crumbs[2].Active)

	crumbs = Breadcrumbs("/notices/12")
	require.Equal(t, "12", crumbs[2].Label)

	crumbs = Breadcrumbs("/unknown-page")
	require.Equal(t, "", crumbs[1].LabelKey)
	require.Equal(t, "Unknown page", crumbs[1].Label)
}
