package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/richtext"
)

const (
	homeNewsLimit    = 6
	homeNoticeLimit  = 8
	cardExcerptLimit = 160
)

// NewsCard is a news teaser on the home and list pages.
type NewsCard struct {
	Key     string
	Href    string
	Title   string
	Excerpt string
	Image   string
	Date    string
	Time    string
}

// NoticeCard is a notice teaser.
type NoticeCard struct {
	ID       string
	Href     string
	Title    string
	Excerpt  string
	Date     string
	Expires  string
	Priority int
}

// ImageView is a resolved picture with its caption.
type ImageView struct {
	Src     string
	Caption string
}

// VideoView is one playable video.
type VideoView struct {
	Title       string
	Description string
	EmbedURL    string
	FileURL     string
	Link        string
	Thumbnail   string
}

// EventView is one calendar entry.
type EventView struct {
	Title       string
	Description string
	Dates       string
	Time        string
	Status      string
	StatusLabel string
	DayKey      string
}

func buildNewsCard(lang i18n.Lang, n cms.News, index int) NewsCard {
	key := n.Key()
	card := NewsCard{
		Key:     key,
		Href:    "#",
		Title:   i18n.Prefer(n.Title, n.TitleSi, lang),
		Excerpt: richtext.Excerpt(richtext.PlainText(i18n.Prefer(n.Excerpt, n.ExcerptSi, lang)), cardExcerptLimit),
		Image:   cmsClient.MediaURL(n.Image),
	}
	if key != "" {
		card.Href = "/news/" + url.PathEscape(key)
	}
	if card.Image == "" {
		card.Image = fmt.Sprintf("/assets/images/newsItem%d.svg", index%6+1)
	}
	if !n.PublishedAt.IsZero() {
		card.Date = format.Date(n.PublishedAt.Time, lang.String())
		card.Time = format.Clock(n.PublishedAt.Time)
	}
	return card
}

func buildNoticeCard(lang i18n.Lang, n cms.Notice) NoticeCard {
	card := NoticeCard{
		ID:       n.ID.String(),
		Href:     "/notices/" + url.PathEscape(n.ID.String()),
		Title:    i18n.Prefer(n.Title, n.TitleSi, lang),
		Excerpt:  richtext.Excerpt(richtext.PlainText(i18n.Prefer(n.Content, n.ContentSi, lang)), cardExcerptLimit),
		Priority: n.Priority,
	}
	if !n.PublishedAt.IsZero() {
		card.Date = format.Date(n.PublishedAt.Time, lang.String())
	}
	if !n.ExpiresAt.IsZero() {
		card.Expires = format.Date(n.ExpiresAt.Time, lang.String())
	}
	return card
}

func buildImages(lang i18n.Lang, images []cms.Image) []ImageView {
	sorted := append([]cms.Image(nil), images...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	out := make([]ImageView, 0, len(sorted))
	for _, img := range sorted {
		src := cmsClient.MediaURL(img.Image)
		if src == "" {
			continue
		}
		out = append(out, ImageView{Src: src, Caption: i18n.Prefer(img.Caption, img.CaptionSi, lang)})
	}
	return out
}

func buildVideo(lang i18n.Lang, v cms.Video) VideoView {
	view := VideoView{
		Title:       i18n.Prefer(v.Title, v.TitleSi, lang),
		Description: i18n.Prefer(v.Description, v.DescriptionSi, lang),
		Thumbnail:   cmsClient.MediaURL(v.Thumbnail),
	}
	src := strings.TrimSpace(v.Source())
	if embed, ok := embedURL(src); ok {
		view.EmbedURL = embed
		return view
	}
	if src == "" {
		return view
	}
	if strings.TrimSpace(v.File) != "" && (src == v.File || !strings.Contains(src, "://")) {
		view.FileURL = cmsClient.MediaURL(src)
		return view
	}
	view.Link = src
	return view
}

// embedURL converts YouTube and Vimeo page URLs into their player URLs.
func embedURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch" && u.Query().Get("v") != "":
			return "https://www.youtube.com/embed/" + url.PathEscape(u.Query().Get("v")), true
		case len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "live" || segments[0] == "embed"):
			return "https://www.youtube.com/embed/" + url.PathEscape(segments[1]), true
		}
	case "youtu.be":
		if len(segments) == 1 && segments[0] != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(segments[0]), true
		}
	case "vimeo.com":
		if len(segments) == 1 && isDigits(segments[0]) {
			return "https://player.vimeo.com/video/" + segments[0], true
		}
	case "player.vimeo.com":
		if len(segments) == 2 && segments[0] == "video" {
			return "https://player.vimeo.com/video/" + url.PathEscape(segments[1]), true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func buildEvent(lang i18n.Lang, e cms.Event, now time.Time) EventView {
	status := format.EventStatus(e.StartDate.Time, e.EndDate.Time, now)
	view := EventView{
		Title:       i18n.Prefer(e.Title, e.TitleSi, lang),
		Description: i18n.Prefer(e.Description, e.DescriptionSi, lang),
		Dates:       format.DateRange(e.StartDate.Time, e.EndDate.Time, lang.String()),
		Status:      status,
	}
	if status != "" {
		view.StatusLabel = i18nOrDefault(lang, "events.status."+status, status)
	}
	if !e.StartDate.IsZero() {
		view.DayKey = format.DayKey(e.StartDate.Time)
		if h, m, _ := e.StartDate.Clock(); h != 0 || m != 0 {
			view.Time = format.Clock(e.StartDate.Time)
		}
	}
	return view
}

// sortEvents orders events by start date; undated events go last.
func sortEvents(events []cms.Event) []cms.Event {
	out := append([]cms.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartDate, out[j].StartDate
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.Before(b.Time)
	})
	return out
}
