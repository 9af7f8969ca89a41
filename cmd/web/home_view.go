package main

import (
	"strings"
	"time"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/format"
	handlersPkg "piriven.moe.gov.lk/web/internal/handlers"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/settle"
)

// Home page reveal regions.
var homeRegions = []string{"hero", "stats", "news", "notices", "calendar", "books", "videos", "gallery", "links"}

// HomeView aggregates every section of the home page. Each section carries
// its own error line so one failure never blanks the page.
type HomeView struct {
	Hero      handlersPkg.HeroView
	HeroError string

	Slides []SlideView

	News      []NewsCard
	NewsError string

	Notices      []NoticeCard
	NoticesError string

	Videos      []VideoView
	VideosError string

	Stats []StatView
	Links []handlersPkg.Link

	Gallery      []ImageView
	GalleryAlbum string
	GalleryHref  string

	Books []BookView

	Calendar format.Calendar
	Events   []EventView
}

// SlideView is one hero carousel slide.
type SlideView struct {
	Title       string
	Subtitle    string
	Image       string
	ButtonLabel string
	ButtonURL   string
}

// StatView is one headline figure.
type StatView struct {
	Value string
	Label string
}

// homeSources holds the raw CMS content of the home page.
type homeSources struct {
	intro    *cms.HeroIntro
	snippets cms.Snippets
	slides   []cms.Slide
	news     []cms.News
	notices  []cms.Notice
	videos   []cms.Video
	stats    []cms.Stat
	links    []cms.ExternalLink
	albums   []cms.Album
	books    []cms.Book
	events   []cms.Event
}

func buildHomeView(lang i18n.Lang, src homeSources, res settle.Results, now time.Time) HomeView {
	view := HomeView{
		Hero:         handlersPkg.BuildHero(lang, src.intro, src.snippets),
		HeroError:    sectionError(lang, res.Err("hero_intro")),
		NewsError:    sectionError(lang, res.Err("news")),
		NoticesError: sectionError(lang, res.Err("notices")),
		VideosError:  sectionError(lang, res.Err("videos")),
	}

	for _, s := range src.slides {
		img := cmsClient.MediaURL(s.Image)
		if img == "" {
			continue
		}
		view.Slides = append(view.Slides, SlideView{
			Title:       i18n.Prefer(s.Title, s.TitleSi, lang),
			Subtitle:    i18n.Prefer(s.Subtitle, s.SubtitleSi, lang),
			Image:       img,
			ButtonLabel: i18n.Prefer(s.ButtonLabel, s.ButtonLabelSi, lang),
			ButtonURL:   strings.TrimSpace(s.ButtonURL),
		})
	}

	for i, n := range src.news {
		if i >= homeNewsLimit {
			break
		}
		view.News = append(view.News, buildNewsCard(lang, n, i))
	}
	for i, n := range src.notices {
		if i >= homeNoticeLimit {
			break
		}
		view.Notices = append(view.Notices, buildNoticeCard(lang, n))
	}
	for _, v := range src.videos {
		view.Videos = append(view.Videos, buildVideo(lang, v))
	}
	for _, s := range src.stats {
		view.Stats = append(view.Stats, StatView{
			Value: i18n.Prefer(s.Value, s.ValueSi, lang),
			Label: i18n.Prefer(s.Label, s.LabelSi, lang),
		})
	}
	for _, l := range src.links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		label := i18n.Prefer(l.Name, l.NameSi, lang)
		if label == "" {
			label = l.URL
		}
		view.Links = append(view.Links, handlersPkg.Link{Label: label, URL: l.URL})
	}
	for _, a := range src.albums {
		images := buildImages(lang, a.Images)
		if len(images) == 0 {
			continue
		}
		view.Gallery = images
		view.GalleryAlbum = i18n.Prefer(a.Title, a.TitleSi, lang)
		if a.Slug != "" {
			view.GalleryHref = "/gallery?album=" + a.Slug
		} else {
			view.GalleryHref = "/gallery"
		}
		break
	}
	for _, b := range src.books {
		view.Books = append(view.Books, buildBook(lang, b))
	}

	counts := map[string]int{}
	for _, e := range sortEvents(src.events) {
		if e.StartDate.IsZero() {
			continue
		}
		counts[format.DayKey(e.StartDate.Time)]++
		if format.EventStatus(e.StartDate.Time, e.EndDate.Time, now) != format.StatusPast && len(view.Events) < 3 {
			view.Events = append(view.Events, buildEvent(lang, e, now))
		}
	}
	view.Calendar = format.BuildCalendar(now.Year(), now.Month(), now, counts, lang.String())
	return view
}
