package main

import (
	"net/http"
	"time"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/format"
	"piriven.moe.gov.lk/web/internal/i18n"
	mw "piriven.moe.gov.lk/web/internal/middleware"
	"piriven.moe.gov.lk/web/internal/settle"
)

// EventsView backs /events: a month calendar plus the grouped event list.
type EventsView struct {
	Calendar format.Calendar
	Upcoming []EventView
	Past     []EventView
	Selected string
	OnDay    []EventView
	Error    string
}

// EventsHandler renders the calendar. ?month=YYYY-MM picks the month and
// ?day=YYYY-MM-DD narrows the list to one day.
func EventsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	var items []cms.Event

	g := newGroup(r)
	settle.Fetch(g, "events", &items, cmsClient.Events)
	footer := fetchFooter(g)
	res := g.Wait()
	reportFailures(r, "events", res)

	q := r.URL.Query()
	view := buildEventsView(lang, items, q.Get("month"), q.Get("day"), nowFunc())
	view.Error = sectionError(lang, res.Err("events"))

	title := i18nOrDefault(lang, "events.title", "Events")
	vm := newPageData(r, title, i18nOrDefault(lang, "events.description", ""), "events-header", "events-calendar", "events-list")
	vm.Footer = footer.build(lang)
	vm.Events = view
	renderPage(w, r, "events", vm)
}

func buildEventsView(lang i18n.Lang, items []cms.Event, month, day string, now time.Time) EventsView {
	view := EventsView{}
	counts := map[string]int{}
	for _, e := range sortEvents(items) {
		ev := buildEvent(lang, e, now)
		if ev.DayKey != "" {
			counts[ev.DayKey]++
		}
		if day != "" && ev.DayKey == day {
			view.OnDay = append(view.OnDay, ev)
		}
		if ev.Status == format.StatusPast {
			view.Past = append([]EventView{ev}, view.Past...)
			continue
		}
		view.Upcoming = append(view.Upcoming, ev)
	}
	if day != "" {
		if t, err := time.Parse("2006-01-02", day); err == nil {
			view.Selected = format.Date(t, lang.String())
			if month == "" {
				month = format.MonthParam(t.Year(), t.Month())
			}
		}
	}
	year, m := format.ParseMonth(month, now)
	view.Calendar = format.BuildCalendar(year, m, now, counts, lang.String())
	return view
}
