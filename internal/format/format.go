package format

import (
	"fmt"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

var sinhalaMonths = [...]string{
	"ජනවාරි", "පෙබරවාරි", "මාර්තු", "අප්‍රේල්", "මැයි", "ජූනි",
	"ජූලි", "අගෝස්තු", "සැප්තැම්බර්", "ඔක්තෝබර්", "නොවැම්බර්", "දෙසැම්බර්",
}

// Count formats n with thousands separators.
// Example: Count(12345) => "12,345"
func Count(n int64) string {
	return thousandSep(n)
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// MonthName returns the full month name in lang.
func MonthName(m time.Month, lang string) string {
	if isSinhala(lang) && m >= time.January && m <= time.December {
		return sinhalaMonths[m-1]
	}
	return m.String()
}

// Date formats t as "02 Jan 2006"; Sinhala uses the full month name.
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if isSinhala(lang) {
		return fmt.Sprintf("%02d %s %d", t.Day(), MonthName(t.Month(), lang), t.Year())
	}
	return t.Format("02 Jan 2006")
}

// MonthYear formats t as "January 2006".
func MonthYear(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", MonthName(t.Month(), lang), t.Year())
}

// Clock formats the time of day as "3:04 PM".
func Clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("3:04 PM")
}

// DateRange renders an event span. A missing or same-day end collapses to one
// date; a span inside one month shares the month and year.
func DateRange(start, end time.Time, lang string) string {
	if start.IsZero() {
		return Date(end, lang)
	}
	if end.IsZero() || sameDay(start, end) {
		return Date(start, lang)
	}
	if start.Year() == end.Year() && start.Month() == end.Month() && !isSinhala(lang) {
		return fmt.Sprintf("%02d–%s", start.Day(), Date(end, lang))
	}
	return Date(start, lang) + " – " + Date(end, lang)
}

// Event statuses.
const (
	StatusUpcoming = "upcoming"
	StatusOngoing  = "ongoing"
	StatusPast     = "past"
)

// EventStatus classifies an event relative to now. Undated events have no status.
func EventStatus(start, end, now time.Time) string {
	if start.IsZero() {
		return ""
	}
	last := end
	if last.IsZero() {
		last = start
	}
	if last.Before(now) {
		return StatusPast
	}
	if start.After(now) {
		return StatusUpcoming
	}
	return StatusOngoing
}

// DayKey identifies a calendar day.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date    time.Time
	Day     int
	Key     string
	InMonth bool
	Today   bool
	Count   int
}

// Calendar is a Sunday-first month grid.
type Calendar struct {
	Year  int
	Month time.Month
	Title string
	Prev  string
	Next  string
	Weeks [][]CalendarDay
}

// MonthParam formats a month for ?month= links.
func MonthParam(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseMonth reads a ?month=YYYY-MM value, falling back to the month of now.
func ParseMonth(v string, now time.Time) (int, time.Month) {
	if t, err := time.Parse("2006-01", strings.TrimSpace(v)); err == nil {
		return t.Year(), t.Month()
	}
	return now.Year(), now.Month()
}

// BuildCalendar lays out the month with per-day counts keyed by DayKey.
func BuildCalendar(year int, month time.Month, now time.Time, counts map[string]int, lang string) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	cal := Calendar{
		Year:  first.Year(),
		Month: first.Month(),
		Title: MonthYear(first, lang),
		Prev:  MonthParam(prev.Year(), prev.Month()),
		Next:  MonthParam(next.Year(), next.Month()),
	}
	cursor := first.AddDate(0, 0, -int(first.Weekday()))
	for {
		week := make([]CalendarDay, 7)
		for i := range week {
			key := DayKey(cursor)
			week[i] = CalendarDay{
				Date:    cursor,
				Day:     cursor.Day(),
				Key:     key,
				InMonth: cursor.Month() == first.Month(),
				Today:   sameDay(cursor, now),
				Count:   counts[key],
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		cal.Weeks = append(cal.Weeks, week)
		if cursor.Month() != first.Month() {
			break
		}
	}
	return cal
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func isSinhala(lang string) bool {
	return strings.EqualFold(strings.TrimSpace(lang), "si")
}
