package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	require.Equal(t, "0", Count(0))
	require.Equal(t, "999", Count(999))
	require.Equal(t, "12,345", Count(12345))
	require.Equal(t, "-1,000,000", Count(-1000000))
}

func TestDate(t *testing.T) {
	d := time.Date(2025, time.May, 4, 9, 30, 0, 0, time.UTC)
	require.Equal(t, "04 May 2025", Date(d, "en"))
	require.Equal(t, "04 මැයි 2025", Date(d, "si"))
	require.Equal(t, "", Date(time.Time{}, "en"))
	require.Equal(t, "May 2025", MonthYear(d, "en"))
	require.Equal(t, "මැයි 2025", MonthYear(d, "si"))
	require.Equal(t, "9:30 AM", Clock(d))
}

func TestDateRange(t *testing.T) {
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "02 Jun 2025", DateRange(start, time.Time{}, "en"))
	require.Equal(t, "02 Jun 2025", DateRange(start, start.Add(3*time.Hour), "en"))
	require.Equal(t, "02–05 Jun 2025", DateRange(start, start.AddDate(0, 0, 3), "en"))
	require.Equal(t, "02 Jun 2025 – 01 Jul 2025", DateRange(start, start.AddDate(0, 0, 29), "en"))
	require.Equal(t, "02 ජූනි 2025 – 05 ජූනි 2025", DateRange(start, start.AddDate(0, 0, 3), "si"))
}

func TestEventStatus(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	require.Equal(t, StatusUpcoming, EventStatus(now.Add(day), time.Time{}, now))
	require.Equal(t, StatusPast, EventStatus(now.Add(-2*day), now.Add(-day), now))
	require.Equal(t, StatusPast, EventStatus(now.Add(-day), time.Time{}, now))
	require.Equal(t, StatusOngoing, EventStatus(now.Add(-day), now.Add(day), now))
	require.Equal(t, "", EventStatus(time.Time{}, time.Time{}, now))
}

func TestBuildCalendar(t *testing.T) {
	now := time.Date(2025, time.March, 15, 8, 0, 0, 0, time.UTC)
	cal := BuildCalendar(2025, time.March, now, map[string]int{"2025-03-15": 2}, "en")

	require.Equal(t, "March 2025", cal.Title)
	require.Equal(t, "2025-02", cal.Prev)
	require.Equal(t, "2025-04", cal.Next)
	// March 2025 starts on a Saturday and spans six weeks.
	require.Len(t, cal.Weeks, 6)
	require.False(t, cal.Weeks[0][5].InMonth)
	require.Equal(t, 1, cal.Weeks[0][6].Day)
	require.True(t, cal.Weeks[0][6].InMonth)

	var today CalendarDay
	for _, week := range cal.Weeks {
		require.Len(t, week, 7)
		for _, d := range week {
			if d.Today {
				today = d
			}
		}
	}
	require.Equal(t, 15, today.Day)
	require.Equal(t, 2, today.Count)
}

func TestBuildCalendarWrapsYear(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	cal := BuildCalendar(2025, time.January, now, nil, "si")
	require.Equal(t, "2024-12", cal.Prev)
	require.Equal(t, "ජනවාරි 2025", cal.Title)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC)
	y, m := ParseMonth("2024-02", now)
	require.Equal(t, 2024, y)
	require.Equal(t, time.February, m)

	y, m = ParseMonth("bogus", now)
	require.Equal(t, 2025, y)
	require.Equal(t, time.August, m)
	require.Equal(t, "2025-08", MonthParam(y, m))
}
