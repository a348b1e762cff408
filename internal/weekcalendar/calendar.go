// Package weekcalendar implements the business week numbering used by every
// weekly KPI table.
//
// Week 1 of a year starts on the Saturday on or before January 1. Every year
// carries exactly 52 labeled weeks; when two consecutive anchors are 371 days
// apart the 7 residual days belong to week 52.
package weekcalendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	WeeksPerYear = 52

	// MinYear and MaxYear bound the week-years accepted at every entry point.
	MinYear = 2000
	MaxYear = 2100

	anchorWeekday = time.Saturday
	labelLayout   = "02 Jan"
)

var (
	ErrInvalidWeek = errors.New("invalid_week")
	ErrInvalidYear = errors.New("invalid_year")
)

// Week is a labeled week of a week-year.
type Week struct {
	Number int       `json:"week"`
	Year   int       `json:"year"`
	Start  time.Time `json:"start_date"`
	End    time.Time `json:"end_date"`
	Label  string    `json:"label"`
}

// Key identifies a week within a week-year.
type Key struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}

// Before reports whether k sorts strictly before other.
func (k Key) Before(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Week < other.Week
}

// ValidWeek reports whether week is a labeled week number.
func ValidWeek(week int) bool {
	return week >= 1 && week <= WeeksPerYear
}

// ValidYear reports whether year is a supported week-year.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// WeekStart returns the anchor date of week 1 of year.
func WeekStart(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(jan1.Weekday()) - int(anchorWeekday) + 7) % 7
	return jan1.AddDate(0, 0, -offset)
}

// YearEnd returns the last date attributed to year, residual days included.
func YearEnd(year int) time.Time {
	return WeekStart(year+1).AddDate(0, 0, -1)
}

// WeekDates returns the first and last day of week in year.
func WeekDates(week, year int) (time.Time, time.Time) {
	start := WeekStart(year).AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// WeekSpan returns the first and last day attributed to week in year. It
// matches WeekDates except for week 52, which also takes the residual days
// up to YearEnd.
func WeekSpan(week, year int) (time.Time, time.Time) {
	start, end := WeekDates(week, year)
	if week == WeeksPerYear {
		end = YearEnd(year)
	}
	return start, end
}

// WeekFromDate maps a calendar date to its week number and week-year.
func WeekFromDate(date time.Time) (int, int) {
	day := truncate(date)
	year := day.Year()

	if !day.Before(WeekStart(year + 1)) {
		year++
	} else if day.Before(WeekStart(year)) {
		year--
	}

	days := int(day.Sub(WeekStart(year)).Hours() / 24)
	week := days/7 + 1
	if week > WeeksPerYear {
		week = WeeksPerYear
	}
	return week, year
}

// KeyFromDate is WeekFromDate returning a Key.
func KeyFromDate(date time.Time) Key {
	week, year := WeekFromDate(date)
	return Key{Week: week, Year: year}
}

// AllWeeksForYear lists the 52 weeks of year in order.
func AllWeeksForYear(year int) []Week {
	weeks := make([]Week, 0, WeeksPerYear)
	for w := 1; w <= WeeksPerYear; w++ {
		start, end := WeekDates(w, year)
		weeks = append(weeks, Week{
			Number: w,
			Year:   year,
			Start:  start,
			End:    end,
			Label:  fmt.Sprintf("S%02d (%s - %s)", w, start.Format(labelLayout), end.Format(labelLayout)),
		})
	}
	return weeks
}

// KeysBetween returns every week key touched by the inclusive date range.
func KeysBetween(from, to time.Time) []Key {
	from, to = truncate(from), truncate(to)
	if to.Before(from) {
		return nil
	}

	var keys []Key
	seen := make(map[Key]struct{})
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := KeyFromDate(day)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
