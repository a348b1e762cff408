package domain

import (
	"errors"
	"time"

	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

var ErrInvalidWindow = errors.New("invalid_window")

type WindowKind int

const (
	WindowDateRange WindowKind = iota + 1
	WindowWeek
	WindowMonth
)

// Window is the time slice of a fetch: an inclusive date range, a single
// week, or a calendar month.
type Window struct {
	kind  WindowKind
	from  time.Time
	to    time.Time
	week  weekcalendar.Key
	month weekcalendar.MonthKey
}

// DateRange covers every day from from to to, both inclusive.
func DateRange(from, to time.Time) Window {
	return Window{kind: WindowDateRange, from: day(from), to: day(to)}
}

func Week(week, year int) Window {
	return Window{kind: WindowWeek, week: weekcalendar.Key{Week: week, Year: year}}
}

func Month(month weekcalendar.MonthKey) Window {
	return Window{kind: WindowMonth, month: month}
}

// Year covers the 52 weeks of a week-year.
func Year(year int) Window {
	return DateRange(weekcalendar.WeekStart(year), weekcalendar.YearEnd(year))
}

func (w Window) Kind() WindowKind { return w.kind }

func (w Window) Validate() error {
	switch w.kind {
	case WindowDateRange:
		if w.to.Before(w.from) {
			return ErrInvalidWindow
		}
	case WindowWeek:
		if !weekcalendar.ValidWeek(w.week.Week) {
			return weekcalendar.ErrInvalidWeek
		}
	case WindowMonth:
		if w.month.Month < time.January || w.month.Month > time.December {
			return weekcalendar.ErrInvalidMonthKey
		}
	default:
		return ErrInvalidWindow
	}
	return nil
}

// Bounds returns the half-open day range [from, until) used by entities
// bucketed on a date column.
func (w Window) Bounds() (time.Time, time.Time) {
	switch w.kind {
	case WindowWeek:
		start, end := weekcalendar.WeekSpan(w.week.Week, w.week.Year)
		return start, end.AddDate(0, 0, 1)
	case WindowMonth:
		return w.month.Start(), w.month.End().AddDate(0, 0, 1)
	default:
		return w.from, w.to.AddDate(0, 0, 1)
	}
}

// WeekKeys returns the (week, week-year) pairs used by entities bucketed on
// their stored week columns. A month keeps only the weeks assigned to it; a
// date range keeps every week it touches.
func (w Window) WeekKeys() []weekcalendar.Key {
	switch w.kind {
	case WindowWeek:
		return []weekcalendar.Key{w.week}
	case WindowMonth:
		return weekcalendar.NewMonthTable(w.month.Year).WeeksIn(w.month)
	default:
		return weekcalendar.KeysBetween(w.from, w.to)
	}
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
