package weekcalendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrInvalidMonthKey = errors.New("invalid_month")

	monthKeyPattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
)

// MonthKey identifies a calendar month as "YYYY-MM".
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a "YYYY-MM" string.
func ParseMonthKey(raw string) (MonthKey, error) {
	m := monthKeyPattern.FindStringSubmatch(raw)
	if m == nil {
		return MonthKey{}, ErrInvalidMonthKey
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns the first day of the month.
func (m MonthKey) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (m MonthKey) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Next returns the following month.
func (m MonthKey) Next() MonthKey {
	next := m.Start().AddDate(0, 1, 0)
	return MonthKey{Year: next.Year(), Month: next.Month()}
}

// Previous returns the preceding month.
func (m MonthKey) Previous() MonthKey {
	prev := m.Start().AddDate(0, -1, 0)
	return MonthKey{Year: prev.Year(), Month: prev.Month()}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// WeekToMonthKey assigns the span [start, end] to the month holding most of
// its days. Ties go to the earlier month.
func WeekToMonthKey(start, end time.Time) MonthKey {
	start, end = truncate(start), truncate(end)

	best := MonthOf(start)
	bestDays := 0
	current := MonthOf(start)
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if MonthOf(day) != current {
			if count > bestDays {
				best, bestDays = current, count
			}
			current, count = MonthOf(day), 0
		}
		count++
	}
	if count > bestDays {
		best = current
	}
	return best
}

// MonthTable maps every week of a year range to a single month.
type MonthTable struct {
	byWeek  map[Key]MonthKey
	byMonth map[MonthKey][]Key
}

// NewMonthTable precomputes the mapping for year-1 through year+1.
func NewMonthTable(year int) *MonthTable {
	t := &MonthTable{
		byWeek:  make(map[Key]MonthKey, WeeksPerYear*3),
		byMonth: make(map[MonthKey][]Key, 36),
	}
	for y := year - 1; y <= year+1; y++ {
		for w := 1; w <= WeeksPerYear; w++ {
			start, end := WeekDates(w, y)
			key := Key{Week: w, Year: y}
			month := WeekToMonthKey(start, end)
			t.byWeek[key] = month
			t.byMonth[month] = append(t.byMonth[month], key)
		}
	}
	return t
}

// MonthFor returns the month a week was assigned to.
func (t *MonthTable) MonthFor(key Key) (MonthKey, bool) {
	month, ok := t.byWeek[key]
	return month, ok
}

// WeeksIn returns the weeks assigned to month, in week order.
func (t *MonthTable) WeeksIn(month MonthKey) []Key {
	keys := t.byMonth[month]
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}
