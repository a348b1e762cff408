package domain

import (
	"testing"
	"time"

	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekWindow(t *testing.T) {
	w := Week(1, 2024)
	assert.NoError(t, w.Validate())

	from, until := w.Bounds()
	assert.Equal(t, date(2023, time.December, 30), from)
	assert.Equal(t, date(2024, time.January, 6), until)
	assert.Equal(t, []weekcalendar.Key{{Week: 1, Year: 2024}}, w.WeekKeys())

	assert.ErrorIs(t, Week(53, 2024).Validate(), weekcalendar.ErrInvalidWeek)
}

func TestLastWeekWindowIncludesResidualDays(t *testing.T) {
	day := date(2021, time.December, 28)
	week, year := weekcalendar.WeekFromDate(day)
	assert.Equal(t, 52, week)
	assert.Equal(t, 2021, year)

	from, until := Week(week, year).Bounds()
	assert.Equal(t, date(2021, time.December, 18), from)
	assert.Equal(t, date(2022, time.January, 1), until)
	assert.False(t, day.Before(from))
	assert.True(t, day.Before(until))
}

func TestMonthWindowUsesAssignedWeeks(t *testing.T) {
	w := Month(weekcalendar.MonthKey{Year: 2024, Month: time.January})
	from, until := w.Bounds()
	assert.Equal(t, date(2024, time.January, 1), from)
	assert.Equal(t, date(2024, time.February, 1), until)

	keys := w.WeekKeys()
	assert.NotEmpty(t, keys)
	assert.Equal(t, weekcalendar.Key{Week: 1, Year: 2024}, keys[0])
	for _, key := range keys {
		start, end := weekcalendar.WeekDates(key.Week, key.Year)
		assert.Equal(t, weekcalendar.MonthKey{Year: 2024, Month: time.January}, weekcalendar.WeekToMonthKey(start, end))
	}
}

func TestDateRangeWindow(t *testing.T) {
	w := DateRange(date(2024, time.January, 5), date(2024, time.January, 7))
	from, until := w.Bounds()
	assert.Equal(t, date(2024, time.January, 5), from)
	assert.Equal(t, date(2024, time.January, 8), until)
	assert.Equal(t, []weekcalendar.Key{{Week: 1, Year: 2024}, {Week: 2, Year: 2024}}, w.WeekKeys())

	assert.ErrorIs(t, DateRange(date(2024, 2, 1), date(2024, 1, 1)).Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{}.Validate(), ErrInvalidWindow)
}
