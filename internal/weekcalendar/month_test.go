package weekcalendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthKey(t *testing.T) {
	key, err := ParseMonthKey("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, key.Year)
	assert.Equal(t, time.March, key.Month)
	assert.Equal(t, "2024-03", key.String())

	for _, raw := range []string{"", "2024-3", "2024-13", "2024-00", "24-03", "2024/03", "2024-03-01"} {
		_, err := ParseMonthKey(raw)
		assert.ErrorIs(t, err, ErrInvalidMonthKey, raw)
	}
}

func TestWeekToMonthKeyMajority(t *testing.T) {
	// 2023-W05 runs Jan 28 - Feb 3: four days in January.
	start, end := WeekDates(5, 2023)
	assert.Equal(t, MonthKey{Year: 2023, Month: time.January}, WeekToMonthKey(start, end))

	// 2023-W01 runs Dec 31 - Jan 6: six days in January.
	start, end = WeekDates(1, 2023)
	assert.Equal(t, MonthKey{Year: 2023, Month: time.January}, WeekToMonthKey(start, end))

	// 2021-W01 runs Dec 26 - Jan 1: six days in December of the previous year.
	start, end = WeekDates(1, 2021)
	assert.Equal(t, MonthKey{Year: 2020, Month: time.December}, WeekToMonthKey(start, end))
}

func TestMonthTableAssignsEveryWeekOnce(t *testing.T) {
	table := NewMonthTable(2024)

	seen := make(map[Key]MonthKey)
	for y := 2022; y <= 2026; y++ {
		for m := time.January; m <= time.December; m++ {
			month := MonthKey{Year: y, Month: m}
			for _, key := range table.WeeksIn(month) {
				if prev, dup := seen[key]; dup {
					t.Fatalf("week %s assigned to both %s and %s", key, prev, month)
				}
				seen[key] = month
			}
		}
	}

	for y := 2023; y <= 2025; y++ {
		for w := 1; w <= WeeksPerYear; w++ {
			key := Key{Week: w, Year: y}
			month, ok := table.MonthFor(key)
			require.True(t, ok, key.String())
			assert.Equal(t, month, seen[key], key.String())
		}
	}
}

func TestMonthTableIsDeterministic(t *testing.T) {
	a := NewMonthTable(2024)
	b := NewMonthTable(2024)
	for w := 1; w <= WeeksPerYear; w++ {
		key := Key{Week: w, Year: 2024}
		ma, _ := a.MonthFor(key)
		mb, _ := b.MonthFor(key)
		assert.Equal(t, ma, mb)
	}
}
