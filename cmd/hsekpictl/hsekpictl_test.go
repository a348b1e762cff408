package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPrintWeeksListsEveryWeek(t *testing.T) {
	var buf bytes.Buffer
	printWeeks(&buf, 2024, weekcalendar.Key{Week: 10, Year: 2024})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, weekcalendar.WeeksPerYear)
	assert.True(t, strings.HasPrefix(lines[0], "W01"))
	assert.Contains(t, lines[9], "<")
	assert.True(t, strings.HasPrefix(lines[51], "W52"))
}

func TestWeekOfCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"week-of", "--date", "2024-01-01"})
	require.NoError(t, rootCmd.Execute())

	week, year := weekcalendar.WeekFromDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, buf.String(), "week "+strconv.Itoa(week)+"/"+strconv.Itoa(year))
}

func TestWriteSummaryYAMLUsesJSONFieldNames(t *testing.T) {
	summary := &rollupdomain.Summary{Month: "2024-03", Warnings: []string{"trainings_unavailable"}}

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, summary, "yaml"))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2024-03", decoded["month"])
	assert.Equal(t, []any{"trainings_unavailable"}, decoded["warnings"])
}
