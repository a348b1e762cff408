package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/spf13/cobra"
)

var (
	weeksYear int
	weekOfRaw string
)

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Print the 52 weeks of a week-year",
	Long: `Print every week of a week-year with its dates and the month it rolls
up into. The current week is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		year := weeksYear
		if year == 0 {
			_, year = weekcalendar.WeekFromDate(now())
		}
		if year < 2000 || year > 2100 {
			return fmt.Errorf("year must be between 2000 and 2100")
		}
		printWeeks(cmd.OutOrStdout(), year, weekcalendar.KeyFromDate(now()))
		return nil
	},
}

var weekOfCmd = &cobra.Command{
	Use:   "week-of",
	Short: "Print the week containing a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := now()
		if weekOfRaw != "" {
			parsed, err := time.Parse("2006-01-02", weekOfRaw)
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
			date = parsed
		}
		week, year := weekcalendar.WeekFromDate(date)
		start, end := weekcalendar.WeekDates(week, year)
		month := weekcalendar.WeekToMonthKey(start, end)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s .. %s  month %s\n",
			color.New(color.Bold).Sprintf("week %d/%d", week, year),
			start.Format("2006-01-02"),
			end.Format("2006-01-02"),
			month,
		)
		return nil
	},
}

func init() {
	weeksCmd.Flags().IntVarP(&weeksYear, "year", "y", 0, "week-year (default: current)")
	weekOfCmd.Flags().StringVarP(&weekOfRaw, "date", "d", "", "date as YYYY-MM-DD (default: today)")
}

func printWeeks(w io.Writer, year int, current weekcalendar.Key) {
	table := weekcalendar.NewMonthTable(year)
	faint := color.New(color.Faint)
	highlight := color.New(color.FgGreen, color.Bold)

	for _, week := range weekcalendar.AllWeeksForYear(year) {
		key := weekcalendar.Key{Week: week.Number, Year: week.Year}
		month, _ := table.MonthFor(key)
		line := fmt.Sprintf("W%02d  %-16s  ", week.Number, week.Label)
		if key == current {
			fmt.Fprintln(w, highlight.Sprint(line+month.String()+"  <"))
			continue
		}
		fmt.Fprintln(w, line+faint.Sprint(month.String()))
	}
}
