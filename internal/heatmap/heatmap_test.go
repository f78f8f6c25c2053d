package heatmap

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/github"
)

// weeksFrom builds n full weeks of days starting on start (a Sunday).
func weeksFrom(start time.Time, n int, count func(day int) int) []github.Week {
	weeks := make([]github.Week, n)
	for w := 0; w < n; w++ {
		days := make([]github.Day, 7)
		for d := 0; d < 7; d++ {
			idx := w*7 + d
			days[d] = github.Day{
				ContributionCount: count(idx),
				Date:              start.AddDate(0, 0, idx).Format(dateLayout),
			}
		}
		weeks[w] = github.Week{ContributionDays: days}
	}
	return weeks
}

func zero(int) int { return 0 }

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		count int
		level int
	}{
		{0, 0},
		{1, 1}, {3, 1},
		{4, 2}, {6, 2},
		{7, 3}, {9, 3},
		{10, 4}, {250, 4},
		{-1, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count_%d", tt.count), func(t *testing.T) {
			assert.Equal(t, tt.level, Level(tt.count))
			assert.Equal(t, Level(tt.count), Level(tt.count))
		})
	}
}

func TestParseDateKeepsCalendarDay(t *testing.T) {
	day, err := ParseDate("2024-12-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, time.December, day.Month())
	assert.Equal(t, 29, day.Day())

	_, err = ParseDate("29/12/2024")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	got, err := FormatDate("2024-12-29")
	require.NoError(t, err)
	assert.Equal(t, "Sun, Dec 29, 2024", got)

	got, err = FormatDate("2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "Wed, Jan 1, 2025", got)
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "1 contribution on Sun, Dec 29, 2024", Tooltip(Day{Date: "2024-12-29", ContributionCount: 1}))
	assert.Equal(t, "0 contributions on Mon, Dec 30, 2024", Tooltip(Day{Date: "2024-12-30"}))
	assert.Equal(t, "5 contributions on bogus", Tooltip(Day{Date: "bogus", ContributionCount: 5}))
}

func TestMonthLabelsAcrossYearBoundary(t *testing.T) {
	// Weeks start Sun Dec 1 2024; the week of Dec 29 runs to Jan 4, so January
	// first leads a week on Jan 5.
	weeks := weeksFrom(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 8, zero)
	require.Equal(t, "2024-12-29", weeks[4].ContributionDays[0].Date)

	labels := MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 2)
	assert.Equal(t, "Dec", labels[0].Label)
	assert.Equal(t, 0, labels[0].WeekIndex)
	assert.Equal(t, "Jan", labels[1].Label)
	assert.Equal(t, 5, labels[1].WeekIndex)
	assert.Equal(t, 65, labels[1].Offset)
}

func TestMonthLabelsWeekStartingDec29IsDecember(t *testing.T) {
	// A window that opens on the Dec 29 week must label it Dec, not Jan.
	weeks := weeksFrom(time.Date(2024, time.December, 29, 0, 0, 0, 0, time.UTC), 6, zero)

	labels := MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 1, "Dec label is one week from Jan and collides")
	assert.Equal(t, "Jan", labels[0].Label)
	assert.Equal(t, 1, labels[0].WeekIndex)

	raw := MonthLabels(weeks, Options{MinLabelGap: 1, MinTrailingWeeks: 1})
	require.Len(t, raw, 3)
	assert.Equal(t, "Dec", raw[0].Label)
	assert.Equal(t, 0, raw[0].WeekIndex)
	assert.Equal(t, "Jan", raw[1].Label)
	assert.Equal(t, "Feb", raw[2].Label)
}

func TestMonthLabelsCollisionFilter(t *testing.T) {
	week := func(date string) github.Week {
		return github.Week{ContributionDays: []github.Day{{Date: date}}}
	}
	weeks := []github.Week{
		week("2025-01-26"), // Jan at 0, next label 1 week away: dropped
		week("2025-02-02"), // Feb at 1
		week("2025-02-09"),
		week("2025-02-16"),
		week("2025-02-23"),
		week("2025-03-02"), // Mar at 5, last label with 1 week visible: dropped
	}

	labels := MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 1)
	assert.Equal(t, "Feb", labels[0].Label)
	assert.Equal(t, 1, labels[0].WeekIndex)

	weeks = append(weeks, week("2025-03-09"))
	labels = MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 2)
	assert.Equal(t, "Mar", labels[1].Label)
}

func TestMonthLabelsExactGapIsKept(t *testing.T) {
	week := func(date string) github.Week {
		return github.Week{ContributionDays: []github.Day{{Date: date}}}
	}
	weeks := []github.Week{
		week("2025-01-12"),
		week("2025-01-19"),
		week("2025-01-26"),
		week("2025-02-02"),
		week("2025-02-09"),
	}

	labels := MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 2)
	assert.Equal(t, 0, labels[0].WeekIndex)
	assert.Equal(t, 3, labels[1].WeekIndex)
}

func TestMonthLabelsSkipsEmptyAndInvalidWeeks(t *testing.T) {
	weeks := []github.Week{
		{},
		{ContributionDays: []github.Day{{Date: "not-a-date"}}},
		{ContributionDays: []github.Day{{Date: "2025-04-06"}}},
		{ContributionDays: []github.Day{{Date: "2025-04-13"}}},
	}

	labels := MonthLabels(weeks, DefaultOptions())
	require.Len(t, labels, 1)
	assert.Equal(t, "Apr", labels[0].Label)
	assert.Equal(t, 2, labels[0].WeekIndex)
	assert.Empty(t, MonthLabels(nil, DefaultOptions()))
}

func TestBuildTruncatesToRecentWeeks(t *testing.T) {
	start := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)
	cal := &github.Calendar{
		TotalContributions: 3210,
		Weeks:              weeksFrom(start, 104, func(i int) int { return i % 12 }),
	}

	h := Build(cal, DefaultOptions())
	require.Len(t, h.Weeks, 51)
	assert.Equal(t, 3210, h.TotalContributions)
	assert.Equal(t, cal.Weeks[53].ContributionDays[0].Date, h.Weeks[0][0].Date)
	assert.Equal(t, cal.Weeks[103].ContributionDays[6].Date, h.Weeks[50][6].Date)

	for _, week := range h.Weeks {
		for _, day := range week {
			assert.Equal(t, Level(day.ContributionCount), day.Level)
		}
	}
	for _, label := range h.MonthLabels {
		assert.Less(t, label.WeekIndex, 51)
	}
}

func TestBuildKeepsShortCalendars(t *testing.T) {
	cal := &github.Calendar{
		TotalContributions: 4,
		Weeks:              weeksFrom(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), 3, func(int) int { return 1 }),
	}

	h := Build(cal, Options{})
	assert.Len(t, h.Weeks, 3)
	assert.Equal(t, 4, h.TotalContributions)

	empty := Build(nil, DefaultOptions())
	assert.NotNil(t, empty.Weeks)
	assert.NotNil(t, empty.MonthLabels)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.HeatmapConfig{Weeks: 26, MinLabelGap: 2})
	assert.Equal(t, 26, opts.Weeks)
	assert.Equal(t, 2, opts.MinLabelGap)
	assert.Equal(t, config.DefaultMinTrailingWeeks, opts.MinTrailingWeeks)
	assert.Equal(t, 13, opts.ColumnWidth)
	assert.Equal(t, 130, opts.LabelOffset(10))
}

func TestRenderPlain(t *testing.T) {
	cal := &github.Calendar{
		TotalContributions: 42,
		Weeks:              weeksFrom(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 8, func(i int) int { return i }),
	}
	h := Build(cal, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, h, false))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "    Dec"))
	assert.Contains(t, lines[0], "Jan")
	assert.True(t, strings.HasPrefix(lines[2], "Mon "))
	assert.Contains(t, out, "42 contributions in the last year")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderColor(t *testing.T) {
	h := Heatmap{Weeks: [][]Day{{{Date: "2025-01-05", ContributionCount: 12, Level: 4}}}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, h, true))
	assert.Contains(t, buf.String(), ansiLevels[4]+"■"+ansiReset)
}
