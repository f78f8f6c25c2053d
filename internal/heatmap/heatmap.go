// Package heatmap turns a contribution calendar into the display grid:
// a bounded week window, per-day intensity levels and month labels.
package heatmap

import (
	"fmt"
	"time"

	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/github"
)

// dateLayout is the upstream calendar date format. Dates are plain calendar
// days; parsing them into UTC keeps the day and month exactly as written.
const dateLayout = "2006-01-02"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Options are display constants tuned to a fixed column width.
type Options struct {
	Weeks            int
	MinLabelGap      int
	MinTrailingWeeks int
	ColumnWidth      int
}

// DefaultOptions returns the 51-week, 13px-per-column layout.
func DefaultOptions() Options {
	return Options{
		Weeks:            config.DefaultHeatmapWeeks,
		MinLabelGap:      config.DefaultMinLabelGap,
		MinTrailingWeeks: config.DefaultMinTrailingWeeks,
		ColumnWidth:      13,
	}
}

// OptionsFromConfig applies configured thresholds over the defaults.
func OptionsFromConfig(cfg config.HeatmapConfig) Options {
	opts := DefaultOptions()
	if cfg.Weeks > 0 {
		opts.Weeks = cfg.Weeks
	}
	if cfg.MinLabelGap > 0 {
		opts.MinLabelGap = cfg.MinLabelGap
	}
	if cfg.MinTrailingWeeks > 0 {
		opts.MinTrailingWeeks = cfg.MinTrailingWeeks
	}
	return opts
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Weeks <= 0 {
		o.Weeks = d.Weeks
	}
	if o.MinLabelGap <= 0 {
		o.MinLabelGap = d.MinLabelGap
	}
	if o.MinTrailingWeeks <= 0 {
		o.MinTrailingWeeks = d.MinTrailingWeeks
	}
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = d.ColumnWidth
	}
	return o
}

// LabelOffset is the horizontal pixel position of a label over weekIndex.
func (o Options) LabelOffset(weekIndex int) int {
	return weekIndex * o.normalized().ColumnWidth
}

// Day is one grid cell.
type Day struct {
	Date              string `json:"date" yaml:"date"`
	ContributionCount int    `json:"contributionCount" yaml:"contributionCount"`
	Level             int    `json:"level" yaml:"level"`
}

// MonthLabel marks the week column where a month starts.
type MonthLabel struct {
	Label     string `json:"label" yaml:"label"`
	WeekIndex int    `json:"weekIndex" yaml:"weekIndex"`
	Offset    int    `json:"offset" yaml:"offset"`
}

// Heatmap is the derived display model. TotalContributions is the upstream
// figure and is not recomputed from the truncated weeks.
type Heatmap struct {
	TotalContributions int          `json:"totalContributions" yaml:"totalContributions"`
	Weeks              [][]Day      `json:"weeks" yaml:"weeks"`
	MonthLabels        []MonthLabel `json:"monthLabels" yaml:"monthLabels"`
}

// Level buckets a daily count: 0, 1-3, 4-6, 7-9, 10+.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

// Recent returns the trailing n weeks.
func Recent(weeks []github.Week, n int) []github.Week {
	if n <= 0 || len(weeks) <= n {
		return weeks
	}
	return weeks[len(weeks)-n:]
}

// Build derives the display grid from a calendar.
func Build(cal *github.Calendar, opts Options) Heatmap {
	opts = opts.normalized()
	if cal == nil {
		return Heatmap{Weeks: [][]Day{}, MonthLabels: []MonthLabel{}}
	}

	recent := Recent(cal.Weeks, opts.Weeks)
	grid := make([][]Day, 0, len(recent))
	for _, week := range recent {
		days := make([]Day, 0, len(week.ContributionDays))
		for _, d := range week.ContributionDays {
			days = append(days, Day{
				Date:              d.Date,
				ContributionCount: d.ContributionCount,
				Level:             Level(d.ContributionCount),
			})
		}
		grid = append(grid, days)
	}

	return Heatmap{
		TotalContributions: cal.TotalContributions,
		Weeks:              grid,
		MonthLabels:        MonthLabels(recent, opts),
	}
}

// MonthLabels emits a label for each week whose first day starts a new month,
// then drops labels that would collide at the configured column width.
func MonthLabels(weeks []github.Week, opts Options) []MonthLabel {
	opts = opts.normalized()

	raw := make([]MonthLabel, 0, 13)
	lastMonth := time.Month(0)
	for i, week := range weeks {
		if len(week.ContributionDays) == 0 {
			continue
		}
		day, err := ParseDate(week.ContributionDays[0].Date)
		if err != nil {
			continue
		}
		if day.Month() != lastMonth {
			raw = append(raw, MonthLabel{
				Label:     monthNames[day.Month()-1],
				WeekIndex: i,
				Offset:    opts.LabelOffset(i),
			})
			lastMonth = day.Month()
		}
	}

	labels := make([]MonthLabel, 0, len(raw))
	for i, label := range raw {
		if i == len(raw)-1 {
			if len(weeks)-label.WeekIndex >= opts.MinTrailingWeeks {
				labels = append(labels, label)
			}
			continue
		}
		if raw[i+1].WeekIndex-label.WeekIndex >= opts.MinLabelGap {
			labels = append(labels, label)
		}
	}
	return labels
}

// ParseDate reads a YYYY-MM-DD calendar date with no time-zone conversion.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate renders a calendar date as tooltip text, e.g. "Sun, Dec 29, 2024".
func FormatDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format("Mon, Jan 2, 2006"), nil
}

// Tooltip is the hover text for a cell.
func Tooltip(d Day) string {
	noun := "contributions"
	if d.ContributionCount == 1 {
		noun = "contribution"
	}
	when, err := FormatDate(d.Date)
	if err != nil {
		when = d.Date
	}
	return fmt.Sprintf("%d %s on %s", d.ContributionCount, noun, when)
}
