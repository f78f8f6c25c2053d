package heatmap

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// cellWidth is the number of terminal columns per week.
const cellWidth = 2

var (
	plainGlyphs = [5]string{"·", "░", "▒", "▓", "█"}
	// 256-colour greens, matching the dark palette of the web heatmap.
	ansiLevels = [5]string{"\x1b[38;5;236m", "\x1b[38;5;22m", "\x1b[38;5;28m", "\x1b[38;5;34m", "\x1b[38;5;46m"}
)

const ansiReset = "\x1b[0m"

// Render writes the heatmap as text: a month label row, seven weekday rows
// and a summary line. Cells are placed by weekday so partial weeks line up.
func Render(w io.Writer, h Heatmap, color bool) error {
	bw := bufio.NewWriter(w)

	width := len(h.Weeks) * cellWidth
	header := []rune(strings.Repeat(" ", width+len("    ")))
	for _, label := range h.MonthLabels {
		col := len("    ") + label.WeekIndex*cellWidth
		for i, r := range label.Label {
			if col+i < len(header) {
				header[col+i] = r
			}
		}
	}
	fmt.Fprintln(bw, strings.TrimRight(string(header), " "))

	var grid [7][]int
	for row := range grid {
		grid[row] = make([]int, len(h.Weeks))
		for col := range grid[row] {
			grid[row][col] = -1
		}
	}
	for col, week := range h.Weeks {
		for i, day := range week {
			row := i
			if t, err := ParseDate(day.Date); err == nil {
				row = int(t.Weekday())
			}
			if row < 7 {
				grid[row][col] = day.Level
			}
		}
	}

	weekdays := [7]string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}
	for row, levels := range grid {
		fmt.Fprintf(bw, "%s ", weekdays[row])
		for _, level := range levels {
			bw.WriteString(cell(level, color))
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "\n%d contributions in the last year   Less ", h.TotalContributions)
	for level := 0; level <= 4; level++ {
		bw.WriteString(cell(level, color))
	}
	fmt.Fprintln(bw, "More")

	return bw.Flush()
}

func cell(level int, color bool) string {
	if level < 0 {
		return strings.Repeat(" ", cellWidth)
	}
	if level > 4 {
		level = 4
	}
	if !color {
		return plainGlyphs[level] + " "
	}
	return ansiLevels[level] + "■" + ansiReset + " "
}
