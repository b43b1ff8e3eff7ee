package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/daily"
	"github.com/julianstephens/dailycal/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	todayStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const cellWidth = 4

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// renderMonth draws v as a Monday-first grid followed by progress and
// navigation hints.
func renderMonth(v daily.MonthView, now time.Time) string {
	var b strings.Builder

	nav := ""
	if v.CanGoPrev {
		nav += "◀ "
	}
	if v.CanGoNext {
		nav += "▶"
	}
	b.WriteString(titleStyle.Render(v.Month.Format("January 2006")))
	if nav != "" {
		b.WriteString("  " + headerStyle.Render(strings.TrimSpace(nav)))
	}
	b.WriteString("\n")

	for _, wd := range weekdayHeader {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%*s", cellWidth, wd)))
	}
	b.WriteString("\n")

	// Monday is column 0.
	offset := (int(v.Month.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat(" ", offset*cellWidth))
	col := offset
	for _, d := range v.Days {
		b.WriteString(renderCell(d, d.Day == v.Viewed.Day()))
		col++
		if col == 7 && d.Day != len(v.Days) {
			b.WriteString("\n")
			col = 0
		}
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Progress: %s %3.0f%%\n", progressBar(v.Progress, 20), v.Progress*100))
	if v.Resumed != 0 {
		if v.ResumedCompleted {
			b.WriteString(fmt.Sprintf("Completed day %d (was %3.0f%%)", v.Resumed, v.PreviousProgress*100))
			if v.NextAvailable != 0 {
				b.WriteString(fmt.Sprintf(", latest open day: %d", v.NextAvailable))
			}
			b.WriteString("\n")
		} else {
			b.WriteString(fmt.Sprintf("Last played: day %d\n", v.Resumed))
		}
	}
	if !v.NextDayAt.IsZero() {
		b.WriteString(fmt.Sprintf("Next day in %s\n", calendar.FormatRemaining(v.NextDayAt.Sub(now))))
	}
	return b.String()
}

func renderCell(d daily.DayView, selected bool) string {
	mark := " "
	style := lipgloss.NewStyle()
	switch {
	case !d.Visible:
		style = lockedStyle
	case d.Status == models.DayCompleted:
		mark = "✓"
		style = completedStyle
	case d.Status == models.DayActive:
		mark = "•"
		style = activeStyle
	}
	if d.Today {
		style = style.Inherit(todayStyle)
	}
	if selected {
		style = style.Inherit(selectedStyle)
	}
	return " " + style.Render(fmt.Sprintf("%2d", d.Day)) + mark
}

func progressBar(p float64, width int) string {
	filled := int(p*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return completedStyle.Render(strings.Repeat("█", filled)) + lockedStyle.Render(strings.Repeat("░", width-filled))
}

func renderSelection(w io.Writer, sel daily.DaySelection) {
	label := calendar.FormatDay(sel.Date)
	if sel.Today {
		label += " (today)"
	}
	fmt.Fprintf(w, "%s: %s\n", label, sel.Status)
}

func renderAssignment(w io.Writer, a *daily.Assignment) {
	verb := "Started"
	if a.Resumed {
		verb = "Resumed"
	}
	fmt.Fprintf(w, "%s %s: level %d (%s)\n", verb, calendar.FormatDay(a.Day), a.LevelID, a.Mode)
}
