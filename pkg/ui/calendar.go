package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

const dateLayout = "2006-01-02"

// openCalendar shows the month grid, starting at the date already typed or today
func (m *Model) openCalendar() {
	start := m.now
	if d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(m.inputs[fieldDate].Value()), m.now.Location()); err == nil {
		start = d
	}
	m.calendarDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	m.calendarOpen = true

	// days that already have tasks are highlighted
	m.calendarMarks = make(map[string]bool)
	tasks, err := m.store.Query(m.ctx, task.FilterAll)
	if err != nil {
		utils.Log("Error loading calendar marks: %v", err)
		return
	}
	for _, t := range tasks {
		if t.DueDate != nil {
			m.calendarMarks[*t.DueDate] = true
		}
	}
}

func (m *Model) updateCalendar(msg tea.KeyMsg) {
	switch {
	case msg.String() == "esc":
		m.calendarOpen = false
	case key.Matches(msg, m.keyMap.CalendarSelect):
		m.inputs[fieldDate].SetValue(m.calendarDate.Format(dateLayout))
		m.inputs[fieldDate].CursorEnd()
		m.calendarOpen = false
	case key.Matches(msg, m.keyMap.CalendarLeft):
		m.calendarDate = m.calendarDate.AddDate(0, 0, -1)
	case key.Matches(msg, m.keyMap.CalendarRight):
		m.calendarDate = m.calendarDate.AddDate(0, 0, 1)
	case key.Matches(msg, m.keyMap.CalendarUp):
		m.calendarDate = m.calendarDate.AddDate(0, 0, -7)
	case key.Matches(msg, m.keyMap.CalendarDown):
		m.calendarDate = m.calendarDate.AddDate(0, 0, 7)
	case key.Matches(msg, m.keyMap.CalendarPrevMonth):
		m.calendarDate = addMonths(m.calendarDate, -1)
	case key.Matches(msg, m.keyMap.CalendarNextMonth):
		m.calendarDate = addMonths(m.calendarDate, 1)
	}
}

// addMonths keeps the day of month, clamped to the length of the target month
func addMonths(d time.Time, n int) time.Time {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return first.AddDate(0, 0, day-1)
}

// renderCalendar draws the month of the selected day
func (m Model) renderCalendar() string {
	var sb strings.Builder

	firstDay := time.Date(m.calendarDate.Year(), m.calendarDate.Month(), 1, 0, 0, 0, 0, m.calendarDate.Location())
	daysInMonth := firstDay.AddDate(0, 1, -1).Day()
	firstWeekday := int(firstDay.Weekday())

	sb.WriteString(m.titleBar(" "+firstDay.Format("January 2006")+" ", m.styles.AccentColor))
	sb.WriteString("\n\n")

	weekdayRow := ""
	for _, day := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		weekdayRow += fmt.Sprintf("%-4s", day)
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(weekdayRow))
	sb.WriteString("\n")

	row := strings.Repeat("    ", firstWeekday)
	for day := 1; day <= daysInMonth; day++ {
		date := firstDay.AddDate(0, 0, day-1)
		isToday := date.Year() == m.now.Year() && date.YearDay() == m.now.YearDay()

		dayStyle := lipgloss.NewStyle()
		switch {
		case day == m.calendarDate.Day():
			dayStyle = dayStyle.Background(lipgloss.Color(m.styles.AccentColor)).
				Foreground(lipgloss.Color(m.styles.SelectedTextColor)).Bold(true)
		case isToday:
			dayStyle = dayStyle.Background(lipgloss.Color(m.styles.SelectedBgColor)).
				Foreground(lipgloss.Color(m.styles.SelectedTextColor))
		case m.calendarMarks[date.Format(dateLayout)]:
			dayStyle = dayStyle.Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
		}
		row += dayStyle.Render(fmt.Sprintf("%-4d", day))

		if (firstWeekday+day)%7 == 0 || day == daysInMonth {
			sb.WriteString(row)
			sb.WriteString("\n")
			row = ""
		}
	}

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).
		Render("Selected: " + m.calendarDate.Format("Monday, 2006-01-02")))

	return sb.String()
}
