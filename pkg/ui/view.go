package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"todoman/pkg/reminder"
	"todoman/pkg/task"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	// Reminder banner stays on top in every mode until dismissed
	if len(m.notices) > 0 {
		sb.WriteString(m.renderNotice(m.notices[0]))
		sb.WriteString("\n\n")
	}

	switch m.mode {
	case NormalMode:
		sb.WriteString(m.titleBar(" Todo Manager ", m.styles.AccentColor))
		sb.WriteString("  ")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.NormalTextColor)).
			Render(m.now.Format("Monday, 2006-01-02 03:04:05 PM")))
		sb.WriteString("\n\n")

		sb.WriteString(m.table.View())
		sb.WriteString("\n")

		viewInfo := fmt.Sprintf("Showing %s (%d)", strings.ToLower(string(m.filter)), len(m.items))
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(viewInfo))

	case AddMode:
		sb.WriteString(m.titleBar(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		if m.calendarOpen {
			sb.WriteString(m.renderCalendar())
		} else {
			sb.WriteString(m.renderForm())
		}

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		if m.calendarOpen {
			sb.WriteString(m.renderCalendar())
		} else {
			sb.WriteString(m.renderForm())
		}

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.editingItem != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Task: %s\n", m.editingItem.Description))
			if due := dueInfo(*m.editingItem); due != "" {
				sb.WriteString(fmt.Sprintf("Due: %s\n", due))
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")

		keyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.AccentColor)).
			Bold(true)
		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.NormalTextColor))

		for _, binding := range m.keyMap.Bindings() {
			sb.WriteString(fmt.Sprintf("%s: %s\n",
				descStyle.Render(binding.Help().Desc),
				keyStyle.Render(strings.Join(binding.Keys(), ", "))))
		}

		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Date Picker"))
		sb.WriteString("\n\n")
		for _, binding := range m.keyMap.CalendarBindings() {
			sb.WriteString(fmt.Sprintf("%s: %s\n",
				descStyle.Render(binding.Help().Desc),
				keyStyle.Render(strings.Join(binding.Keys(), ", "))))
		}
	}

	if m.err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.status)
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(title, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(title)
}

func (m Model) renderNotice(ev reminder.Event) string {
	text := fmt.Sprintf("Reminder: %s", ev.Description)
	if ev.DueDate != nil {
		text += " is due " + *ev.DueDate
		if ev.DueTime != nil && *ev.DueTime != "" {
			text += " at " + task.DisplayTime(*ev.DueTime)
		}
	}
	if more := len(m.notices) - 1; more > 0 {
		text += fmt.Sprintf(" (+%d more)", more)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.styles.ReminderColor)).
		Foreground(lipgloss.Color(m.styles.ReminderColor)).
		Padding(0, 1).
		Render(text)
}

// helpBar renders a status bar with the actions available in the current mode
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case NormalMode:
		addBinding(m.keyMap.AddTask, "add")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.CompleteTask, "done")
		addBinding(m.keyMap.DeleteTask, "del")
		addBinding(m.keyMap.ToggleReminder, "remind")
		addBinding(m.keyMap.NextFilter, "filter")
		addBinding(m.keyMap.JumpToToday, "today")
		if len(m.notices) > 0 {
			addBinding(m.keyMap.DismissNotice, "dismiss")
		}
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode:
		if m.calendarOpen {
			addAction("←→↑↓", "move")
			addBinding(m.keyMap.CalendarPrevMonth, "prev month")
			addBinding(m.keyMap.CalendarNextMonth, "next month")
			addBinding(m.keyMap.CalendarSelect, "pick")
			addAction("esc", "close")
			break
		}
		if m.activeInput == fieldDate {
			addBinding(m.keyMap.OpenCalendar, "calendar")
		}
		addAction("tab", "next field")
		addAction("space", "toggle reminder")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case HelpViewMode:
		addAction("esc", "back")
		addBinding(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	labels := []string{
		fieldDescription: "Task:",
		fieldDate:        "Due Date (YYYY-MM-DD):",
		fieldHour:        "Hour:",
		fieldMinute:      "Minute:",
		fieldMeridiem:    "AM/PM:",
		fieldPriority:    "Priority:",
	}
	for i, in := range m.inputs {
		sb.WriteString(labels[i])
		sb.WriteString("\n")
		sb.WriteString(in.View())
		sb.WriteString("\n\n")
	}

	box := "[ ]"
	if m.reminder {
		box = "[x]"
	}
	line := fmt.Sprintf("%s Remind me before it is due", box)
	if m.activeInput == fieldReminder {
		line = lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true).Render("> " + line)
	} else {
		line = "  " + line
	}
	sb.WriteString(line)

	return sb.String()
}
