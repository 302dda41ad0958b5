package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

// loadTasks retrieves and displays tasks for the current filter
func (m *Model) loadTasks() {
	items, err := m.store.Query(m.ctx, m.filter)
	if err != nil {
		utils.Log("Error loading tasks: %v", err)
		m.err = err
		return
	}

	m.items = items

	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, taskRow(item))
	}
	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// taskRow renders a task as plain table cells
func taskRow(t task.Task) table.Row {
	status := "[ ]"
	if t.Status == task.Completed {
		status = "[x]"
	}
	bell := ""
	if t.ReminderEnabled {
		bell = "(r)"
	}
	return table.Row{
		strconv.FormatInt(t.ID, 10),
		status,
		string(t.Priority),
		truncate(t.Description, maxDescriptionWidth),
		dueInfo(t),
		bell,
	}
}

// dueInfo formats the due date as "2006-01-02 (Monday) 03:04 PM"
func dueInfo(t task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(*t.DueDate)
	if t.WeekDay != nil && *t.WeekDay != "" {
		fmt.Fprintf(&sb, " (%s)", *t.WeekDay)
	}
	if t.DueTime != nil && *t.DueTime != "" {
		sb.WriteString(" ")
		sb.WriteString(task.DisplayTime(*t.DueTime))
	}
	return sb.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// selected returns the task under the cursor, or nil when the table is empty
func (m *Model) selected() *task.Task {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}
	item := m.items[idx]
	return &item
}

// focusInput moves focus to field i, wrapping at both ends
func (m *Model) focusInput(i int) {
	m.activeInput = (i + fieldCount) % fieldCount
	for j := range m.inputs {
		if j == m.activeInput {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// fillForm loads an existing task into the form for editing
func (m *Model) fillForm(t task.Task) {
	m.resetInputs()
	m.inputs[fieldDescription].SetValue(t.Description)
	if t.DueDate != nil {
		m.inputs[fieldDate].SetValue(*t.DueDate)
	}
	if t.DueTime != nil {
		if h, minute, meridiem, err := task.To12Hour(*t.DueTime); err == nil {
			m.inputs[fieldHour].SetValue(strconv.Itoa(h))
			m.inputs[fieldMinute].SetValue(fmt.Sprintf("%02d", minute))
			m.inputs[fieldMeridiem].SetValue(meridiem)
		}
	}
	m.inputs[fieldPriority].SetValue(string(t.Priority))
	m.reminder = t.ReminderEnabled

	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
}

func (m *Model) formInput() task.FormInput {
	return task.FormInput{
		Description: m.inputs[fieldDescription].Value(),
		Date:        m.inputs[fieldDate].Value(),
		Hour:        m.inputs[fieldHour].Value(),
		Minute:      m.inputs[fieldMinute].Value(),
		Meridiem:    m.inputs[fieldMeridiem].Value(),
		Priority:    m.inputs[fieldPriority].Value(),
		Reminder:    m.reminder,
	}
}

// submitForm validates the form and saves it. On a validation error the form stays open.
func (m *Model) submitForm() {
	draft, err := task.Normalize(m.formInput())
	if err != nil {
		m.err = err
		return
	}

	switch m.mode {
	case AddMode:
		id, err := m.store.Insert(m.ctx, draft)
		if err != nil {
			m.err = err
			return
		}
		utils.Log("Added task %d", id)
		m.status = "Task added"

	case EditMode:
		if m.editingItem == nil {
			return
		}
		err := m.store.Update(m.ctx, m.editingItem.ID, draft)
		switch {
		case errors.Is(err, task.ErrNotFound):
			// deleted underneath us; nothing left to edit
			m.closeForm()
			m.err = err
			return
		case err != nil:
			m.err = err
			return
		}
		m.status = "Task updated"
	}

	m.err = nil
	m.closeForm()
}

func (m *Model) closeForm() {
	m.mode = NormalMode
	m.resetInputs()
	m.editingItem = nil
	m.loadTasks()
}
