package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"todoman/pkg/reminder"
	"todoman/pkg/task"
	"todoman/pkg/utils"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()

	case ReminderMsg:
		ev := reminder.Event(msg)
		utils.Log("Reminder for task %d: %s", ev.TaskID, ev.Description)
		m.notices = append(m.notices, ev)
		// the scheduler has just cleared the flag, so the reminder column is stale
		m.loadTasks()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			switch {
			case key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = HelpViewMode

			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit

			case key.Matches(msg, m.keyMap.DismissNotice):
				if len(m.notices) > 0 {
					m.notices = m.notices[1:]
				}
				m.err = nil
				m.status = ""

			case key.Matches(msg, m.keyMap.AddTask):
				m.mode = AddMode
				m.editingItem = nil
				m.resetInputs()

			case key.Matches(msg, m.keyMap.EditTask):
				if item := m.selected(); item != nil {
					m.mode = EditMode
					m.editingItem = item
					m.fillForm(*item)
				}

			case key.Matches(msg, m.keyMap.CompleteTask):
				if item := m.selected(); item != nil {
					if item.Status == task.Completed {
						m.status = "Task is already completed"
						break
					}
					if err := m.store.SetStatus(m.ctx, item.ID, task.Completed); err != nil {
						m.err = err
					} else {
						m.status = "Task marked as completed"
						m.loadTasks()
					}
				}

			case key.Matches(msg, m.keyMap.ToggleReminder):
				if item := m.selected(); item != nil {
					enabled := !item.ReminderEnabled
					if err := m.store.SetReminder(m.ctx, item.ID, enabled); err != nil {
						m.err = err
					} else {
						m.status = "Reminder disabled"
						if enabled {
							m.status = "Reminder enabled"
						}
						m.loadTasks()
					}
				}

			case key.Matches(msg, m.keyMap.DeleteTask):
				if item := m.selected(); item != nil {
					m.mode = DeleteConfirmMode
					m.editingItem = item
				}

			case key.Matches(msg, m.keyMap.NextFilter):
				m.filter = m.filter.Next()
				m.table.SetCursor(0)
				m.loadTasks()

			case key.Matches(msg, m.keyMap.JumpToToday):
				m.filter = task.FilterToday
				m.table.SetCursor(0)
				m.loadTasks()

			case key.Matches(msg, m.keyMap.Refresh):
				m.loadTasks()
			}

		case AddMode, EditMode:
			if m.calendarOpen {
				m.updateCalendar(msg)
				return m, nil
			}
			if m.activeInput == fieldDate && key.Matches(msg, m.keyMap.OpenCalendar) {
				m.openCalendar()
				return m, nil
			}

			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.resetInputs()
				m.editingItem = nil
				return m, nil

			case "tab", "down":
				m.focusInput(m.activeInput + 1)
				return m, nil

			case "shift+tab", "up":
				m.focusInput(m.activeInput - 1)
				return m, nil

			case "enter":
				if m.activeInput == fieldReminder {
					m.submitForm()
				} else {
					m.focusInput(m.activeInput + 1)
				}
				return m, nil

			case " ", "space", "x":
				if m.activeInput == fieldReminder {
					m.reminder = !m.reminder
					return m, nil
				}
			}

			if m.activeInput < fieldReminder {
				m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
				cmds = append(cmds, cmd)
			}

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.editingItem != nil {
					utils.Log("Deleting task ID: %d", m.editingItem.ID)
					if err := m.store.Delete(m.ctx, m.editingItem.ID); err != nil {
						utils.Log("Error deleting task: %v", err)
						m.err = err
					} else {
						m.status = "Task deleted"
						m.loadTasks()
					}
				}
				m.mode = NormalMode
				m.editingItem = nil

			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingItem = nil
			}

		case HelpViewMode:
			switch {
			case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
	}

	// Only update table in normal mode
	if m.mode == NormalMode {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
