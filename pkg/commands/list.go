package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"todoman/pkg/task"
)

// unpadded cells that fill their column get truncated with an ellipsis
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// HandleList prints the tasks matching filter as a table
func HandleList(ctx context.Context, store Store, out io.Writer, filter task.Filter) error {
	tasks, err := store.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintf(out, "No tasks (%s)\n", filter)
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		}).
		Headers("ID", "", "Priority", "Task", "Due", "Reminder")
	for _, tk := range tasks {
		status := "[ ]"
		if tk.Status == task.Completed {
			status = "[x]"
		}
		reminder := ""
		if tk.ReminderEnabled {
			reminder = "on"
		}
		t.Row(strconv.FormatInt(tk.ID, 10), status, string(tk.Priority), tk.Description, formatDue(tk), reminder)
	}

	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d task(s) (%s)\n", len(tasks), filter)
	return nil
}

// formatDue renders "2026-10-19 (Monday) 09:30 PM", or "" for undated tasks
func formatDue(t task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	due := *t.DueDate
	if t.WeekDay != nil {
		due += " (" + *t.WeekDay + ")"
	}
	if t.DueTime != nil {
		due += " " + task.DisplayTime(*t.DueTime)
	}
	return due
}
