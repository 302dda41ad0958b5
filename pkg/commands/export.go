package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"todoman/pkg/task"
)

const (
	noDateHeader   = "No date:"
	timeMarker     = "@"
	reminderMarker = " (remind)"
	escapeChar     = `\`
)

// HandleExportCommand writes every task to filename as json or txt
func HandleExportCommand(ctx context.Context, store Store, out io.Writer, filename, exportType string) error {
	tasks, err := store.Query(ctx, task.FilterAll)
	if err != nil {
		return err
	}

	var content []byte
	switch exportType {
	case "json":
		content, err = json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tasks: %w", err)
		}
	case "txt":
		content = []byte(exportText(tasks))
	default:
		return fmt.Errorf("unknown export type %q (use json or txt)", exportType)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	fmt.Fprintf(out, "Successfully exported %d task(s) to %s\n", len(tasks), filename)
	return nil
}

// exportText groups tasks under a header per due date, undated tasks last:
//
//	2026-10-19 (Monday):
//	- [ ] @09:30 PM Pick up dry cleaning (High) (remind)
func exportText(tasks []task.Task) string {
	groups := make(map[string][]task.Task)
	var order []string
	for _, t := range tasks {
		header := noDateHeader
		if t.DueDate != nil {
			header = *t.DueDate
			if t.WeekDay != nil {
				header += " (" + *t.WeekDay + ")"
			}
			header += ":"
		}
		if _, seen := groups[header]; !seen {
			order = append(order, header)
		}
		groups[header] = append(groups[header], t)
	}

	// dated groups sort by date; the header starts with it
	sortHeaders(order)

	var lines []string
	for _, header := range order {
		lines = append(lines, "", header)
		for _, t := range groups[header] {
			status := " "
			if t.Status == task.Completed {
				status = "x"
			}
			line := fmt.Sprintf("- [%s] ", status)
			if t.DueTime != nil {
				line += timeMarker + task.DisplayTime(*t.DueTime) + " "
			}
			line += fmt.Sprintf("%s (%s)", escapeDescription(t.Description), t.Priority)
			if t.ReminderEnabled {
				line += reminderMarker
			}
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

// escapeDescription keeps a description that starts like a time slot from being read back as one
func escapeDescription(desc string) string {
	if strings.HasPrefix(desc, timeMarker) || strings.HasPrefix(desc, escapeChar) {
		return escapeChar + desc
	}
	return desc
}

func sortHeaders(headers []string) {
	sort.SliceStable(headers, func(i, j int) bool {
		switch {
		case headers[i] == noDateHeader:
			return false
		case headers[j] == noDateHeader:
			return true
		}
		return headers[i] < headers[j]
	})
}
