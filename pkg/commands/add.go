package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

// Store is the part of the task store the command handlers use.
type Store interface {
	Insert(ctx context.Context, d task.Draft) (int64, error)
	SetStatus(ctx context.Context, id int64, status task.Status) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (task.Task, error)
	Query(ctx context.Context, filter task.Filter) ([]task.Task, error)
	Purge(ctx context.Context, completedOnly bool) (int64, error)
}

// AddOptions are the optional fields of the add command
type AddOptions struct {
	Date     string
	Time     string
	Priority string
	Remind   bool
}

var clockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])?$`)

// HandleAddTask processes the add command
func HandleAddTask(ctx context.Context, store Store, out io.Writer, description string, opts AddOptions) (int64, error) {
	hour, minute, meridiem, err := splitClock(opts.Time)
	if err != nil {
		return 0, err
	}

	draft, err := task.Normalize(task.FormInput{
		Description: description,
		Date:        opts.Date,
		Hour:        hour,
		Minute:      minute,
		Meridiem:    meridiem,
		Priority:    opts.Priority,
		Reminder:    opts.Remind,
	})
	if err != nil {
		return 0, err
	}

	id, err := store.Insert(ctx, draft)
	if err != nil {
		return 0, err
	}
	utils.Log("Added task %d from command line", id)
	fmt.Fprintf(out, "Added task %d: %s\n", id, draft.Description)
	return id, nil
}

// HandleComplete marks tasks as completed
func HandleComplete(ctx context.Context, store Store, out io.Writer, ids ...int64) error {
	for _, id := range ids {
		if err := store.SetStatus(ctx, id, task.Completed); err != nil {
			return err
		}
		fmt.Fprintf(out, "Completed task %d\n", id)
	}
	return nil
}

// HandleDelete removes a task after asking for confirmation, unless skipConfirm is set
func HandleDelete(ctx context.Context, store Store, in io.Reader, out io.Writer, id int64, skipConfirm bool) error {
	t, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !skipConfirm && !confirm(in, out, fmt.Sprintf("Delete task %d %q? (y/N): ", id, t.Description)) {
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted task %d\n", id)
	return nil
}

// splitClock turns "9:30 PM" or "21:30" into the hour/minute/meridiem triple the form uses.
func splitClock(s string) (hour, minute, meridiem string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", "", nil
	}
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return "", "", "", task.Invalid("time %q must look like 9:30 PM or 21:30", s)
	}
	if m[3] != "" {
		return m[1], m[2], strings.ToUpper(m[3]), nil
	}

	h, _ := strconv.Atoi(m[1])
	if h > 23 {
		return "", "", "", task.Invalid("hour %d out of range", h)
	}
	h12, mm, mer, err := task.To12Hour(fmt.Sprintf("%02d:%s", h, m[2]))
	if err != nil {
		return "", "", "", task.Invalid("time %q: %v", s, err)
	}
	return strconv.Itoa(h12), fmt.Sprintf("%02d", mm), mer, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}
