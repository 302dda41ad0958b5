package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"todoman/pkg/reminder"
	"todoman/pkg/task"
)

// HandleRemind runs a single reminder poll as of now and prints what fired. Fired reminders
// are consumed exactly as they would be by the background scheduler.
func HandleRemind(ctx context.Context, store reminder.Store, out io.Writer, cfg reminder.Config, now time.Time) (int, error) {
	notify := reminder.NotifierFunc(func(ctx context.Context, ev reminder.Event) error {
		line := fmt.Sprintf("Reminder: task %d %q", ev.TaskID, ev.Description)
		if ev.DueDate != nil {
			line += " due " + *ev.DueDate
			if ev.DueTime != nil {
				line += " " + task.DisplayTime(*ev.DueTime)
			}
		}
		_, err := fmt.Fprintln(out, line)
		return err
	})

	fired, err := reminder.New(store, notify, cfg).Poll(ctx, now)
	if err != nil {
		return fired, err
	}
	if fired == 0 {
		fmt.Fprintln(out, "No reminders due")
	}
	return fired, nil
}
