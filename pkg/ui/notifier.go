package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"todoman/pkg/reminder"
)

// ProgramNotifier forwards scheduler events into a running bubbletea program, so that all
// UI state changes happen on the program's own update loop.
type ProgramNotifier struct {
	Program *tea.Program
}

// Notify implements reminder.Notifier. Program.Send blocks until the event loop picks the
// message up, so it runs in its own goroutine and ctx bounds the wait.
func (n ProgramNotifier) Notify(ctx context.Context, ev reminder.Event) error {
	done := make(chan struct{})
	go func() {
		n.Program.Send(ReminderMsg(ev))
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
