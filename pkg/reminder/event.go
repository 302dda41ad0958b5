package reminder

import (
	"context"

	"todoman/pkg/task"
)

// Event is what the foreground receives when a reminder fires.
type Event struct {
	TaskID      int64   `json:"task_id"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	DueTime     *string `json:"due_time"`
}

// NewEvent builds the notification payload for t.
func NewEvent(t task.Task) Event {
	return Event{
		TaskID:      t.ID,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
	}
}

// Notifier hands events to whoever owns the presentation state. Implementations must be safe
// to call from the scheduler goroutine and must not touch UI state directly.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Queue is a buffered channel of events for a foreground loop to drain.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue holding up to size undelivered events.
func NewQueue(size int) *Queue {
	if size < 0 {
		size = 0
	}
	return &Queue{ch: make(chan Event, size)}
}

// Notify blocks while the queue is full, until ctx is done.
func (q *Queue) Notify(ctx context.Context, ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events is the receive side of the queue
func (q *Queue) Events() <-chan Event {
	return q.ch
}
