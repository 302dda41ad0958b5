package reminder

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoman/pkg/task"
)

type fakeStore struct {
	mu       sync.Mutex
	tasks    map[int64]task.Task
	queryErr error
	clearErr error
}

func newFakeStore(tasks ...task.Task) *fakeStore {
	s := &fakeStore{tasks: make(map[int64]task.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeStore) ReminderCandidates(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []task.Task
	for _, t := range s.tasks {
		if t.IsReminderCandidate() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) SetReminder(ctx context.Context, id int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	t, ok := s.tasks[id]
	if !ok {
		return task.NotFound(id)
	}
	t.ReminderEnabled = enabled
	s.tasks[id] = t
	return nil
}

func (s *fakeStore) reminderEnabled(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].ReminderEnabled
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ids() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for _, ev := range r.events {
		out = append(out, ev.TaskID)
	}
	return out
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func reminderTask(id int64, date, clock string) task.Task {
	t := task.Task{
		ID:              id,
		Description:     "task",
		DueDate:         &date,
		Priority:        task.Medium,
		Status:          task.Pending,
		ReminderEnabled: true,
	}
	if clock != "" {
		t.DueTime = &clock
	}
	return t
}

func TestPoll_WindowBoundary(t *testing.T) {
	due := time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		fire bool
	}{
		{"exactly window ahead", due.Add(-15 * time.Minute), true},
		{"one second past window", due.Add(-15*time.Minute - time.Second), false},
		{"due right now", due, true},
		{"already overdue", due.Add(time.Second), false},
		{"well ahead", due.Add(-2 * time.Hour), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := newFakeStore(reminderTask(1, "2026-10-19", "10:15"))
			rec := &recorder{}
			s := New(store, rec, DefaultConfig(), WithLogger(quietLogger()))

			fired, err := s.Poll(context.Background(), c.now)
			require.NoError(t, err)

			if c.fire {
				assert.Equal(t, 1, fired)
				assert.Equal(t, []int64{1}, rec.ids())
				assert.False(t, store.reminderEnabled(1))
			} else {
				assert.Zero(t, fired)
				assert.Empty(t, rec.ids())
				assert.True(t, store.reminderEnabled(1), "task stays a candidate")
			}
		})
	}
}

func TestPoll_FiresOnce(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(reminderTask(7, "2026-10-19", "10:05"))
	rec := &recorder{}
	s := New(store, rec, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	fired, err = s.Poll(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Equal(t, []int64{7}, rec.ids())
	assert.False(t, store.reminderEnabled(7))
}

func TestPoll_DateOnlyMeansStartOfDay(t *testing.T) {
	store := newFakeStore(reminderTask(3, "2026-10-20", ""))
	rec := &recorder{}
	s := New(store, rec, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), time.Date(2026, 10, 19, 23, 50, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestPoll_MalformedCandidateIsSkipped(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(
		reminderTask(1, "2026-10-19", "quarter past ten"),
		reminderTask(2, "19/10/2026", "10:05"),
		reminderTask(3, "2026-10-19", "10:10"),
	)
	rec := &recorder{}
	s := New(store, rec, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, []int64{3}, rec.ids())
	assert.True(t, store.reminderEnabled(1))
	assert.True(t, store.reminderEnabled(2))
}

func TestPoll_CompletedTasksNeverFire(t *testing.T) {
	done := reminderTask(4, "2026-10-19", "10:05")
	done.Status = task.Completed
	rec := &recorder{}
	s := New(newFakeStore(done), rec, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, fired)
}

func TestPoll_QueryErrorIsReturned(t *testing.T) {
	store := newFakeStore()
	store.queryErr = task.Storage("query reminder candidates", errors.New("disk I/O error"))
	s := New(store, &recorder{}, DefaultConfig(), WithLogger(quietLogger()))

	_, err := s.Poll(context.Background(), time.Now())
	assert.ErrorIs(t, err, task.ErrStorage)
}

func TestPoll_NotifyFailureKeepsFlag(t *testing.T) {
	store := newFakeStore(reminderTask(5, "2026-10-19", "10:05"))
	failing := NotifierFunc(func(ctx context.Context, ev Event) error {
		return errors.New("ui gone")
	})
	s := New(store, failing, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.True(t, store.reminderEnabled(5))
}

func TestPoll_ClearFailureStillCountsAsFired(t *testing.T) {
	store := newFakeStore(reminderTask(6, "2026-10-19", "10:05"))
	store.clearErr = task.Storage("set reminder", errors.New("locked"))
	rec := &recorder{}
	s := New(store, rec, DefaultConfig(), WithLogger(quietLogger()))

	fired, err := s.Poll(context.Background(), time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestRun_PollsImmediatelyAndStopsOnCancel(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(reminderTask(1, "2026-10-19", "10:10"))
	queue := NewQueue(4)
	s := New(store, queue, Config{Interval: time.Hour, Window: 15 * time.Minute},
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return now }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case ev := <-queue.Events():
		assert.Equal(t, int64(1), ev.TaskID)
		assert.Equal(t, "10:10", *ev.DueTime)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event from the first poll")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_SurvivesFailingCycles(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errors.New("no such table: todos")
	s := New(store, &recorder{}, Config{Interval: time.Second}, WithLogger(quietLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.Run(ctx))
}

func TestQueue_NotifyHonoursContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.Notify(ctx, Event{TaskID: 1}))
	cancel()
	assert.ErrorIs(t, q.Notify(ctx, Event{TaskID: 2}), context.Canceled)
}
