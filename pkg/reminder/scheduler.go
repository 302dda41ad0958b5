package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

// Store is the slice of the task store the scheduler needs.
type Store interface {
	ReminderCandidates(ctx context.Context) ([]task.Task, error)
	SetReminder(ctx context.Context, id int64, enabled bool) error
}

// Config controls poll cadence and how far ahead a reminder fires
type Config struct {
	Interval time.Duration
	Window   time.Duration
}

// DefaultConfig polls every minute and fires for tasks due within 15 minutes.
func DefaultConfig() Config {
	return Config{
		Interval: 60 * time.Second,
		Window:   15 * time.Minute,
	}
}

// Scheduler polls the store for due-soon reminders and fires each one once.
// The only state is the store's reminder flag, which is consumed on firing.
type Scheduler struct {
	store    Store
	notifier Notifier
	cfg      Config
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLogger replaces the default process logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithClock replaces time.Now for the polls started by Run.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(store Store, notifier Notifier, cfg Config, opts ...Option) *Scheduler {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	s := &Scheduler{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		log:      utils.Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Poll runs one cycle as of now and returns how many reminders fired.
// Only a failed candidate query is returned as an error; per-task problems are logged and skipped.
func (s *Scheduler) Poll(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.store.ReminderCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("load reminder candidates: %w", err)
	}

	fired := 0
	for _, t := range candidates {
		if !t.IsReminderCandidate() {
			continue
		}
		log := s.log.WithField("task_id", t.ID)

		due, err := t.DueInstant(now.Location())
		if err != nil {
			log.WithError(err).Warn("skipping reminder with malformed due date")
			continue
		}

		delta := due.Sub(now)
		if delta < 0 || delta > s.cfg.Window {
			continue
		}

		if err := s.notifier.Notify(ctx, NewEvent(t)); err != nil {
			if ctx.Err() != nil {
				return fired, ctx.Err()
			}
			// flag stays set, so the next poll retries
			log.WithError(err).Warn("reminder notification failed")
			continue
		}

		if err := s.store.SetReminder(ctx, t.ID, false); err != nil {
			if errors.Is(err, task.ErrNotFound) {
				log.Debug("task deleted before its reminder was cleared")
			} else {
				log.WithError(err).Error("clear reminder flag")
			}
		}
		fired++
		log.WithField("due", due.Format(time.RFC3339)).Info("reminder fired")
	}

	return fired, nil
}

// Run polls immediately and then every Interval until ctx is cancelled. Cycle errors and panics
// are logged and the loop keeps going. Run returns after the in-flight cycle has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	if _, err := c.AddFunc("@every "+s.cfg.Interval.String(), func() { s.cycle(ctx) }); err != nil {
		return fmt.Errorf("schedule reminder poll: %w", err)
	}

	s.log.Infof("reminder scheduler started: interval=%s window=%s", s.cfg.Interval, s.cfg.Window)
	s.cycle(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Infof("reminder scheduler stopped: %v", ctx.Err())
	return nil
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("reminder poll panic: %v", r)
		}
	}()

	fired, err := s.Poll(ctx, s.now())
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("reminder poll failed")
		return
	}
	utils.Log("reminder poll done, fired=%d", fired)
}
