package task

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Priority is the urgency of a task
type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	Critical Priority = "Critical"
)

// Priorities lists the vocabulary from least to most urgent.
var Priorities = []Priority{Low, Medium, High, Critical}

// Rank orders priorities; unknown values rank below Low.
func (p Priority) Rank() int {
	switch p {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	case Critical:
		return 4
	}
	return 0
}

// ParsePriority matches a priority name case-insensitively. Empty input means Medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Medium, nil
	}
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", invalidf("unknown priority %q (use Low, Medium, High or Critical)", s)
}

// Status is the completion state of a task
type Status string

const (
	Pending   Status = "Pending"
	Completed Status = "Completed"
)

// ParseStatus matches a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch {
	case strings.EqualFold(s, string(Pending)):
		return Pending, nil
	case strings.EqualFold(s, string(Completed)):
		return Completed, nil
	}
	return "", invalidf("unknown status %q", s)
}

// Task represents a single stored todo item
type Task struct {
	ID              int64     `json:"id"`
	Description     string    `json:"task"`
	DueDate         *string   `json:"due_date"`
	DueTime         *string   `json:"due_time"`
	WeekDay         *string   `json:"week_day"`
	Priority        Priority  `json:"priority"`
	Status          Status    `json:"status"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	CreatedAt       time.Time `json:"created_at"`
}

// Draft is a validated task payload ready to be written to the store.
type Draft struct {
	Description     string
	DueDate         *string
	DueTime         *string
	WeekDay         *string
	Priority        Priority
	ReminderEnabled bool
}

// IsReminderCandidate reports whether the scheduler should look at t at all.
func (t Task) IsReminderCandidate() bool {
	return t.ReminderEnabled && t.Status == Pending && t.DueDate != nil
}

// DueInstant combines due date and due time in loc. A missing time means start of day.
func (t Task) DueInstant(loc *time.Location) (time.Time, error) {
	if t.DueDate == nil {
		return time.Time{}, parseErr("task has no due date", nil)
	}
	if loc == nil {
		loc = time.Local
	}
	if t.DueTime == nil || *t.DueTime == "" {
		d, err := time.ParseInLocation(DateLayout, *t.DueDate, loc)
		if err != nil {
			return time.Time{}, parseErr("due date "+*t.DueDate, err)
		}
		return d, nil
	}
	d, err := time.ParseInLocation(DateLayout+" "+TimeLayout, *t.DueDate+" "+*t.DueTime, loc)
	if err != nil {
		return time.Time{}, parseErr("due date/time "+*t.DueDate+" "+*t.DueTime, err)
	}
	return d, nil
}

// Draft returns the writable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Description:     t.Description,
		DueDate:         t.DueDate,
		DueTime:         t.DueTime,
		WeekDay:         t.WeekDay,
		Priority:        t.Priority,
		ReminderEnabled: t.ReminderEnabled,
	}
}

// WeekDayOf returns the English weekday name of a YYYY-MM-DD date.
func WeekDayOf(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.Weekday().String(), nil
}

func strPtr(s string) *string {
	return &s
}
