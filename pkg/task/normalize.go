package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormInput is the raw add/edit form as typed by the user
type FormInput struct {
	Description string
	Date        string // YYYY-MM-DD, optional
	Hour        string // 1-12
	Minute      string // 0-59
	Meridiem    string // AM or PM
	Priority    string
	Reminder    bool
}

// Normalize validates raw form input and turns it into a Draft.
// The due time is only set when both hour and minute are given.
func Normalize(in FormInput) (Draft, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Draft{}, invalidf("task description is required")
	}

	draft := Draft{Description: desc}

	if date := strings.TrimSpace(in.Date); date != "" {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return Draft{}, invalidf("invalid date %q, use YYYY-MM-DD", date)
		}
		draft.DueDate = strPtr(d.Format(DateLayout))
		draft.WeekDay = strPtr(d.Weekday().String())
	}

	hour, minute := strings.TrimSpace(in.Hour), strings.TrimSpace(in.Minute)
	if hour != "" && minute != "" {
		h, err := strconv.Atoi(hour)
		if err != nil {
			return Draft{}, invalidf("invalid hour %q", hour)
		}
		m, err := strconv.Atoi(minute)
		if err != nil {
			return Draft{}, invalidf("invalid minute %q", minute)
		}
		hhmm, err := To24Hour(h, m, in.Meridiem)
		if err != nil {
			return Draft{}, err
		}
		draft.DueTime = &hhmm
	}

	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Draft{}, err
	}
	draft.Priority = priority

	if in.Reminder && draft.DueDate == nil {
		return Draft{}, invalidf("a reminder needs a due date")
	}
	draft.ReminderEnabled = in.Reminder

	return draft, nil
}

// To24Hour converts a 12-hour clock reading to "HH:MM".
// 12 AM is midnight (00) and 12 PM is noon (12).
func To24Hour(hour, minute int, meridiem string) (string, error) {
	if hour < 1 || hour > 12 {
		return "", invalidf("hour %d out of range 1-12", hour)
	}
	if minute < 0 || minute > 59 {
		return "", invalidf("minute %d out of range 0-59", minute)
	}

	switch strings.ToUpper(strings.TrimSpace(meridiem)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return "", invalidf("meridiem must be AM or PM, got %q", meridiem)
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// To12Hour splits a stored "HH:MM" value back into the form's hour, minute and meridiem.
func To12Hour(hhmm string) (hour, minute int, meridiem string, err error) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return 0, 0, "", parseErr("due time "+hhmm, err)
	}

	hour, meridiem = t.Hour(), "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return hour, t.Minute(), meridiem, nil
}

// DisplayTime renders a stored "HH:MM" as "03:04 PM". Unparseable values are returned as-is.
func DisplayTime(hhmm string) string {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("03:04 PM")
}
