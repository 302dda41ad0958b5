package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

var (
	dateHeaderRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?: \(\w+\))?:$`)
	taskLineRegex   = regexp.MustCompile(`^- \[( |x)\] (?:@(\d{1,2}):(\d{2}) (AM|PM) )?(.*?)(?: \((Low|Medium|High|Critical)\))?( \(remind\))?$`)
)

// HandleImportCommand reads a file written by export (json or txt) and adds its tasks.
// Every record goes through the same validation as the form; invalid ones are reported
// and skipped. Ids in the file are not preserved.
func HandleImportCommand(ctx context.Context, store Store, out io.Writer, filename string) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filename, err)
	}

	var records []record
	if trimmed := bytes.TrimSpace(content); len(trimmed) > 0 && trimmed[0] == '[' {
		records, err = parseJSON(trimmed)
	} else {
		records, err = parseText(string(content))
	}
	if err != nil {
		return 0, err
	}

	added := 0
	for _, r := range records {
		if err := importOne(ctx, store, r); err != nil {
			if !errors.Is(err, task.ErrValidation) && !errors.Is(err, task.ErrParse) {
				return added, err
			}
			fmt.Fprintf(out, "Skipping %q: %v\n", r.input.Description, err)
			continue
		}
		added++
	}

	fmt.Fprintf(out, "Successfully imported %d task(s) from %s\n", added, filename)
	return added, nil
}

type record struct {
	input     task.FormInput
	completed bool
	err       error
}

func importOne(ctx context.Context, store Store, r record) error {
	if r.err != nil {
		return r.err
	}
	// an exported completed task may still carry a reminder; it would never fire
	if r.completed {
		r.input.Reminder = false
	}
	draft, err := task.Normalize(r.input)
	if err != nil {
		return err
	}
	id, err := store.Insert(ctx, draft)
	if err != nil {
		return err
	}
	utils.Log("Imported task %d", id)
	if r.completed {
		if err := store.SetStatus(ctx, id, task.Completed); err != nil {
			// do not leave a pending copy of a completed task behind
			if derr := store.Delete(ctx, id); derr != nil {
				utils.Log("Error removing task %d after failed import: %v", id, derr)
			}
			return err
		}
	}
	return nil
}

func parseJSON(content []byte) ([]record, error) {
	var tasks []task.Task
	if err := json.Unmarshal(content, &tasks); err != nil {
		return nil, &task.Error{Kind: task.ErrParse, Msg: "decode json", Err: err}
	}

	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		in := task.FormInput{
			Description: t.Description,
			Priority:    string(t.Priority),
			Reminder:    t.ReminderEnabled,
		}
		if t.DueDate != nil {
			in.Date = *t.DueDate
		}
		r := record{input: in, completed: t.Status == task.Completed}
		if t.DueTime != nil {
			h, m, meridiem, err := task.To12Hour(*t.DueTime)
			if err != nil {
				r.err = err
			} else {
				r.input.Hour, r.input.Minute, r.input.Meridiem = strconv.Itoa(h), fmt.Sprintf("%02d", m), meridiem
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func parseText(content string) ([]record, error) {
	var records []record
	currentDate := ""

	for n, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == noDateHeader {
			currentDate = ""
			continue
		}
		if m := dateHeaderRegex.FindStringSubmatch(line); m != nil {
			currentDate = m[1]
			continue
		}

		m := taskLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, &task.Error{Kind: task.ErrParse, Msg: fmt.Sprintf("line %d: unrecognised %q", n+1, line)}
		}
		records = append(records, record{
			input: task.FormInput{
				Description: strings.TrimPrefix(m[5], escapeChar),
				Date:        currentDate,
				Hour:        m[2],
				Minute:      m[3],
				Meridiem:    m[4],
				Priority:    m[6],
				Reminder:    m[7] != "",
			},
			completed: m[1] == "x",
		})
	}
	return records, nil
}
