package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoman/pkg/config"
	"todoman/pkg/database"
	"todoman/pkg/reminder"
	"todoman/pkg/task"
)

var today = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, fmt.Sprintf("file:ui_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(ctx, db, database.DriverSQLite))

	return database.NewStore(db, database.DriverSQLite, database.WithClock(func() time.Time { return today }))
}

func seed(t *testing.T, s *database.Store, in task.FormInput) int64 {
	t.Helper()
	d, err := task.Normalize(in)
	require.NoError(t, err)
	id, err := s.Insert(context.Background(), d)
	require.NoError(t, err)
	return id
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace}
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func newTestModel(s *database.Store) Model {
	return NewModel(context.Background(), s, config.Config{})
}

func TestAddTaskThroughForm(t *testing.T) {
	s := newTestStore(t)
	m := newTestModel(s)

	m = send(m,
		runes("a"),
		runes("Pick up dry cleaning"), tab,
		runes("2026-10-19"), tab,
		runes("9"), tab,
		runes("30"), tab,
		tab, // keep PM
		tab, // keep Medium
		space,
		enter,
	)
	require.NoError(t, m.err)
	assert.Equal(t, NormalMode, m.mode)

	all, err := s.Query(context.Background(), task.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, "Pick up dry cleaning", got.Description)
	assert.Equal(t, "21:30", *got.DueTime)
	assert.Equal(t, "Monday", *got.WeekDay)
	assert.Equal(t, task.Medium, got.Priority)
	assert.True(t, got.ReminderEnabled)

	require.Len(t, m.table.Rows(), 1)
	row := m.table.Rows()[0]
	assert.Equal(t, "[ ]", row[1])
	assert.Equal(t, "2026-10-19 (Monday) 09:30 PM", row[4])
	assert.Equal(t, "(r)", row[5])
}

func TestInvalidFormStaysOpen(t *testing.T) {
	s := newTestStore(t)
	m := newTestModel(s)

	m = send(m, runes("a"))
	for i := 0; i < fieldReminder; i++ {
		m = send(m, enter)
	}
	require.Equal(t, fieldReminder, m.activeInput)
	m = send(m, enter)

	assert.Equal(t, AddMode, m.mode)
	assert.ErrorIs(t, m.err, task.ErrValidation)

	all, err := s.Query(context.Background(), task.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEditFillsForm(t *testing.T) {
	s := newTestStore(t)
	id := seed(t, s, task.FormInput{Description: "Book flights", Date: "2026-10-21", Hour: "9", Minute: "05", Meridiem: "PM", Priority: "High"})
	m := newTestModel(s)

	m = send(m, runes("e"))
	require.Equal(t, EditMode, m.mode)
	assert.Equal(t, "Book flights", m.inputs[fieldDescription].Value())
	assert.Equal(t, "2026-10-21", m.inputs[fieldDate].Value())
	assert.Equal(t, "9", m.inputs[fieldHour].Value())
	assert.Equal(t, "05", m.inputs[fieldMinute].Value())
	assert.Equal(t, "PM", m.inputs[fieldMeridiem].Value())
	assert.Equal(t, "High", m.inputs[fieldPriority].Value())

	m = send(m, runes(" and hotel"))
	for m.activeInput != fieldReminder {
		m = send(m, tab)
	}
	m = send(m, enter)
	require.NoError(t, m.err)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Book flights and hotel", got.Description)
	assert.Equal(t, "21:05", *got.DueTime)
}

func TestCompleteAndDelete(t *testing.T) {
	s := newTestStore(t)
	id := seed(t, s, task.FormInput{Description: "Send invoice"})
	m := newTestModel(s)

	m = send(m, runes("c"))
	require.NoError(t, m.err)
	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, task.Completed, got.Status)
	assert.Equal(t, "[x]", m.table.Rows()[0][1])

	m = send(m, runes("d"))
	require.Equal(t, DeleteConfirmMode, m.mode)
	m = send(m, runes("n"))
	assert.Equal(t, NormalMode, m.mode)
	assert.Len(t, m.items, 1)

	m = send(m, runes("d"), runes("y"))
	assert.Equal(t, NormalMode, m.mode)
	assert.Empty(t, m.items)
	_, err = s.Get(context.Background(), id)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestToggleReminderWithoutDateShowsError(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, task.FormInput{Description: "someday"})
	m := newTestModel(s)

	m = send(m, runes("r"))
	assert.ErrorIs(t, m.err, task.ErrValidation)
	assert.Contains(t, m.View(), "Error:")
}

func TestFilterCycling(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, task.FormInput{Description: "today", Date: "2026-10-19"})
	done := seed(t, s, task.FormInput{Description: "done", Priority: "High"})
	require.NoError(t, s.SetStatus(context.Background(), done, task.Completed))
	m := newTestModel(s)
	require.Len(t, m.items, 2)

	m = send(m, runes("f"))
	assert.Equal(t, task.FilterPending, m.filter)
	assert.Len(t, m.items, 1)

	m = send(m, runes("f"))
	assert.Equal(t, task.FilterCompleted, m.filter)
	require.Len(t, m.items, 1)
	assert.Equal(t, done, m.items[0].ID)

	m = send(m, runes("t"))
	assert.Equal(t, task.FilterToday, m.filter)
	require.Len(t, m.items, 1)
	assert.Equal(t, "today", m.items[0].Description)
	assert.Contains(t, m.View(), "Showing today's tasks (1)")
}

func TestReminderBanner(t *testing.T) {
	s := newTestStore(t)
	id := seed(t, s, task.FormInput{Description: "Take medication", Date: "2026-10-19", Hour: "9", Minute: "10", Meridiem: "AM", Reminder: true})
	m := newTestModel(s)
	require.True(t, m.items[0].ReminderEnabled)

	require.NoError(t, s.SetReminder(context.Background(), id, false))
	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)

	m = send(m, ReminderMsg(reminder.NewEvent(got)))
	require.Len(t, m.notices, 1)
	assert.False(t, m.items[0].ReminderEnabled, "list reloads after a reminder")
	assert.Contains(t, m.View(), "Reminder: Take medication is due 2026-10-19 at 09:10 AM")

	m = send(m, esc)
	assert.Empty(t, m.notices)
	assert.NotContains(t, m.View(), "Reminder: Take medication")
}

func TestReminderArrivesWhileEditing(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, task.FormInput{Description: "x"})
	m := newTestModel(s)

	m = send(m, runes("a"), runes("half typed"))
	m = send(m, ReminderMsg{TaskID: 99, Description: "stand up"})

	assert.Equal(t, AddMode, m.mode)
	assert.Equal(t, "half typed", m.inputs[fieldDescription].Value())
	assert.Contains(t, m.View(), "Reminder: stand up")
}

func TestProgramNotifierHonoursContext(t *testing.T) {
	pctx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)

	// never started, so Send can only complete when the program context ends
	p := tea.NewProgram(newTestModel(newTestStore(t)), tea.WithContext(pctx))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := ProgramNotifier{Program: p}.Notify(ctx, reminder.Event{TaskID: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	long := strings.Repeat("é", 60)
	assert.Equal(t, strings.Repeat("é", 50)+"...", truncate(long, 50))
}

func TestCalendarPicksDueDate(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, task.FormInput{Description: "dentist", Date: "2026-11-03"})
	m := newTestModel(s)
	m.now = today

	m = send(m, runes("a"), tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.calendarOpen, "the picker only opens from the date field")

	m = send(m, tab, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.calendarOpen)
	assert.Equal(t, "2026-10-19", m.calendarDate.Format("2006-01-02"))
	assert.True(t, m.calendarMarks["2026-11-03"])
	assert.Contains(t, m.View(), "October 2026")

	m = send(m,
		tea.KeyMsg{Type: tea.KeyRight},  // 20th
		tea.KeyMsg{Type: tea.KeyDown},   // 27th
		tea.KeyMsg{Type: tea.KeyPgDown}, // November 27th
		tea.KeyMsg{Type: tea.KeyLeft},   // 26th
	)
	assert.Contains(t, m.View(), "November 2026")

	m = send(m, enter)
	assert.False(t, m.calendarOpen)
	assert.Equal(t, "2026-11-26", m.inputs[fieldDate].Value())
	assert.Equal(t, AddMode, m.mode)
	assert.Equal(t, fieldDate, m.activeInput)
}

func TestCalendarStartsFromTypedDate(t *testing.T) {
	s := newTestStore(t)
	m := newTestModel(s)
	m.now = today

	m = send(m, runes("a"), tab, runes("2026-01-31"), tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.calendarOpen)
	assert.Equal(t, "2026-01-31", m.calendarDate.Format("2006-01-02"))

	m = send(m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, "2026-02-28", m.calendarDate.Format("2006-01-02"), "day is clamped to the shorter month")
	m = send(m, tea.KeyMsg{Type: tea.KeyPgUp}, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, "2025-12-28", m.calendarDate.Format("2006-01-02"))

	m = send(m, esc)
	assert.False(t, m.calendarOpen)
	assert.Equal(t, AddMode, m.mode, "esc closes the picker, not the form")
	assert.Equal(t, "2026-01-31", m.inputs[fieldDate].Value())
}
