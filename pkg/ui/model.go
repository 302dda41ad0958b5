package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoman/pkg/config"
	"todoman/pkg/keymaps"
	"todoman/pkg/reminder"
	"todoman/pkg/task"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	HelpViewMode
)

// form fields, in tab order
const (
	fieldDescription = iota
	fieldDate
	fieldHour
	fieldMinute
	fieldMeridiem
	fieldPriority
	fieldReminder
	fieldCount
)

const maxDescriptionWidth = 50

// Store is what the UI needs from the task store.
type Store interface {
	Insert(ctx context.Context, d task.Draft) (int64, error)
	Update(ctx context.Context, id int64, d task.Draft) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status task.Status) error
	SetReminder(ctx context.Context, id int64, enabled bool) error
	Get(ctx context.Context, id int64) (task.Task, error)
	Query(ctx context.Context, filter task.Filter) ([]task.Task, error)
}

// ReminderMsg is delivered to the bubbletea loop when the scheduler fires a reminder.
type ReminderMsg reminder.Event

type clockMsg time.Time

// Model represents the application state
type Model struct {
	ctx           context.Context
	table         table.Model
	items         []task.Task
	store         Store
	width, height int
	err           error
	status        string
	now           time.Time

	// Configuration
	styles config.Styles
	keyMap keymaps.KeyMap

	filter task.Filter

	// Form state
	mode        InputMode
	inputs      []textinput.Model
	reminder    bool
	activeInput int

	// Date picker over the date field
	calendarOpen  bool
	calendarDate  time.Time
	calendarMarks map[string]bool

	// Edit/delete state
	editingItem *task.Task

	// Reminders waiting to be acknowledged, oldest first
	notices []reminder.Event
}

// NewModel creates a new UI model with the provided configuration
func NewModel(ctx context.Context, store Store, cfg config.Config) Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "", Width: 3},
		{Title: "Priority", Width: 9},
		{Title: "Task", Width: 53},
		{Title: "Due", Width: 32},
		{Title: "", Width: 3},
	}

	// the default table bindings use letters that belong to task actions
	tableKeys := table.DefaultKeyMap()
	tableKeys.PageUp.SetKeys("pgup")
	tableKeys.PageDown.SetKeys("pgdown")
	tableKeys.HalfPageUp.SetKeys("ctrl+u")
	tableKeys.HalfPageDown.SetKeys("ctrl+d")
	tableKeys.GotoTop.SetKeys("home", "g")
	tableKeys.GotoBottom.SetKeys("end", "G")

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithKeyMap(tableKeys),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(cfg.Styles.BorderColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(cfg.Styles.SelectedTextColor)).
		Background(lipgloss.Color(cfg.Styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	inputs := make([]textinput.Model, fieldReminder)
	placeholders := []string{
		fieldDescription: "Task description",
		fieldDate:        "Due date (YYYY-MM-DD, optional)",
		fieldHour:        "Hour (1-12)",
		fieldMinute:      "Minute (0-59)",
		fieldMeridiem:    "AM/PM",
		fieldPriority:    "Low, Medium, High or Critical",
	}
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 40
		inputs[i] = in
	}
	inputs[fieldDescription].CharLimit = 500

	m := Model{
		ctx:    ctx,
		table:  t,
		store:  store,
		styles: cfg.Styles,
		keyMap: keymaps.BuildKeyMap(cfg.KeyMap),
		filter: task.FilterAll,
		mode:   NormalMode,
		inputs: inputs,
		now:    time.Now(),
	}
	m.resetInputs()
	m.loadTasks()

	return m
}

// Init starts the header clock
func (m Model) Init() tea.Cmd {
	return tickClock()
}

func tickClock() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// resetInputs restores the form defaults
func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.inputs[fieldMeridiem].SetValue("PM")
	m.inputs[fieldPriority].SetValue(string(task.Medium))
	m.reminder = false
	m.calendarOpen = false

	m.activeInput = fieldDescription
	m.inputs[fieldDescription].Focus()
}
