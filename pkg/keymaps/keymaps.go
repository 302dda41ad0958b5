package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":       {"?", "show/hide commands"},
	"QuitApp":        {"q,ctrl+c", "quit"},
	"AddTask":        {"a", "add task"},
	"EditTask":       {"e,enter", "edit task"},
	"CompleteTask":   {"c,space", "mark complete"},
	"DeleteTask":     {"d", "delete task"},
	"ToggleReminder": {"r", "toggle reminder"},
	"NextFilter":     {"f", "cycle filter (All, Pending, Completed, High Priority, Today's Tasks)"},
	"JumpToToday":    {"t", "show today's tasks"},
	"Refresh":        {"ctrl+r", "reload tasks"},
	"DismissNotice":  {"esc", "dismiss reminder"},

	// date picker, opened from the form's date field
	"OpenCalendar":      {"ctrl+o", "pick due date from calendar"},
	"CalendarLeft":      {"left", "previous day"},
	"CalendarRight":     {"right", "next day"},
	"CalendarUp":        {"up", "previous week"},
	"CalendarDown":      {"down", "next week"},
	"CalendarPrevMonth": {"pgup,<", "previous month"},
	"CalendarNextMonth": {"pgdown,>", "next month"},
	"CalendarSelect":    {"enter", "use selected day"},
}

type KeyMap struct {
	ShowHelp       key.Binding
	QuitApp        key.Binding
	AddTask        key.Binding
	EditTask       key.Binding
	CompleteTask   key.Binding
	DeleteTask     key.Binding
	ToggleReminder key.Binding
	NextFilter     key.Binding
	JumpToToday    key.Binding
	Refresh        key.Binding
	DismissNotice  key.Binding

	OpenCalendar      key.Binding
	CalendarLeft      key.Binding
	CalendarRight     key.Binding
	CalendarUp        key.Binding
	CalendarDown      key.Binding
	CalendarPrevMonth key.Binding
	CalendarNextMonth key.Binding
	CalendarSelect    key.Binding
}

// BuildKeyMap applies config overrides on top of the defaults. Override keys are matched
// case-insensitively because viper lowercases map keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)

		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "AddTask":
			km.AddTask = binding
		case "EditTask":
			km.EditTask = binding
		case "CompleteTask":
			km.CompleteTask = binding
		case "DeleteTask":
			km.DeleteTask = binding
		case "ToggleReminder":
			km.ToggleReminder = binding
		case "NextFilter":
			km.NextFilter = binding
		case "JumpToToday":
			km.JumpToToday = binding
		case "Refresh":
			km.Refresh = binding
		case "DismissNotice":
			km.DismissNotice = binding
		case "OpenCalendar":
			km.OpenCalendar = binding
		case "CalendarLeft":
			km.CalendarLeft = binding
		case "CalendarRight":
			km.CalendarRight = binding
		case "CalendarUp":
			km.CalendarUp = binding
		case "CalendarDown":
			km.CalendarDown = binding
		case "CalendarPrevMonth":
			km.CalendarPrevMonth = binding
		case "CalendarNextMonth":
			km.CalendarNextMonth = binding
		case "CalendarSelect":
			km.CalendarSelect = binding
		}
	}
	return km
}

// Bindings lists every binding in help order
func (km KeyMap) Bindings() []key.Binding {
	return []key.Binding{
		km.AddTask, km.EditTask, km.CompleteTask, km.DeleteTask, km.ToggleReminder,
		km.NextFilter, km.JumpToToday, km.Refresh, km.DismissNotice, km.ShowHelp, km.QuitApp,
	}
}

// CalendarBindings lists the date picker bindings in help order
func (km KeyMap) CalendarBindings() []key.Binding {
	return []key.Binding{
		km.OpenCalendar, km.CalendarLeft, km.CalendarRight, km.CalendarUp, km.CalendarDown,
		km.CalendarPrevMonth, km.CalendarNextMonth, km.CalendarSelect,
	}
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		k = strings.TrimSpace(k)
		keys = append(keys, k)
		// bubbletea reports the space bar as " "
		if k == "space" {
			keys = append(keys, " ")
		}
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
