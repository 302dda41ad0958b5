package task

import "strings"

// Filter selects which tasks a list query returns
type Filter string

const (
	FilterAll          Filter = "All"
	FilterPending      Filter = "Pending"
	FilterCompleted    Filter = "Completed"
	FilterHighPriority Filter = "High Priority"
	FilterToday        Filter = "Today's Tasks"
)

// Filters is the filter vocabulary in the order the UI cycles through it.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterHighPriority, FilterToday}

// ParseFilter accepts the filter names case-insensitively, plus "today" and "high" as shorthands.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	switch strings.ToLower(s) {
	case "today":
		return FilterToday, nil
	case "high":
		return FilterHighPriority, nil
	}
	return "", invalidf("unknown filter %q", s)
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}
