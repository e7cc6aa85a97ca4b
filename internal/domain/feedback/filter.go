package feedback

import "strings"

// Mode selects which rating class a filtered view shows.
type Mode string

const (
	ModeAll      Mode = "all"
	ModePositive Mode = "positive"
	ModeNegative Mode = "negative"
)

// ValidMode reports whether m is one of the three recognized modes.
func ValidMode(m Mode) bool {
	return m == ModeAll || m == ModePositive || m == ModeNegative
}

// Stats summarizes an unfiltered record set. Records with a zero rating count
// toward Total only.
type Stats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// ComputeStats derives summary counts over the entire record set. Callers
// compute stats from the original snapshot, never from a filtered view.
func ComputeStats(records []Record) Stats {
	s := Stats{Total: len(records)}
	for _, r := range records {
		switch {
		case r.Positive():
			s.Positive++
		case r.Negative():
			s.Negative++
		}
	}
	return s
}

// Filter returns the records matching mode and query, preserving input order.
// The query is a case-insensitive substring match against the resolved title
// or any snapshot message content; a blank or whitespace-only query matches
// everything. Filter never mutates its input and is always meant to be applied
// to the original snapshot rather than a previous result, so switching mode or
// query never compounds earlier restrictions.
func Filter(records []Record, mode Mode, query string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matchesMode(r, mode) {
			continue
		}
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesMode(r Record, mode Mode) bool {
	switch mode {
	case ModePositive:
		return r.Positive()
	case ModeNegative:
		return r.Negative()
	default:
		return true
	}
}

// matchesQuery expects query to be lowercased and trimmed.
func matchesQuery(r Record, query string) bool {
	if strings.Contains(strings.ToLower(r.Title()), query) {
		return true
	}
	for _, m := range r.Messages() {
		if strings.Contains(strings.ToLower(m.Content), query) {
			return true
		}
	}
	return false
}
