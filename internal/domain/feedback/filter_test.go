package feedback

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{
			ID:   "f1",
			Data: Data{Rating: 1, ModelID: "arena-large"},
			Snapshot: &Snapshot{
				Title: "Hello World",
				Messages: []Message{
					{Role: "user", Content: "how do I sort a slice"},
					{Role: "assistant", Content: "use sort.Slice"},
				},
			},
		},
		{
			ID:   "f2",
			Data: Data{Rating: -1, ModelID: "arena-small"},
			Snapshot: &Snapshot{
				Title: "Regex question",
				Messages: []Message{
					{Role: "user", Content: "say hello there"},
					{Role: "assistant", Content: "hello there"},
				},
			},
		},
		{
			ID:   "f3",
			Data: Data{Rating: 0, ModelID: "arena-mid"},
		},
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterModes(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name  string
		mode  Mode
		query string
		want  []string
	}{
		{"all keeps everything", ModeAll, "", []string{"f1", "f2", "f3"}},
		{"positive keeps rating above zero", ModePositive, "", []string{"f1"}},
		{"negative keeps rating below zero", ModeNegative, "", []string{"f2"}},
		{"zero rating only under all", ModeAll, "", []string{"f1", "f2", "f3"}},
		{"whitespace query matches everything", ModeAll, "   ", []string{"f1", "f2", "f3"}},
		{"query matches title case-insensitively", ModeAll, "hello", []string{"f1", "f2"}},
		{"query matches message content", ModeAll, "sort.slice", []string{"f1"}},
		{"query narrows the mode-filtered set", ModeNegative, "hello", []string{"f2"}},
		{"no match yields empty set", ModeAll, "xyzzy", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(records, tt.mode, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filter(%s, %q) = %v, want %v", tt.mode, tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterPreservesInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)

	Filter(records, ModePositive, "hello")

	if !reflect.DeepEqual(ids(records), before) {
		t.Fatal("Filter mutated its input")
	}
}

func TestFilterDeterministic(t *testing.T) {
	records := sampleRecords()

	first := Filter(records, ModeNegative, "hello")
	second := Filter(records, ModeNegative, "hello")

	if !reflect.DeepEqual(first, second) {
		t.Fatal("re-invoking Filter with identical args produced a different result")
	}
}

func TestFilterSearchNeverWidens(t *testing.T) {
	records := sampleRecords()

	for _, mode := range []Mode{ModeAll, ModePositive, ModeNegative} {
		base := Filter(records, mode, "")
		narrowed := Filter(records, mode, "hello")

		inBase := make(map[string]bool, len(base))
		for _, r := range base {
			inBase[r.ID] = true
		}
		for _, r := range narrowed {
			if !inBase[r.ID] {
				t.Fatalf("mode %s: record %s appeared under a query but not without one", mode, r.ID)
			}
		}
	}
}

func TestComputeStats(t *testing.T) {
	records := sampleRecords()

	stats := ComputeStats(records)
	if stats.Total != 3 || stats.Positive != 1 || stats.Negative != 1 {
		t.Fatalf("got %+v, want total=3 positive=1 negative=1", stats)
	}
	if stats.Positive+stats.Negative > stats.Total {
		t.Fatalf("positive+negative exceeds total: %+v", stats)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []Mode{ModeAll, ModePositive, ModeNegative} {
		if !ValidMode(m) {
			t.Fatalf("expected %q to be valid", m)
		}
	}
	if ValidMode("neutral") {
		t.Fatal("expected 'neutral' to be invalid")
	}
}
