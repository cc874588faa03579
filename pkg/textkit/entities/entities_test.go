package entities

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/textkit/pkg/textkit/patterns"
)

func newExtractor() *Extractor {
	return NewExtractor(patterns.NewRegistry())
}

func TestExtractEmpty(t *testing.T) {
	ex := newExtractor()

	got := ex.Extract("")
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty slice, got %v", got)
	}
}

func TestExtractMeeting(t *testing.T) {
	ex := newExtractor()

	ents := ex.Extract("Meeting on 12/25/2024 at 3:30 PM with Acme Corp.")

	dates := ByType(ents, patterns.Date)
	if len(dates) != 1 || dates[0].Text != "12/25/2024" {
		t.Errorf("Expected one date 12/25/2024, got %v", dates)
	}

	times := ByType(ents, patterns.Time)
	if len(times) != 1 || times[0].Text != "3:30 PM" {
		t.Errorf("Expected one time 3:30 PM, got %v", times)
	}

	orgs := ByType(ents, patterns.Organization)
	if len(orgs) != 1 || !strings.Contains(orgs[0].Text, "Acme Corp") {
		t.Errorf("Expected one organization containing Acme Corp, got %v", orgs)
	}

	for _, e := range ents {
		if e.Confidence != DefaultConfidence {
			t.Errorf("Entity %v has confidence %v", e, e.Confidence)
		}
		if e.Type == patterns.Other {
			t.Errorf("Other must never be produced: %v", e)
		}
	}
}

func TestExtractKeepsCrossCategoryOverlap(t *testing.T) {
	ex := newExtractor()

	ents := ex.Extract("Hello, my name is John Smith.")

	person := ByType(ents, patterns.Person)
	if len(person) != 1 || person[0].Text != "John Smith" {
		t.Fatalf("Expected person John Smith, got %v", person)
	}

	found := false
	for _, loc := range ByType(ents, patterns.Location) {
		if loc.Text == "John Smith" {
			found = true
		}
	}
	if !found {
		t.Error("John Smith should also be reported as a Location")
	}
}

func TestExtractOrderWithinCategory(t *testing.T) {
	ex := newExtractor()

	nums := ByType(ex.Extract("1 then 22 then 333"), patterns.Number)
	want := []string{"1", "22", "333"}
	if len(nums) != len(want) {
		t.Fatalf("Expected %d numbers, got %v", len(want), nums)
	}
	for i, n := range nums {
		if n.Text != want[i] {
			t.Errorf("number %d: got %q, want %q", i, n.Text, want[i])
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	ex := newExtractor()
	text := "Jane Doe joined Globex Inc on Mar 3, 2021 at 9:15 am."

	first := ex.Extract(text)
	second := ex.Extract(text)

	key := func(es []Entity) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Type.String() + ":" + e.Text
		}
		sort.Strings(out)
		return out
	}

	if !reflect.DeepEqual(key(first), key(second)) {
		t.Errorf("Extraction not idempotent:\n%v\n%v", first, second)
	}
}

func TestCountByType(t *testing.T) {
	ents := []Entity{
		{Text: "a", Type: patterns.Number},
		{Text: "b", Type: patterns.Number},
		{Text: "c", Type: patterns.Person},
	}

	counts := CountByType(ents)
	if counts[patterns.Number] != 2 || counts[patterns.Person] != 1 {
		t.Errorf("Unexpected counts %v", counts)
	}
	if _, ok := counts[patterns.Date]; ok {
		t.Error("Absent categories should not be counted")
	}
}
