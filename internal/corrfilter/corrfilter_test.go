package corrfilter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

func testLabels(t *testing.T) *dataset.Labels {
	t.Helper()
	labels, err := dataset.NewLabels([]dataset.Label{
		{Var: "GF01", Text: "Geschlecht", Type: dataset.TypePlain},
		{Var: "V203_01", Text: "Grad der Mitgestaltung", Type: dataset.TypePlain},
	})
	if err != nil {
		t.Fatalf("NewLabels: %v", err)
	}
	return labels
}

func testDefs() []Definition {
	return []Definition{
		{Group: "round1", Var: "GF01"},
		{Group: "round1", Var: "V203_01", Numeric: true, Min: 0, Max: 11},
	}
}

func TestNewStoreRejectsUnknownVariable(t *testing.T) {
	_, err := NewStore([]Definition{{Group: "round1", Var: "NOPE_01"}}, testLabels(t))
	if err == nil {
		t.Fatalf("expected error for unknown variable")
	}
}

func TestDefaultsRestrictNothing(t *testing.T) {
	s, err := NewStore(testDefs(), testLabels(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if cons := s.Constraints("round1"); len(cons) != 0 {
		t.Fatalf("default store produced constraints %v", cons)
	}
}

func TestSetAndConstraints(t *testing.T) {
	s, err := NewStore(testDefs(), testLabels(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set(Key{"round1", "GF01"}, Selection{Categories: []string{"1"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(Key{"round1", "V203_01"}, Selection{Numeric: true, Min: 5, Max: 11}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cons := s.Constraints("round1")
	if len(cons) != 2 {
		t.Fatalf("got %d constraints, want 2", len(cons))
	}
	for _, c := range cons {
		switch c.Var {
		case "GF01":
			if c.Numeric || len(c.Categories) != 1 || c.Categories[0] != "1" {
				t.Fatalf("GF01 constraint wrong: %+v", c)
			}
		case "V203_01":
			if !c.Numeric || c.Min != 5 || c.Max != 11 {
				t.Fatalf("V203_01 constraint wrong: %+v", c)
			}
		default:
			t.Fatalf("unexpected constraint var %q", c.Var)
		}
	}
}

func TestSelectionKeepsZeroBounds(t *testing.T) {
	s, err := NewStore(testDefs(), testLabels(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	sel, ok := s.Get(Key{"round1", "V203_01"})
	if !ok {
		t.Fatalf("numeric default missing")
	}
	b, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal selection: %v", err)
	}
	// The unrestricted lower bound is zero and must reach the client as a
	// value, not vanish as an empty field.
	if !strings.Contains(string(b), `"min":0`) || !strings.Contains(string(b), `"max":11`) {
		t.Fatalf("bounds missing from payload: %s", b)
	}
}

func TestSetRejectsKindMismatch(t *testing.T) {
	s, err := NewStore(testDefs(), testLabels(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set(Key{"round1", "GF01"}, Selection{Numeric: true, Min: 0, Max: 1}); err == nil {
		t.Fatalf("numeric selection accepted for categorical filter")
	}
	if err := s.Set(Key{"round1", "V203_01"}, Selection{Numeric: true, Min: 9, Max: 2}); err == nil {
		t.Fatalf("inverted range accepted")
	}
	if err := s.Set(Key{"round1", "MISSING"}, Selection{}); err == nil {
		t.Fatalf("undefined filter accepted")
	}
}

func TestResetAllRestoresEveryDefault(t *testing.T) {
	s, err := NewStore(testDefs(), testLabels(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set(Key{"round1", "GF01"}, Selection{Categories: []string{"2"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(Key{"round1", "V203_01"}, Selection{Numeric: true, Min: 3, Max: 4}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s.ResetAll()

	if cons := s.Constraints("round1"); len(cons) != 0 {
		t.Fatalf("constraints after reset: %v", cons)
	}
	sel, ok := s.Get(Key{"round1", "V203_01"})
	if !ok || sel.Min != 0 || sel.Max != 11 {
		t.Fatalf("numeric default not restored: %+v ok=%v", sel, ok)
	}
}
