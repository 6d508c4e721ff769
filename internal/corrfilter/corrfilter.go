// Package corrfilter holds the per-session correlation-filter state: which
// answer subsets the user restricts other questions to. The state is the only
// mutable piece of the dashboard core, so it lives behind one mutex.
package corrfilter

import (
	"fmt"
	"sync"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
	"github.com/kolli-project/kolli-dashboard/internal/filter"
)

// Key identifies one correlation filter: the question group it appears in and
// the variable it constrains.
type Key struct {
	Group string
	Var   string
}

// Definition declares one available correlation filter. Numeric filters carry
// the full value range as the unrestricted default.
type Definition struct {
	Group   string
	Var     string
	Numeric bool
	Min     float64
	Max     float64
}

// Selection is the current restriction for one filter. A categorical
// selection with no categories, or a numeric selection spanning the full
// range, restricts nothing.
// The bounds carry no omitempty: zero is a legitimate lower bound and must
// survive serialization.
type Selection struct {
	Categories []string `json:"categories,omitempty"`
	Numeric    bool     `json:"numeric"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
}

// Store maps filter keys to their current selections. Safe for concurrent
// use.
type Store struct {
	mu         sync.Mutex
	defs       map[Key]Definition
	selections map[Key]Selection
}

// NewStore validates the definitions against the label table and returns a
// store with every filter in its unrestricted default state. A definition
// referencing an unknown variable is a programming error and fails loudly.
func NewStore(defs []Definition, labels *dataset.Labels) (*Store, error) {
	s := &Store{
		defs:       make(map[Key]Definition, len(defs)),
		selections: make(map[Key]Selection, len(defs)),
	}
	for _, d := range defs {
		if !labels.Has(d.Var) {
			return nil, fmt.Errorf("correlation filter %s/%s: unknown variable", d.Group, d.Var)
		}
		k := Key{Group: d.Group, Var: d.Var}
		if _, dup := s.defs[k]; dup {
			return nil, fmt.Errorf("correlation filter %s/%s: duplicate definition", d.Group, d.Var)
		}
		s.defs[k] = d
		s.selections[k] = defaultSelection(d)
	}
	return s, nil
}

func defaultSelection(d Definition) Selection {
	if d.Numeric {
		return Selection{Numeric: true, Min: d.Min, Max: d.Max}
	}
	return Selection{}
}

// Get returns the current selection for a filter.
func (s *Store) Get(k Key) (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[k]
	return sel, ok
}

// Set replaces the selection for a known filter. The selection kind must
// match the definition.
func (s *Store) Set(k Key, sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defs[k]
	if !ok {
		return fmt.Errorf("correlation filter %s/%s: not defined", k.Group, k.Var)
	}
	if sel.Numeric != d.Numeric {
		return fmt.Errorf("correlation filter %s/%s: selection kind mismatch", k.Group, k.Var)
	}
	if sel.Numeric && sel.Min > sel.Max {
		return fmt.Errorf("correlation filter %s/%s: min %v above max %v", k.Group, k.Var, sel.Min, sel.Max)
	}
	s.selections[k] = sel
	return nil
}

// ResetAll restores every filter to its default in one step. Readers never
// observe a half-reset store.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, d := range s.defs {
		s.selections[k] = defaultSelection(d)
	}
}

// Keys returns all defined filter keys for a group.
func (s *Store) Keys(group string) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []Key
	for k := range s.defs {
		if k.Group == group {
			keys = append(keys, k)
		}
	}
	return keys
}

// Constraints converts the active selections of a group into filter
// constraints. Selections in their default state produce nothing.
func (s *Store) Constraints(group string) []filter.Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []filter.Constraint
	for k, d := range s.defs {
		if k.Group != group {
			continue
		}
		sel := s.selections[k]
		if d.Numeric {
			if sel.Min == d.Min && sel.Max == d.Max {
				continue
			}
			out = append(out, filter.Constraint{Var: k.Var, Numeric: true, Min: sel.Min, Max: sel.Max})
			continue
		}
		if len(sel.Categories) == 0 {
			continue
		}
		cats := make([]string, len(sel.Categories))
		copy(cats, sel.Categories)
		out = append(out, filter.Constraint{Var: k.Var, Categories: cats})
	}
	return out
}
