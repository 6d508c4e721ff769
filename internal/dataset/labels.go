package dataset

import "fmt"

// Question type tags from the label export. They decide which recode
// function, if any, runs during normalization.
const (
	TypePlain             = "plain"
	TypePlusMinus         = "plus_minus"
	TypeCheckboxPlusMinus = "checkbox_plus_minus"
)

// Label is one row of the label export: the human-readable question text and
// the semantic type for a variable code.
type Label struct {
	Var  string
	Text string
	Type string
}

// Labels is the label table. Each variable code has exactly one entry; a
// lookup miss is a configuration defect, not a user-facing condition.
type Labels struct {
	order []string
	byVar map[string]Label
}

// NewLabels builds a label table from export rows, rejecting duplicate
// variable codes.
func NewLabels(entries []Label) (*Labels, error) {
	l := &Labels{byVar: make(map[string]Label, len(entries))}
	for _, e := range entries {
		if _, dup := l.byVar[e.Var]; dup {
			return nil, fmt.Errorf("duplicate label for variable %q", e.Var)
		}
		l.byVar[e.Var] = e
		l.order = append(l.order, e.Var)
	}
	return l, nil
}

// Get returns the question text for a variable code. A miss returns an error
// so steady-state call sites fail loudly during development.
func (l *Labels) Get(varCode string) (string, error) {
	e, ok := l.byVar[varCode]
	if !ok {
		return "", fmt.Errorf("no label for variable %q", varCode)
	}
	return e.Text, nil
}

// Lookup is the defensive variant for export-dependent columns: it returns
// the question text, or the variable code itself when no label exists, so
// rendering degrades instead of crashing.
func (l *Labels) Lookup(varCode string) string {
	if e, ok := l.byVar[varCode]; ok {
		return e.Text
	}
	return varCode
}

// Type returns the semantic type tag for a variable code, or TypePlain when
// unknown.
func (l *Labels) Type(varCode string) string {
	if e, ok := l.byVar[varCode]; ok && e.Type != "" {
		return e.Type
	}
	return TypePlain
}

// Has reports whether a label row exists for the variable code.
func (l *Labels) Has(varCode string) bool {
	_, ok := l.byVar[varCode]
	return ok
}

// Vars returns all variable codes in label-table order.
func (l *Labels) Vars() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
