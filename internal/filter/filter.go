// Package filter derives row subsets of the canonical dataset. All criteria
// combine as a pure conjunction, so evaluation order never changes the
// result, and an empty subset is a valid outcome rather than an error.
package filter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

// Criteria selects the rows for one view.
//
// The outer criteria (questionnaire ids, date range) fail open: an empty
// questionnaire list matches nothing only because the caller is expected to
// expand empty teacher/lecture selections to "all known" first (see
// Questionnaires). Per-question constraints fail closed: a row missing a
// constrained column is excluded.
type Criteria struct {
	Questionnaires []string
	Start          time.Time
	End            time.Time
	Constraints    []Constraint
}

// Constraint is one per-question condition from the correlation filters.
type Constraint struct {
	Var string
	// Categories is the selected category set for minus/plus questions. An
	// empty set means "no constraint", not "exclude all".
	Categories []string
	// Numeric switches the constraint to the range form Min <= value <= Max.
	Numeric bool
	Min     float64
	Max     float64
}

func (c Constraint) matches(row dataset.Row) bool {
	if !c.Numeric && len(c.Categories) == 0 {
		return true
	}
	raw, ok := row.Value(c.Var)
	if !ok {
		return false
	}
	if c.Numeric {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		return v >= c.Min && v <= c.Max
	}
	for _, want := range c.Categories {
		if raw == want {
			return true
		}
	}
	return false
}

// Rows returns the subset of rows matching all criteria, in dataset order.
func Rows(ds *dataset.Dataset, c Criteria) []dataset.Row {
	allowed := make(map[string]struct{}, len(c.Questionnaires))
	for _, q := range c.Questionnaires {
		allowed[q] = struct{}{}
	}

	var out []dataset.Row
rows:
	for _, row := range ds.Rows {
		if _, ok := allowed[row.Questionnaire]; !ok {
			continue
		}
		if !c.Start.IsZero() && row.Started.Before(c.Start) {
			continue
		}
		if !c.End.IsZero() && row.Started.After(c.End) {
			continue
		}
		for _, con := range c.Constraints {
			if !con.matches(row) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

// Questionnaires builds the allowed-id list as the cartesian product of
// teachers and lectures over a format with two %s verbs (e.g. "R2-%s-%s" or
// "R1-%s-%s-2"). Empty selections fall back to every known teacher/lecture:
// no selection means "match everything", never "match nothing".
func Questionnaires(ds *dataset.Dataset, format string, teachers, lectures []string) []string {
	if len(teachers) == 0 {
		teachers = ds.Teachers
	}
	if len(lectures) == 0 {
		lectures = ds.Lectures
	}
	out := make([]string, 0, len(teachers)*len(lectures))
	for _, t := range teachers {
		for _, l := range lectures {
			out = append(out, fmt.Sprintf(format, t, l))
		}
	}
	return out
}

// PreSurveyQuestionnaires builds the ids of the per-teacher pre-surveys,
// which carry no lecture segment ("S-<teacher>-1").
func PreSurveyQuestionnaires(ds *dataset.Dataset, teachers []string) []string {
	if len(teachers) == 0 {
		teachers = ds.Teachers
	}
	out := make([]string, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, fmt.Sprintf("S-%s-1", t))
	}
	return out
}

// DateRange normalizes a date-only range to an inclusive timestamp range:
// the start day at 00:00:00 and the end day at 23:59:59, so responses on the
// boundary days are included.
func DateRange(start, end time.Time) (time.Time, time.Time) {
	if !start.IsZero() {
		y, m, d := start.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	}
	if !end.IsZero() {
		y, m, d := end.Date()
		end = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), end.Location())
	}
	return start, end
}
