// Package dataset loads the questionnaire export pair and normalizes it into
// the canonical in-memory dataset all views are derived from.
//
// The export format evolved over several survey rounds: columns were renamed,
// scales changed width, and a few submissions were mis-tagged. The loader
// repairs all known anomalies through a fixed sequence of migration steps so
// that the rest of the program sees one consistent table.
package dataset

import (
	"time"
)

// Row is one completed questionnaire response.
type Row struct {
	// Case is the opaque numeric response id. Only used to drop known test
	// submissions.
	Case int
	// Questionnaire is the hyphen-delimited survey id, e.g. "R2-DESC-VERTSYS"
	// or "R1-KAWE-MATHE1-2". Its segmentation encodes round, teacher,
	// lecture and sequence number.
	Questionnaire string
	// Started is the timestamp the response was started.
	Started time.Time
	// Values holds the question answers keyed by variable code. An absent
	// key means the question was not answered (or not part of that survey
	// round); it is never an error.
	Values map[string]string
}

// Value returns the raw cell for a variable code and whether it is present.
func (r Row) Value(varCode string) (string, bool) {
	v, ok := r.Values[varCode]
	return v, ok
}

// Dataset is the canonical dataset. It is built once at startup and never
// mutated afterwards; all views are fresh subsets.
type Dataset struct {
	Rows   []Row
	Labels *Labels
	// MaxDate is the latest start date across all rows, formatted DD.MM.YYYY.
	MaxDate string
	// Teachers and Lectures hold the distinct codes parsed from the
	// questionnaire ids, in first-occurrence order.
	Teachers []string
	Lectures []string

	columns map[string]struct{}
}

// HasColumn reports whether any row in the export carried the given variable
// code. Older rounds lack columns that later rounds introduced.
func (d *Dataset) HasColumn(varCode string) bool {
	_, ok := d.columns[varCode]
	return ok
}

// Columns returns the set of variable codes present in the export.
func (d *Dataset) Columns() map[string]struct{} {
	return d.columns
}
