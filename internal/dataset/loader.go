package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metadata columns of the answer export.
const (
	colCase          = "CASE"
	colQuestionnaire = "QUESTNNR"
	colStarted       = "STARTED"
)

// Label export columns.
const (
	colVar   = "VAR"
	colLabel = "LABEL"
	colType  = "TYPE"
)

// Config carries the project-specific facts the normalization needs. They are
// configuration, not derivable from the data.
type Config struct {
	// BlacklistCases are CASE ids of known test/dummy submissions.
	BlacklistCases []int
}

// DefaultConfig returns the blacklist as shipped with the research project.
func DefaultConfig() Config {
	return Config{BlacklistCases: []int{242}}
}

// Load reads the answer and label exports and runs the full normalization.
// It is a pure factory: calling it twice on the same files yields identical
// datasets, and the result is safe for unsynchronized concurrent reads.
func Load(answersPath, labelsPath string, cfg Config) (*Dataset, error) {
	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	tbl, err := loadAnswers(answersPath)
	if err != nil {
		return nil, err
	}

	for _, m := range migrations(cfg, labels) {
		if err := m.apply(tbl); err != nil {
			return nil, fmt.Errorf("migration %q: %w", m.name, err)
		}
	}

	ds := &Dataset{
		Rows:    tbl.rows,
		Labels:  labels,
		columns: tbl.columns,
	}
	deriveIndices(ds)
	return ds, nil
}

func loadLabels(path string) (*Labels, error) {
	records, err := ReadTSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(records[0], colVar, colLabel, colType)
	if err != nil {
		return nil, fmt.Errorf("label export: %w", err)
	}
	entries := make([]Label, 0, len(records)-1)
	for _, rec := range records[1:] {
		e := Label{
			Var:  cell(rec, idx[colVar]),
			Text: cell(rec, idx[colLabel]),
			Type: cell(rec, idx[colType]),
		}
		if e.Var == "" {
			continue
		}
		entries = append(entries, e)
	}
	return NewLabels(entries)
}

// table is the mutable working form of the answer export during
// normalization. Once migrations finish it becomes the immutable dataset.
type table struct {
	rows    []Row
	columns map[string]struct{}
}

func loadAnswers(path string) (*table, error) {
	records, err := ReadTSV(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	idx, err := headerIndex(header, colCase, colQuestionnaire, colStarted)
	if err != nil {
		return nil, fmt.Errorf("answer export: %w", err)
	}

	tbl := &table{columns: make(map[string]struct{})}
	for i, name := range header {
		if i == idx[colCase] || i == idx[colQuestionnaire] || i == idx[colStarted] {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			tbl.columns[name] = struct{}{}
		}
	}

	for n, rec := range records[1:] {
		caseID, err := strconv.Atoi(cell(rec, idx[colCase]))
		if err != nil {
			return nil, fmt.Errorf("answer export row %d: bad CASE %q", n+2, cell(rec, idx[colCase]))
		}
		started, err := parseStarted(cell(rec, idx[colStarted]))
		if err != nil {
			return nil, fmt.Errorf("answer export row %d: %w", n+2, err)
		}
		row := Row{
			Case:          caseID,
			Questionnaire: cell(rec, idx[colQuestionnaire]),
			Started:       started,
			Values:        make(map[string]string),
		}
		for i, name := range header {
			if i == idx[colCase] || i == idx[colQuestionnaire] || i == idx[colStarted] {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if v := cell(rec, i); v != "" {
				row.Values[name] = v
			}
		}
		tbl.rows = append(tbl.rows, row)
	}
	return tbl, nil
}

// startedLayouts covers the formats seen across export versions.
var startedLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseStarted(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range startedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable STARTED timestamp %q", v)
}

func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required))
	for _, want := range required {
		idx[want] = -1
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if pos, ok := idx[name]; ok && pos == -1 {
			idx[name] = i
		}
	}
	for _, want := range required {
		if idx[want] == -1 {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}
	return idx, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Recognized round prefixes for the derived teacher/lecture indices. The
// control group ids carry an extra "KG-" marker before the round segment.
var roundPrefixes = []string{"R1-", "R2-", "R3-"}

const controlGroupMarker = "KG-"

func deriveIndices(ds *Dataset) {
	var maxStarted time.Time
	seenTeacher := make(map[string]struct{})
	seenLecture := make(map[string]struct{})

	for _, row := range ds.Rows {
		if row.Started.After(maxStarted) {
			maxStarted = row.Started
		}
		id := strings.TrimPrefix(row.Questionnaire, controlGroupMarker)
		if !hasRoundPrefix(id) {
			continue
		}
		parts := strings.Split(id, "-")
		if len(parts) >= 2 {
			if t := parts[1]; t != "" {
				if _, ok := seenTeacher[t]; !ok {
					seenTeacher[t] = struct{}{}
					ds.Teachers = append(ds.Teachers, t)
				}
			}
		}
		if len(parts) >= 3 {
			if l := parts[2]; l != "" {
				if _, ok := seenLecture[l]; !ok {
					seenLecture[l] = struct{}{}
					ds.Lectures = append(ds.Lectures, l)
				}
			}
		}
	}
	if !maxStarted.IsZero() {
		ds.MaxDate = maxStarted.Format("02.01.2006")
	}
}

func hasRoundPrefix(id string) bool {
	for _, p := range roundPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
