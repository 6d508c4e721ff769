package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/kolli-project/kolli-dashboard/internal/scale"
)

// A migration is one corrective transformation over the answer table. The
// steps encode project history - mis-tagged submissions, renamed columns,
// scale changes between survey versions - as data, so new corrections can be
// appended without touching control flow.
//
// Order is load-bearing: later steps assume earlier steps' effects (renames
// run before the merge logic that reads the renamed column). A step whose
// columns are absent from a particular export skips itself; only unreadable
// files abort loading.
type migration struct {
	name  string
	apply func(*table) error
}

// Known mis-tagging: one survey occasion was submitted under the previous
// teacher's questionnaire id. The repair is keyed to the exact legacy id and
// calendar date and must not grow into a pattern rule.
const (
	repairLegacyID    = "S-SILA-1"
	repairCorrectedID = "S-KAWE-1"
	repairDate        = "2024-10-16"
)

// Legacy scale columns: the first survey version offered a fifth answer
// option that later versions removed. Clipping to 4 aligns the scales.
var clipColumns = []string{"V201_01", "V201_02", "V204_01", "V204_02"}

// Columns renamed between survey versions: values are backfilled into the
// new code, then the deprecated column is dropped.
var renamedColumns = map[string]string{
	"VU02_01": "V202_01",
	"VU04_01": "V204_01",
}

// The "-alt" pre-survey variant ran in parallel with the mainline one. A row
// counts as a real submission when its variant-specific free-text answer is
// filled; those rows are folded into the mainline questionnaire id.
const (
	altSuffix      = "-alt"
	altFreeText    = "VA01_01"
	altFreeTextNew = "V202_01"
)

// Near-duplicate questions introduced by wording differences between survey
// instances: the source value fills the target where the target is empty.
// Both columns stay.
var crossFillColumns = map[string]string{
	"VU03_03": "V209_01",
	"VU03_04": "V209_02",
}

// Numeric slider columns (degree of co-design, 0-11). Missing answers become
// the sentinel -1: out of scale, numerically sortable below the valid range.
var sentinelColumns = []string{"V203_01", "AA02_01"}

const sentinelValue = "-1"

func migrations(cfg Config, labels *Labels) []migration {
	return []migration{
		{name: "drop blacklisted cases", apply: dropBlacklisted(cfg.BlacklistCases)},
		{name: "repair mis-tagged questionnaire", apply: repairMisTagged},
		{name: "clip legacy five-option scales", apply: clipLegacyScales},
		{name: "backfill renamed columns", apply: backfillRenamed},
		{name: "merge alt questionnaire variant", apply: mergeAltVariant},
		{name: "cross-fill wording variants", apply: crossFillVariants},
		{name: "sentinel for missing slider answers", apply: fillSliderSentinels},
		{name: "recode ordinal scales", apply: recodeScales(labels)},
	}
}

func dropBlacklisted(cases []int) func(*table) error {
	blocked := make(map[int]struct{}, len(cases))
	for _, c := range cases {
		blocked[c] = struct{}{}
	}
	return func(t *table) error {
		kept := t.rows[:0]
		for _, row := range t.rows {
			if _, bad := blocked[row.Case]; !bad {
				kept = append(kept, row)
			}
		}
		t.rows = kept
		return nil
	}
}

func repairMisTagged(t *table) error {
	day, err := time.Parse("2006-01-02", repairDate)
	if err != nil {
		return err
	}
	for i := range t.rows {
		row := &t.rows[i]
		if row.Questionnaire == repairLegacyID && sameDay(row.Started, day) {
			row.Questionnaire = repairCorrectedID
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clipLegacyScales(t *table) error {
	for _, col := range clipColumns {
		if !t.hasColumn(col) {
			continue
		}
		for i := range t.rows {
			v, ok := t.rows[i].Values[col]
			if !ok {
				continue
			}
			if n, err := strconv.Atoi(v); err == nil && n > 4 {
				t.rows[i].Values[col] = "4"
			}
		}
	}
	return nil
}

func backfillRenamed(t *table) error {
	for oldCol, newCol := range renamedColumns {
		if !t.hasColumn(oldCol) {
			continue
		}
		t.ensureColumn(newCol)
		for i := range t.rows {
			v, ok := t.rows[i].Values[oldCol]
			if !ok {
				continue
			}
			if _, filled := t.rows[i].Values[newCol]; !filled {
				t.rows[i].Values[newCol] = v
			}
		}
		t.dropColumn(oldCol)
	}
	return nil
}

func mergeAltVariant(t *table) error {
	if !t.hasColumn(altFreeText) {
		// Variant absent from this export.
		return nil
	}
	t.ensureColumn(altFreeTextNew)
	for i := range t.rows {
		row := &t.rows[i]
		if !strings.HasSuffix(row.Questionnaire, altSuffix) {
			continue
		}
		v, ok := row.Values[altFreeText]
		if !ok || v == "" {
			continue
		}
		row.Questionnaire = strings.TrimSuffix(row.Questionnaire, altSuffix)
		if _, filled := row.Values[altFreeTextNew]; !filled {
			row.Values[altFreeTextNew] = v
		}
	}
	// The variant column is fully consumed; leaving it behind would make the
	// export look like it still carries the question.
	t.dropColumn(altFreeText)
	return nil
}

func crossFillVariants(t *table) error {
	for src, dst := range crossFillColumns {
		if !t.hasColumn(src) {
			continue
		}
		t.ensureColumn(dst)
		for i := range t.rows {
			v, ok := t.rows[i].Values[src]
			if !ok {
				continue
			}
			if _, filled := t.rows[i].Values[dst]; !filled {
				t.rows[i].Values[dst] = v
			}
		}
	}
	return nil
}

func fillSliderSentinels(t *table) error {
	for _, col := range sentinelColumns {
		if !t.hasColumn(col) {
			continue
		}
		for i := range t.rows {
			if _, ok := t.rows[i].Values[col]; !ok {
				t.rows[i].Values[col] = sentinelValue
			}
		}
	}
	return nil
}

// recodeScales applies the ordinal codec to every column the label table
// declares as a minus/plus scale. Only present cells are recoded: a missing
// answer stays missing so the aggregation can tell it apart from a neutral
// one.
func recodeScales(labels *Labels) func(*table) error {
	return func(t *table) error {
		for _, varCode := range labels.Vars() {
			var recode func(string) scale.Symbol
			switch labels.Type(varCode) {
			case TypePlusMinus:
				recode = scale.RecodePlusMinus
			case TypeCheckboxPlusMinus:
				recode = scale.RecodeCheckboxPlusMinus
			default:
				continue
			}
			if !t.hasColumn(varCode) {
				continue
			}
			for i := range t.rows {
				if v, ok := t.rows[i].Values[varCode]; ok {
					t.rows[i].Values[varCode] = string(recode(v))
				}
			}
		}
		return nil
	}
}

func (t *table) hasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

func (t *table) ensureColumn(name string) {
	t.columns[name] = struct{}{}
}

func (t *table) dropColumn(name string) {
	delete(t.columns, name)
	for i := range t.rows {
		delete(t.rows[i].Values, name)
	}
}
