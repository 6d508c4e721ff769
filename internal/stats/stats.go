// Package stats computes the descriptive statistics the dashboard shows:
// Likert distributions per question, subset counts, slider histograms and
// free-text extraction. All functions are pure over a row subset.
package stats

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
	"github.com/kolli-project/kolli-dashboard/internal/scale"
)

// Distribution is the aggregate of one minus/plus question over a row subset.
// Mean and SD are pre-rounded for display (one and two decimals); Median is
// the lower median symbol. The Has flags distinguish a computed zero from
// "not computable" (N=0, or N<2 for the SD).
type Distribution struct {
	Var    string
	Label  string
	Counts [5]int
	N      int

	Mean      float64
	HasMean   bool
	Median    scale.Symbol
	HasMedian bool
	SD        float64
	HasSD     bool
}

// Percent returns the integer share of each category in percent of N. With
// N=0 all shares are zero; rendering layers show blanks in that case.
func (d Distribution) Percent() [5]int {
	var out [5]int
	if d.N == 0 {
		return out
	}
	for i, c := range d.Counts {
		out[i] = int(math.Round(float64(c) / float64(d.N) * 100))
	}
	return out
}

// Aggregate computes one distribution per requested variable, in caller
// order. Cells that are not one of the five scale symbols (missing answers
// survive normalization as absent keys) do not enter N.
func Aggregate(rows []dataset.Row, labels *dataset.Labels, vars ...string) []Distribution {
	out := make([]Distribution, 0, len(vars))
	for _, v := range vars {
		d := Distribution{Var: v, Label: labels.Lookup(v)}
		for _, row := range rows {
			raw, ok := row.Value(v)
			if !ok {
				continue
			}
			idx := scale.Index(scale.Symbol(raw))
			if idx < 0 {
				continue
			}
			d.Counts[idx]++
		}
		finalize(&d)
		out = append(out, d)
	}
	return out
}

func finalize(d *Distribution) {
	for _, c := range d.Counts {
		d.N += c
	}
	if d.N == 0 {
		return
	}

	sum := 0
	for i, c := range d.Counts {
		sum += scale.Code(scale.Order[i]) * c
	}
	mean := float64(sum) / float64(d.N)
	d.Mean = math.Round(mean*10) / 10
	d.HasMean = true

	// Lower median: the category holding the value at position ceil(N/2) of
	// the sorted responses, found by walking cumulative counts.
	pos := (d.N + 1) / 2
	cum := 0
	for i, c := range d.Counts {
		cum += c
		if cum >= pos {
			d.Median = scale.Order[i]
			d.HasMedian = true
			break
		}
	}

	if d.N >= 2 {
		var sq float64
		for i, c := range d.Counts {
			diff := float64(scale.Code(scale.Order[i])) - mean
			sq += diff * diff * float64(c)
		}
		sd := math.Sqrt(sq / float64(d.N-1))
		d.SD = math.Round(sd*100) / 100
		d.HasSD = true
	}
}

// Responses is the number of rows in a subset. Named so call sites read as
// the metric they report.
func Responses(rows []dataset.Row) int {
	return len(rows)
}

// Teachers counts distinct teacher abbreviations among the subset's
// questionnaire ids.
func Teachers(rows []dataset.Row) int {
	return countSegment(rows, 1)
}

// Lectures counts distinct lecture abbreviations among the subset's
// questionnaire ids.
func Lectures(rows []dataset.Row) int {
	return countSegment(rows, 2)
}

func countSegment(rows []dataset.Row, i int) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		id := strings.TrimPrefix(row.Questionnaire, "KG-")
		parts := strings.Split(id, "-")
		if i < len(parts) && parts[i] != "" {
			seen[parts[i]] = struct{}{}
		}
	}
	return len(seen)
}

// Occasions counts distinct survey occasions: a questionnaire filled out on a
// calendar date. Several responses from one occasion count once.
func Occasions(rows []dataset.Row) int {
	type occasion struct {
		questionnaire string
		date          string
	}
	seen := make(map[occasion]struct{})
	for _, row := range rows {
		seen[occasion{row.Questionnaire, row.Started.Format("2006-01-02")}] = struct{}{}
	}
	return len(seen)
}

// ValueCount counts rows whose answer for a variable equals the given raw
// value. Rows without an answer contribute nothing; an entirely missing
// column yields zero, not an error.
func ValueCount(rows []dataset.Row, varCode, value string) int {
	n := 0
	for _, row := range rows {
		if v, ok := row.Value(varCode); ok && v == value {
			n++
		}
	}
	return n
}

// Histogram is the bucket count for one numeric slider question.
type Histogram struct {
	Var     string
	Label   string
	Buckets []int
	N       int
}

// SliderHistogram buckets integer slider answers in [min,max]. The missing
// sentinel -1 and anything else outside the range is excluded from both the
// buckets and N.
func SliderHistogram(rows []dataset.Row, labels *dataset.Labels, varCode string, min, max int) Histogram {
	h := Histogram{
		Var:     varCode,
		Label:   labels.Lookup(varCode),
		Buckets: make([]int, max-min+1),
	}
	for _, row := range rows {
		raw, ok := row.Value(varCode)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < min || v > max {
			continue
		}
		h.Buckets[v-min]++
		h.N++
	}
	return h
}

// Shares returns each bucket as a fraction of N, or all zeros for N=0.
func (h Histogram) Shares() []float64 {
	out := make([]float64, len(h.Buckets))
	if h.N == 0 {
		return out
	}
	for i, c := range h.Buckets {
		out[i] = float64(c) / float64(h.N)
	}
	return out
}

// FreeText collects the answers to a free-text question: trimmed, longer
// than three characters, deduplicated in first-occurrence order. This is the
// exact input contract of the AI summarization.
func FreeText(rows []dataset.Row, varCode string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		raw, ok := row.Value(varCode)
		if !ok {
			continue
		}
		text := strings.TrimSpace(raw)
		if utf8.RuneCountInString(text) <= 3 {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
