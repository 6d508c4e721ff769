// Package report renders the computed statistics as Markdown, for CLI output
// and as context inside AI prompts.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolli-project/kolli-dashboard/internal/scale"
	"github.com/kolli-project/kolli-dashboard/internal/stats"
)

// Mode selects how category cells are rendered.
type Mode string

const (
	ModeAbsolute   Mode = "absolute"
	ModePercent    Mode = "percent"
	ModeStatistics Mode = "statistics"
)

// ParseMode validates a mode string, defaulting to absolute for empty input.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeAbsolute, nil
	case ModeAbsolute, ModePercent, ModeStatistics:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// NoDataMessage is shown whenever a filtered subset is empty. Empty subsets
// are an expected outcome of filtering, never an error.
const NoDataMessage = "Es liegen keine Umfrageergebnisse für die gewählten Filterkriterien vor."

// TableRow is one rendered row of the statistics table, cells pre-formatted
// as strings (blank where a statistic is undefined).
type TableRow struct {
	Label      string    `json:"label"`
	Categories [5]string `json:"categories"`
	N          string    `json:"n"`
	Mean       string    `json:"mean"`
	Median     string    `json:"median"`
	SD         string    `json:"sd"`
}

// Rows formats distributions for the given mode. Category cells hold counts
// (absolute), integer percentages (percent, blank at N=0) or counts again for
// the statistics mode, whose point is the appended N/M/MD/SD columns.
func Rows(dists []stats.Distribution, mode Mode) []TableRow {
	out := make([]TableRow, 0, len(dists))
	for _, d := range dists {
		row := TableRow{Label: d.Label, N: strconv.Itoa(d.N)}
		switch mode {
		case ModePercent:
			if d.N > 0 {
				for i, p := range d.Percent() {
					row.Categories[i] = strconv.Itoa(p) + " %"
				}
			}
		default:
			for i, c := range d.Counts {
				row.Categories[i] = strconv.Itoa(c)
			}
		}
		if mode == ModeStatistics {
			if d.HasMean {
				row.Mean = strconv.FormatFloat(d.Mean, 'f', 1, 64)
			}
			if d.HasMedian {
				row.Median = string(d.Median)
			}
			if d.HasSD {
				row.SD = strconv.FormatFloat(d.SD, 'f', 2, 64)
			}
		}
		out = append(out, row)
	}
	return out
}

// Markdown renders the statistics table for a question group. Column order is
// fixed: label, the five scale categories, then N, M, MD, SD.
func Markdown(title string, dists []stats.Distribution, mode Mode) string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(title) + "]\n")
	if len(dists) == 0 {
		b.WriteString(NoDataMessage + "\n")
		return b.String()
	}

	header := []string{"Frage"}
	for _, s := range scale.Order {
		header = append(header, string(s))
	}
	header = append(header, "N")
	if mode == ModeStatistics {
		header = append(header, "M", "MD", "SD")
	}
	writeRow(&b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)

	for _, row := range Rows(dists, mode) {
		cells := []string{row.Label}
		cells = append(cells, row.Categories[:]...)
		cells = append(cells, row.N)
		if mode == ModeStatistics {
			cells = append(cells, row.Mean, row.Median, row.SD)
		}
		writeRow(&b, cells)
	}
	return b.String()
}

// HistogramMarkdown renders a slider histogram as a value/count table.
func HistogramMarkdown(h stats.Histogram, min int) string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(h.Label) + "]\n")
	if h.N == 0 {
		b.WriteString(NoDataMessage + "\n")
		return b.String()
	}
	writeRow(&b, []string{"Wert", "Anzahl"})
	writeRow(&b, []string{"---", "---"})
	for i, c := range h.Buckets {
		writeRow(&b, []string{strconv.Itoa(min + i), strconv.Itoa(c)})
	}
	return b.String()
}

// FreeTextMarkdown renders free-text answers as a bullet list.
func FreeTextMarkdown(title string, answers []string) string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(title) + "]\n")
	if len(answers) == 0 {
		b.WriteString(NoDataMessage + "\n")
		return b.String()
	}
	for _, a := range answers {
		b.WriteString("- ")
		b.WriteString(safeCell(a))
		b.WriteString("\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeCell(c))
	}
	b.WriteString(" |\n")
}

func safeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
