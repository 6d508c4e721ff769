// Package scrub removes personal data columns (e-mail addresses collected for
// a raffle) from the answer export before the file is shared for analysis.
package scrub

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

// DefaultColumns are the e-mail address columns of the known survey versions.
var DefaultColumns = []string{"AA05_01", "R206_01"}

// Removed is one scrubbed value, reported so the operator can run the raffle
// before the addresses are gone.
type Removed struct {
	Questionnaire string
	Value         string
}

// File removes the given columns from the export in place, keeping the
// UTF-16 encoding and the order of the remaining columns. It returns the
// removed non-empty values and writes a log line per value to out.
func File(path string, columns []string, out io.Writer) ([]Removed, error) {
	records, err := dataset.ReadTSV(path)
	if err != nil {
		return nil, err
	}
	header := records[0]

	remove := make(map[int]struct{})
	for _, col := range columns {
		for i, name := range header {
			if strings.TrimSpace(name) == col {
				remove[i] = struct{}{}
			}
		}
	}
	if len(remove) == 0 {
		return nil, nil
	}

	questIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "QUESTNNR" {
			questIdx = i
			break
		}
	}

	var removed []Removed
	filtered := make([][]string, 0, len(records))
	for n, rec := range records {
		keep := make([]string, 0, len(rec)-len(remove))
		for i, v := range rec {
			if _, drop := remove[i]; !drop {
				keep = append(keep, v)
				continue
			}
			if n == 0 {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				q := ""
				if questIdx >= 0 && questIdx < len(rec) {
					q = strings.TrimSpace(rec[questIdx])
				}
				removed = append(removed, Removed{Questionnaire: q, Value: v})
				if out != nil {
					fmt.Fprintf(out, "%s\t%s\n", q, v)
				}
			}
		}
		filtered = append(filtered, keep)
	}

	if err := dataset.WriteTSV(path, filtered); err != nil {
		return nil, err
	}
	return removed, nil
}
