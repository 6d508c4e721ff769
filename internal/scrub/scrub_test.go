package scrub

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	records := [][]string{
		{"CASE", "QUESTNNR", "STARTED", "V101_01", "AA05_01", "R206_01"},
		{"1", "R1-KAWE-INF-1", "2024-10-01 10:00:00", "2", "student@example.org", ""},
		{"2", "R2-KAWE-INF", "2024-10-15 11:30:00", "3", "", "andere@example.org"},
		{"3", "R2-SILA-BWL", "2024-11-02 09:15:00", "4", "", ""},
	}
	if err := dataset.WriteTSV(path, records); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	return path
}

func TestFileRemovesColumnsInPlace(t *testing.T) {
	path := writeFixture(t)

	var log strings.Builder
	removed, err := File(path, DefaultColumns, &log)
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	want := []Removed{
		{Questionnaire: "R1-KAWE-INF-1", Value: "student@example.org"},
		{Questionnaire: "R2-KAWE-INF", Value: "andere@example.org"},
	}
	if !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed = %v, want %v", removed, want)
	}
	if !strings.Contains(log.String(), "student@example.org") {
		t.Fatalf("log missing removed value:\n%s", log.String())
	}

	records, err := dataset.ReadTSV(path)
	if err != nil {
		t.Fatalf("ReadTSV after scrub: %v", err)
	}
	wantHeader := []string{"CASE", "QUESTNNR", "STARTED", "V101_01"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("header after scrub = %v, want %v", records[0], wantHeader)
	}
	if len(records) != 4 {
		t.Fatalf("row count changed: %d", len(records))
	}
	if records[1][3] != "2" {
		t.Fatalf("remaining values shifted: %v", records[1])
	}
}

func TestFileNoTargetColumnsIsNoOp(t *testing.T) {
	path := writeFixture(t)
	before, err := dataset.ReadTSV(path)
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}

	removed, err := File(path, []string{"NOPE_01"}, nil)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if removed != nil {
		t.Fatalf("removed = %v, want nil", removed)
	}

	after, err := dataset.ReadTSV(path)
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("file changed without target columns")
	}
}

func TestFileIdempotent(t *testing.T) {
	path := writeFixture(t)
	if _, err := File(path, DefaultColumns, nil); err != nil {
		t.Fatalf("first scrub: %v", err)
	}
	removed, err := File(path, DefaultColumns, nil)
	if err != nil {
		t.Fatalf("second scrub: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("second scrub removed values: %v", removed)
	}
}
