package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Rows: []dataset.Row{
			{Case: 1, Questionnaire: "R1-KAWE-INF-1", Started: day("2024-10-01"), Values: map[string]string{"V101_01": "+", "GF01": "1"}},
			{Case: 2, Questionnaire: "R2-KAWE-INF", Started: day("2024-10-15"), Values: map[string]string{"V101_01": "-", "GF01": "2"}},
			{Case: 3, Questionnaire: "R2-SILA-BWL", Started: day("2024-11-02"), Values: map[string]string{"V101_01": "++"}},
			{Case: 4, Questionnaire: "S-KAWE-1", Started: day("2024-09-20"), Values: map[string]string{"V203_01": "7"}},
		},
		Teachers: []string{"KAWE", "SILA"},
		Lectures: []string{"INF", "BWL"},
	}
}

func caseIDs(rows []dataset.Row) []int {
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Case)
	}
	return ids
}

func TestQuestionnairesCartesianProduct(t *testing.T) {
	ds := testDataset()
	got := Questionnaires(ds, "R2-%s-%s", []string{"KAWE"}, []string{"INF", "BWL"})
	want := []string{"R2-KAWE-INF", "R2-KAWE-BWL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestQuestionnairesEmptySelectionMeansAll(t *testing.T) {
	ds := testDataset()
	got := Questionnaires(ds, "R2-%s-%s", nil, nil)
	want := []string{"R2-KAWE-INF", "R2-KAWE-BWL", "R2-SILA-INF", "R2-SILA-BWL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// The expanded list must select the same rows as an explicit full
	// selection.
	full := Rows(ds, Criteria{Questionnaires: got})
	explicit := Rows(ds, Criteria{Questionnaires: Questionnaires(ds, "R2-%s-%s", ds.Teachers, ds.Lectures)})
	if !reflect.DeepEqual(caseIDs(full), caseIDs(explicit)) {
		t.Fatalf("empty selection selected %v, explicit all selected %v", caseIDs(full), caseIDs(explicit))
	}
}

func TestPreSurveyQuestionnaires(t *testing.T) {
	ds := testDataset()
	got := PreSurveyQuestionnaires(ds, nil)
	want := []string{"S-KAWE-1", "S-SILA-1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRowsDateRangeInclusive(t *testing.T) {
	ds := testDataset()
	start, end := DateRange(day("2024-10-01"), day("2024-10-15"))
	got := Rows(ds, Criteria{
		Questionnaires: []string{"R1-KAWE-INF-1", "R2-KAWE-INF", "R2-SILA-BWL"},
		Start:          start,
		End:            end,
	})
	if want := []int{1, 2}; !reflect.DeepEqual(caseIDs(got), want) {
		t.Fatalf("got cases %v, want %v", caseIDs(got), want)
	}
}

func TestRowsEndOfDayIncludesLateResponses(t *testing.T) {
	ds := &dataset.Dataset{Rows: []dataset.Row{
		{Case: 1, Questionnaire: "Q", Started: day("2024-10-15").Add(18 * time.Hour)},
	}}
	start, end := DateRange(day("2024-10-15"), day("2024-10-15"))
	got := Rows(ds, Criteria{Questionnaires: []string{"Q"}, Start: start, End: end})
	if len(got) != 1 {
		t.Fatalf("response at 18:00 on the end day excluded")
	}
}

func TestConstraintEmptyCategorySetIsNoOp(t *testing.T) {
	ds := testDataset()
	got := Rows(ds, Criteria{
		Questionnaires: []string{"R1-KAWE-INF-1", "R2-KAWE-INF", "R2-SILA-BWL"},
		Constraints:    []Constraint{{Var: "GF01"}},
	})
	if want := []int{1, 2, 3}; !reflect.DeepEqual(caseIDs(got), want) {
		t.Fatalf("got cases %v, want %v", caseIDs(got), want)
	}
}

func TestConstraintMissingColumnFails(t *testing.T) {
	ds := testDataset()
	got := Rows(ds, Criteria{
		Questionnaires: []string{"R1-KAWE-INF-1", "R2-KAWE-INF", "R2-SILA-BWL"},
		Constraints:    []Constraint{{Var: "GF01", Categories: []string{"1", "2"}}},
	})
	// Case 3 has no GF01 answer and must be excluded.
	if want := []int{1, 2}; !reflect.DeepEqual(caseIDs(got), want) {
		t.Fatalf("got cases %v, want %v", caseIDs(got), want)
	}
}

func TestConstraintNumericRange(t *testing.T) {
	ds := testDataset()
	got := Rows(ds, Criteria{
		Questionnaires: []string{"S-KAWE-1"},
		Constraints:    []Constraint{{Var: "V203_01", Numeric: true, Min: 5, Max: 11}},
	})
	if want := []int{4}; !reflect.DeepEqual(caseIDs(got), want) {
		t.Fatalf("got cases %v, want %v", caseIDs(got), want)
	}

	got = Rows(ds, Criteria{
		Questionnaires: []string{"S-KAWE-1"},
		Constraints:    []Constraint{{Var: "V203_01", Numeric: true, Min: 8, Max: 11}},
	})
	if len(got) != 0 {
		t.Fatalf("value 7 matched range [8,11]")
	}
}

func TestRowsEmptyResultIsValid(t *testing.T) {
	ds := testDataset()
	got := Rows(ds, Criteria{Questionnaires: []string{"R3-KAWE-INF"}})
	if len(got) != 0 {
		t.Fatalf("got %d rows, want 0", len(got))
	}
}
