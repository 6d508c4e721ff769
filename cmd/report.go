package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolli-project/kolli-dashboard/internal/dataset"
	"github.com/kolli-project/kolli-dashboard/internal/filter"
	"github.com/kolli-project/kolli-dashboard/internal/report"
	"github.com/kolli-project/kolli-dashboard/internal/stats"
)

var (
	reportSurvey    string
	reportQuestions []string
	reportTeachers  []string
	reportLectures  []string
	reportFrom      string
	reportTo        string
	reportMode      string
)

// surveyPatterns maps the survey selector to questionnaire id patterns with
// teacher and lecture placeholders. The per-teacher pre-surveys carry no
// lecture segment and are handled separately.
var surveyPatterns = map[string]string{
	"r1-1":  "R1-%s-%s-1",
	"r1-2":  "R1-%s-%s-2",
	"r1-3":  "R1-%s-%s-3",
	"r2":    "R2-%s-%s",
	"r3":    "R3-%s-%s",
	"kg-r3": "KG-R3-%s-%s",
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the Likert statistics table for a survey",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		mode, err := report.ParseMode(reportMode)
		if err != nil {
			return err
		}
		vars, err := resolveQuestions(ds, reportQuestions)
		if err != nil {
			return err
		}
		rows, err := selectRows(ds, reportSurvey, reportTeachers, reportLectures, reportFrom, reportTo)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println(report.NoDataMessage)
			return nil
		}

		dists := stats.Aggregate(rows, ds.Labels, vars...)
		fmt.Print(report.Markdown("Umfrage "+reportSurvey, dists, mode))
		fmt.Printf("\nAntworten: %d, Lehrende: %d, Vorlesungen: %d, Erhebungen: %d\n",
			stats.Responses(rows), stats.Teachers(rows), stats.Lectures(rows), stats.Occasions(rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportSurvey, "survey", "r1-1", "survey selector (r1-1, r1-2, r1-3, r2, r3, kg-r3, pre)")
	reportCmd.Flags().StringSliceVar(&reportQuestions, "questions", nil, "question variable codes (required)")
	reportCmd.Flags().StringSliceVar(&reportTeachers, "teachers", nil, "restrict to teacher abbreviations (default all)")
	reportCmd.Flags().StringSliceVar(&reportLectures, "lectures", nil, "restrict to lecture abbreviations (default all)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date YYYY-MM-DD (inclusive)")
	reportCmd.Flags().StringVar(&reportMode, "mode", "statistics", "display mode: absolute, percent or statistics")
	_ = reportCmd.MarkFlagRequired("questions")
}

// selectRows builds the filtered subset shared by the report and summarize
// commands.
func selectRows(ds *dataset.Dataset, survey string, teachers, lectures []string, from, to string) ([]dataset.Row, error) {
	var questionnaires []string
	switch {
	case survey == "pre":
		questionnaires = filter.PreSurveyQuestionnaires(ds, teachers)
	case surveyPatterns[survey] != "":
		questionnaires = filter.Questionnaires(ds, surveyPatterns[survey], teachers, lectures)
	default:
		return nil, fmt.Errorf("unknown survey %q (use %s or pre)", survey, strings.Join(surveyKeys(), ", "))
	}

	start, err := parseFlagDate(from)
	if err != nil {
		return nil, err
	}
	end, err := parseFlagDate(to)
	if err != nil {
		return nil, err
	}
	start, end = filter.DateRange(start, end)

	return filter.Rows(ds, filter.Criteria{
		Questionnaires: questionnaires,
		Start:          start,
		End:            end,
	}), nil
}

func resolveQuestions(ds *dataset.Dataset, vars []string) ([]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("no questions given")
	}
	for _, v := range vars {
		if !ds.Labels.Has(v) {
			return nil, fmt.Errorf("unknown question %q", v)
		}
	}
	return vars, nil
}

func parseFlagDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (expected YYYY-MM-DD)", raw)
	}
	return t, nil
}

func surveyKeys() []string {
	return []string{"r1-1", "r1-2", "r1-3", "r2", "r3", "kg-r3"}
}
