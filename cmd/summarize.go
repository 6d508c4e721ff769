package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolli-project/kolli-dashboard/internal/ai"
	"github.com/kolli-project/kolli-dashboard/internal/report"
	"github.com/kolli-project/kolli-dashboard/internal/stats"
)

var (
	summarizeSurvey   string
	summarizeQuestion string
	summarizeKind     string
	summarizeTeachers []string
	summarizeLectures []string
	summarizeFrom     string
	summarizeTo       string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize free-text answers with the configured LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := aiClient()
		if client == nil {
			return fmt.Errorf("llm_api_key is not configured")
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		if !ds.Labels.Has(summarizeQuestion) {
			return fmt.Errorf("unknown question %q", summarizeQuestion)
		}
		rows, err := selectRows(ds, summarizeSurvey, summarizeTeachers, summarizeLectures, summarizeFrom, summarizeTo)
		if err != nil {
			return err
		}
		answers := stats.FreeText(rows, summarizeQuestion)
		if len(answers) == 0 {
			fmt.Println(report.NoDataMessage)
			return nil
		}

		label := ds.Labels.Lookup(summarizeQuestion)
		var prompt string
		switch summarizeKind {
		case "summary":
			prompt = ai.SummaryPrompt(label, answers)
		case "topics":
			prompt = ai.TopicsPrompt(label, answers)
		case "interpretation":
			prompt = ai.InterpretationPrompt(label, answers)
		default:
			return fmt.Errorf("unknown kind %q (use summary, topics or interpretation)", summarizeKind)
		}

		if debug {
			fmt.Fprintf(os.Stderr, "summarizing %d answers to %q\n", len(answers), label)
		}
		err = client.GenerateStream(cmd.Context(), ai.GenerateRequest{
			Messages: ai.Conversation(prompt),
		}, func(delta string) {
			fmt.Print(delta)
		})
		if err != nil {
			return err
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVar(&summarizeSurvey, "survey", "r1-1", "survey selector (r1-1, r1-2, r1-3, r2, r3, kg-r3, pre)")
	summarizeCmd.Flags().StringVar(&summarizeQuestion, "question", "", "free-text question variable code (required)")
	summarizeCmd.Flags().StringVar(&summarizeKind, "kind", "summary", "prompt kind: summary, topics or interpretation")
	summarizeCmd.Flags().StringSliceVar(&summarizeTeachers, "teachers", nil, "restrict to teacher abbreviations (default all)")
	summarizeCmd.Flags().StringSliceVar(&summarizeLectures, "lectures", nil, "restrict to lecture abbreviations (default all)")
	summarizeCmd.Flags().StringVar(&summarizeFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	summarizeCmd.Flags().StringVar(&summarizeTo, "to", "", "end date YYYY-MM-DD (inclusive)")
	_ = summarizeCmd.MarkFlagRequired("question")
}
