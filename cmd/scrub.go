package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolli-project/kolli-dashboard/internal/scrub"
)

var (
	scrubFile    string
	scrubColumns []string
)

var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Remove e-mail address columns from the answer export",
	Long: `scrub removes the raffle e-mail columns from the answer export in place,
keeping the UTF-16 encoding and column order. The removed addresses are
printed so the raffle can be run before they are gone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := scrubFile
		columns := scrubColumns
		if cfg != nil {
			if path == "" {
				path = cfg.AnswersFile
			}
			if len(columns) == 0 {
				columns = cfg.ScrubColumns
			}
		}
		if path == "" {
			return fmt.Errorf("no answer export given (use --file or answers_file config)")
		}
		if len(columns) == 0 {
			columns = scrub.DefaultColumns
		}

		removed, err := scrub.File(path, columns, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "removed %d values from %s\n", len(removed), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrubCmd)
	scrubCmd.Flags().StringVar(&scrubFile, "file", "", "answer export to scrub (default answers_file from config)")
	scrubCmd.Flags().StringSliceVar(&scrubColumns, "columns", nil, "columns to remove (default scrub_columns from config)")
}
