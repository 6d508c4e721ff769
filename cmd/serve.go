package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolli-project/kolli-dashboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		client := aiClient()
		if client == nil {
			fmt.Fprintln(os.Stderr, "⚠ Warning: llm_api_key not set, AI summaries disabled")
		}

		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(ds, c, client, server.DefaultFilterDefs(ds))
		fmt.Fprintf(os.Stderr, "listening on http://%s\n", addr)
		return http.ListenAndServe(addr, srv.Router())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (overrides config listen_addr)")
}
