// cmd/render.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/covidtesting/render"
)

var (
	renderOutput string
	renderText   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Build the dashboard once and write it to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		page, err := buildDashboard(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		if renderText {
			text, err := render.PageText(page)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		if err := os.WriteFile(renderOutput, page, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", renderOutput, err)
		}
		logger.WithField("path", renderOutput).Info("Dashboard written")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "dashboard.html", "output HTML file")
	renderCmd.Flags().BoolVar(&renderText, "text", false, "print the page text instead of writing HTML")
	rootCmd.AddCommand(renderCmd)
}
