// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gewnthar/covidtesting/config"
	"github.com/gewnthar/covidtesting/logger"
	"github.com/gewnthar/covidtesting/render"
	"github.com/gewnthar/covidtesting/scraper"
	"github.com/gewnthar/covidtesting/services"
	"github.com/gewnthar/covidtesting/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "covidtesting",
	Short: "Statewise COVID-19 testing dashboard for India",
	Long: `covidtesting fetches the statewise testing snapshot, cleans and enriches it with
population and zone data, and serves an animated bubble chart of test positivity
against tests per million.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// setup loads configuration and builds the process logger.
func setup() (config.Config, *log.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	appLog, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, appLog, nil
}

// buildDashboard runs the pipeline once and renders the page every viewer receives.
func buildDashboard(ctx context.Context, cfg config.Config, logger log.FieldLogger) ([]byte, error) {
	pipeline := services.NewPipeline(
		scraper.NewTestingFetcher(cfg.Source.TestingURL, logger),
		scraper.AuxiliaryFile(cfg.Source.AuxiliaryCSV),
		services.PipelineOptions{
			Cutoff:        cfg.Pipeline.CutoffDate,
			MinConfirmed:  cfg.Pipeline.MinConfirmed,
			SkipUnmatched: cfg.Pipeline.UnmatchedStates == config.UnmatchedSkip,
		},
		logger,
	)

	ds, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	opts := render.DefaultPageOptions()
	page, err := render.Page(ds, opts)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	logger.WithFields(log.Fields{
		"bytes":  len(page),
		"frames": len(ds.Frames()),
		"states": len(ds.States()),
		"from":   ds.Window().Start.Format(utils.ISODateLayout),
		"to":     ds.Window().End.Format(utils.ISODateLayout),
	}).Info("Dashboard rendered")
	return page, nil
}
