package main

import (
	"encoding/json"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sentinel/internal/platform/logger"
	"sentinel/internal/services/regulatory/domain"
)

var (
	// scrape flags
	scrapeRegulators []string
	scrapeFinal      bool
)

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeRegulators, "regulators", nil, "regulator codes to scan (default all)")
	scrapeCmd.Flags().BoolVar(&scrapeFinal, "final", false, "print the resulting state as json after the stream")
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one regulatory intelligence pass",
	Long: `Scrape scans regulator sources, extracts and parses new documents, and
generates and versions rule proposals. Events stream to stdout.

Examples:
  # Scan every configured regulator
  sentinel-simulate scrape

  # Scan two regulators and print the final state
  sentinel-simulate scrape --regulators MAS,FCA --final`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, _ []string) error {
	p := wire("")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	res := p.regulatory.Orchestrator().Run(ctx, p.stdout().Emitter(runID, "regulatory"), domain.Request{Regulators: scrapeRegulators})

	logger.C(ctx).Info().Strs("regulators", res.Regulators).Msg("scrape done")
	if scrapeFinal {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}
