package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"sentinel/internal/platform/logger"
	"sentinel/internal/services/sentinel/domain"
	sentinelmod "sentinel/internal/services/sentinel/module"
	"sentinel/internal/services/sentinel/service"
)

var (
	// monitor flags
	monitorCSV        string
	monitorLimit      int
	monitorRegulators []string
)

func init() {
	monitorCmd.Flags().StringVar(&monitorCSV, "csv", "", "transactions csv (defaults to CORE_SENTINEL_DEMO_CSV)")
	monitorCmd.Flags().IntVar(&monitorLimit, "limit", 25, "maximum number of rows to monitor")
	monitorCmd.Flags().StringSliceVar(&monitorRegulators, "regulators", nil, "regulator codes for escalated runs (default all)")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor transactions from a csv, one run per row",
	Long: `Monitor reads transactions from a csv and runs each one through
scoring, regulatory escalation when the score crosses the threshold, and
alert building. Rows are processed strictly one after another.

Examples:
  # Monitor the bundled demo file
  sentinel-simulate monitor

  # Monitor ten rows of a custom file, escalating to MAS only
  sentinel-simulate monitor --csv ./tx.csv --limit 10 --regulators MAS`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	if monitorLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", monitorLimit)
	}
	p := wire(monitorCSV)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	txs, err := p.csv.List(ctx, monitorLimit)
	if err != nil {
		return err
	}

	ports := p.sentinel.Ports().(sentinelmod.Ports)
	runner := *ports.Runner
	if len(monitorRegulators) > 0 {
		runner.Regulators = monitorRegulators
	}
	batch := service.NewBatch(&runner)

	log := logger.Named("simulate")
	var t tally
	out := batch.Run(ctx, p.stdout(), service.Seeds(txs), func(o domain.Outcome) {
		t.add(o)
		ev := log.Info().Str("run_id", o.RunID).Str("transaction_id", o.TransactionID).Float64("score", o.Score).Strs("stages", stageNames(o.Stages))
		if o.Alert != nil {
			ev = ev.Str("severity", string(o.Alert.Severity))
		}
		ev.Msg("run finished")
	})
	log.Info().Int("rows", len(txs)).Int("runs", len(out)).Int("alerts", t.alerts).Int("scorer_failures", t.failed).Msg("monitor done")
	return ctx.Err()
}

// tally counts what a monitor batch produced
type tally struct {
	failed, alerts int
}

func (t *tally) add(o domain.Outcome) {
	if o.Err != "" {
		t.failed++
	}
	if o.Alert != nil {
		t.alerts++
	}
}

func stageNames(ss []domain.Stage) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
