// Package main implements sentinel-simulate, which drives the pipeline in process
// and writes the event stream to stdout
package main

import (
	"os"

	"github.com/spf13/cobra"

	"sentinel/internal/core/events"
	"sentinel/internal/modkit"
	"sentinel/internal/modkit/module"
	"sentinel/internal/platform/config"
	"sentinel/internal/platform/logger"
	regmod "sentinel/internal/services/regulatory/module"
	runlogmod "sentinel/internal/services/runlog/module"
	scorerdomain "sentinel/internal/services/scorer/domain"
	scorermod "sentinel/internal/services/scorer/module"
	sentinelmod "sentinel/internal/services/sentinel/module"
	sentinelrepo "sentinel/internal/services/sentinel/repo"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentinel-simulate",
	Short: "Run the monitoring pipeline locally and stream its events",
	Long: `sentinel-simulate wires the scorer, the regulatory pipeline and the runner
in process, without an HTTP server. Events are written to stdout in the same
wire format POST /api/v1/monitor uses; logs go to stderr.

Configuration is read from the same CORE_* environment as sentinel-api.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(scrapeCmd)
}

// pipeline is the in-process composition both commands share
type pipeline struct {
	subs       []events.Subscriber
	regulatory *regmod.Module
	sentinel   *sentinelmod.Module
	csv        *sentinelrepo.CSV
}

// wire builds the modules against the root config with no storage backends
func wire(csvPath string) pipeline {
	logger.Init(logger.Options{Level: "info", Format: "console", Writer: os.Stderr, Service: "sentinel-simulate"})

	root := config.New()
	deps := modkit.Deps{Log: *logger.Get(), Cfg: root}

	if csvPath == "" {
		csvPath = sentinelmod.FromConfig(root).DemoCSV
	}
	csv := sentinelrepo.NewCSV(csvPath)

	subs := runlogmod.New(deps).Subscribers()
	scorer := scorermod.New(deps, scorermod.Options{}, modkit.WithPorts(scorerdomain.Deps{Transactions: csv}))
	reg := regmod.New(deps, modkit.WithPorts(regmod.Deps{Subscribers: subs}))
	sen := sentinelmod.New(deps, modkit.WithPorts(sentinelmod.Deps{
		Scorer:       module.MustPortsOf[scorermod.Ports](scorer).Scorer,
		Regulatory:   reg.Orchestrator(),
		Transactions: csv,
		Subscribers:  subs,
	}))
	return pipeline{subs: subs, regulatory: reg, sentinel: sen, csv: csv}
}

// stdout returns the shared sinks plus an SSE writer on stdout
func (p pipeline) stdout() *events.Channel {
	sw := events.NewStreamWriter(os.Stdout)
	return events.New(append(append([]events.Subscriber(nil), p.subs...), sw.SSE()))
}
