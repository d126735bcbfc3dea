// Package metrics pushes one-shot run outcome metrics to a Prometheus
// Pushgateway. The launcher is a short-lived process, so scraping is not an
// option; pushing is skipped entirely when no gateway is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome describes a finished (or failed) run.
type Outcome struct {
	RunID       string
	Duration    time.Duration
	ExitCode    int
	StagedFiles int
}

// PushOutcome sends the run outcome to the gateway, grouped by run id.
func PushOutcome(gatewayURL string, outcome Outcome) error {
	registry := prometheus.NewRegistry()

	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nflaunch_run_duration_seconds",
		Help: "Wall clock duration of the pipeline run.",
	})
	exitCode := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nflaunch_run_exit_code",
		Help: "Exit code of the Nextflow runtime process.",
	})
	stagedFiles := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nflaunch_staged_files",
		Help: "Number of files copied into the staged working directory.",
	})
	registry.MustRegister(duration, exitCode, stagedFiles)

	duration.Set(outcome.Duration.Seconds())
	exitCode.Set(float64(outcome.ExitCode))
	stagedFiles.Set(float64(outcome.StagedFiles))

	if err := push.New(gatewayURL, "nflaunch").
		Grouping("run_id", outcome.RunID).
		Gatherer(registry).
		Push(); err != nil {
		return fmt.Errorf("failed to push run metrics: %w", err)
	}
	return nil
}
