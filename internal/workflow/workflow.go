// Package workflow composes one pipeline run: provision shared storage, then
// launch the runtime. Strictly sequential, no feedback between the stages.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/seqops/nflaunch/internal/config"
	"github.com/seqops/nflaunch/internal/launcher"
	"github.com/seqops/nflaunch/internal/logging"
	"github.com/seqops/nflaunch/internal/metrics"
	"github.com/seqops/nflaunch/internal/nextflow"
	"github.com/seqops/nflaunch/internal/provision"
)

// Driver owns the two run stages and their collaborators.
type Driver struct {
	cfg      *config.Config
	log      *logging.Logger
	names    launcher.NameResolver
	uploader launcher.Uploader
}

// NewDriver creates a Driver with injected finalize collaborators.
func NewDriver(cfg *config.Config, log *logging.Logger, names launcher.NameResolver, uploader launcher.Uploader) *Driver {
	return &Driver{
		cfg:      cfg,
		log:      log,
		names:    names,
		uploader: uploader,
	}
}

// Run provisions a shared volume and launches the pipeline on it. Any fatal
// error aborts the run and surfaces unmodified; there are no retries. The run
// outcome metrics push is best effort and never changes the result.
func (d *Driver) Run(ctx context.Context, params nextflow.RunParameters) error {
	runID := uuid.NewString()
	log := d.log.WithField("run_id", runID)
	start := time.Now()

	client := provision.NewClient(d.cfg.DispatcherURL, d.cfg.ExecutionToken, log)
	volume, err := client.Provision(ctx, d.cfg.StorageGiB)
	if err != nil {
		return err
	}

	l := launcher.New(d.cfg, log, d.names, d.uploader)
	err = l.Launch(ctx, volume, params)

	if d.cfg.PushgatewayURL != "" {
		exitCode := 0
		if err != nil {
			exitCode = -1
			var execErr *launcher.ExecutionError
			if errors.As(err, &execErr) {
				exitCode = execErr.ExitCode
			}
		}
		if pushErr := metrics.PushOutcome(d.cfg.PushgatewayURL, metrics.Outcome{
			RunID:       runID,
			Duration:    time.Since(start),
			ExitCode:    exitCode,
			StagedFiles: l.StagedFiles(),
		}); pushErr != nil {
			log.Warn("metrics push failed", map[string]interface{}{"error": pushErr.Error()})
		}
	}

	return err
}
