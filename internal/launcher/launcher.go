// Package launcher stages the pipeline working directory, executes the
// Nextflow runtime as a child process and archives its log on the way out.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/seqops/nflaunch/internal/config"
	"github.com/seqops/nflaunch/internal/logging"
	"github.com/seqops/nflaunch/internal/nextflow"
	"github.com/seqops/nflaunch/internal/provision"
	"github.com/seqops/nflaunch/internal/upload"
)

// NameResolver resolves the identifying name of the current execution, used
// as a path segment for the archived log. ok is false when no name is
// available; the upload is then skipped.
type NameResolver interface {
	ExecutionName() (name string, ok bool)
}

// Uploader copies a local file to a remote location. Implementations are
// injected so the finalize path can be exercised with test doubles.
type Uploader interface {
	Upload(ctx context.Context, localPath, remotePath string) error
}

// Launcher runs one pipeline execution end to end: stage, build command,
// execute, finalize.
type Launcher struct {
	cfg      *config.Config
	log      *logging.Logger
	names    NameResolver
	uploader Uploader

	stagedFiles int
}

// New creates a Launcher with the given collaborators.
func New(cfg *config.Config, log *logging.Logger, names NameResolver, uploader Uploader) *Launcher {
	return &Launcher{
		cfg:      cfg,
		log:      log,
		names:    names,
		uploader: uploader,
	}
}

// StagedFiles reports how many files the last Launch staged.
func (l *Launcher) StagedFiles() int {
	return l.stagedFiles
}

// Launch stages the working directory, runs the runner to completion with the
// provisioned volume exposed in its environment, and finalizes. Finalize runs
// on every exit path, and a failure inside it never masks the runner's own
// error.
func (l *Launcher) Launch(ctx context.Context, volume provision.VolumeHandle, params nextflow.RunParameters) error {
	defer l.finalize(ctx)

	if err := StageTree(l.cfg.SourceDir, l.cfg.WorkDir); err != nil {
		return fmt.Errorf("failed to stage working directory: %w", err)
	}
	l.stagedFiles = countStagedFiles(l.cfg.WorkDir)
	l.log.Info("working directory staged", map[string]interface{}{
		"work_dir": l.cfg.WorkDir,
		"files":    l.stagedFiles,
	})

	argv := nextflow.BuildCommand(l.cfg, params)
	l.log.Info("launching nextflow runtime")
	l.log.Info(strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = l.cfg.WorkDir
	cmd.Env = append(os.Environ(), nextflow.RuntimeEnv(l.cfg, string(volume))...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExecutionError{ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &ExecutionError{ExitCode: -1, Err: err}
	}

	return nil
}

// finalize archives the runner log. Everything here is best effort: a missing
// log, an unresolvable execution name or a failed upload are diagnostics, not
// errors, and must not disturb whatever Launch is about to return.
func (l *Launcher) finalize(ctx context.Context) {
	logPath := l.cfg.LogPath()
	if _, err := os.Stat(logPath); err != nil {
		l.log.Info("no runner log found, skipping upload", map[string]interface{}{"path": logPath})
		return
	}

	name, ok := l.names.ExecutionName()
	if !ok {
		l.log.Warn("skipping log upload, failed to resolve execution name")
		return
	}

	remote := upload.JoinPath(l.cfg.LogPrefix, name, "nextflow.log")
	l.log.Info("uploading runner log", map[string]interface{}{"remote": remote})
	if err := l.uploader.Upload(ctx, logPath, remote); err != nil {
		l.log.Warn("log upload failed", map[string]interface{}{"error": err.Error()})
	}
}
