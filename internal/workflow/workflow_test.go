package workflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqops/nflaunch/internal/config"
	"github.com/seqops/nflaunch/internal/launcher"
	"github.com/seqops/nflaunch/internal/logging"
	"github.com/seqops/nflaunch/internal/nextflow"
	"github.com/seqops/nflaunch/internal/provision"
	"github.com/seqops/nflaunch/internal/upload"
)

func testLogger() *logging.Logger {
	log := logging.New(logging.ERROR, false)
	log.SetOutput(io.Discard)
	return log
}

type recordingUploader struct {
	calls int
}

func (u *recordingUploader) Upload(ctx context.Context, localPath, remotePath string) error {
	u.calls++
	return nil
}

func driverConfig(t *testing.T, dispatcherURL string) *config.Config {
	t.Helper()

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "main.nf"), []byte("workflow {}"), 0o644); err != nil {
		t.Fatalf("write entry script: %v", err)
	}

	runner := filepath.Join(t.TempDir(), "nextflow")
	script := "#!/bin/sh\nprintf 'log' > .nextflow.log\nexit 0\n"
	if err := os.WriteFile(runner, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake runner: %v", err)
	}

	return &config.Config{
		DispatcherURL:  dispatcherURL,
		ExecutionToken: "tok-123",
		StorageGiB:     100,
		SourceDir:      src,
		WorkDir:        filepath.Join(t.TempDir(), "nf-workdir"),
		RunnerPath:     runner,
		EntryScript:    "main.nf",
		Profile:        "docker",
		ConfigOverlay:  "latch.config",
		RunnerHome:     "/tmp/.nextflow",
		RunnerOpts:     "-Xms64M",
		LogFilename:    ".nextflow.log",
		LogPrefix:      "logs/viralintegration",
	}
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"pvc-run-1"}`))
	}))
	defer server.Close()

	cfg := driverConfig(t, server.URL)
	uploader := &recordingUploader{}

	driver := NewDriver(cfg, testLogger(), upload.StaticResolver{Name: "exec-1"}, uploader)
	if err := driver.Run(context.Background(), nextflow.New("in.csv", "viral.fa", "out")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if uploader.calls != 1 {
		t.Errorf("expected the log to be uploaded once, got %d", uploader.calls)
	}
}

func TestRunAbortsBeforeLaunchOnProvisioningFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no capacity", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := driverConfig(t, server.URL)

	driver := NewDriver(cfg, testLogger(), upload.StaticResolver{Name: "exec-1"}, &recordingUploader{})
	err := driver.Run(context.Background(), nextflow.New("in.csv", "viral.fa", "out"))

	var provErr *provision.ProvisioningError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProvisioningError, got %v", err)
	}

	// The launcher never ran: nothing was staged.
	if _, statErr := os.Stat(cfg.WorkDir); !os.IsNotExist(statErr) {
		t.Error("working directory was staged despite provisioning failure")
	}
}

func TestRunSurfacesExecutionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"pvc-run-1"}`))
	}))
	defer server.Close()

	cfg := driverConfig(t, server.URL)
	script := "#!/bin/sh\nexit 9\n"
	if err := os.WriteFile(cfg.RunnerPath, []byte(script), 0o755); err != nil {
		t.Fatalf("rewrite fake runner: %v", err)
	}

	driver := NewDriver(cfg, testLogger(), upload.StaticResolver{Name: "exec-1"}, &recordingUploader{})
	err := driver.Run(context.Background(), nextflow.New("in.csv", "viral.fa", "out"))

	var execErr *launcher.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if execErr.ExitCode != 9 {
		t.Errorf("expected exit code 9, got %d", execErr.ExitCode)
	}
}
