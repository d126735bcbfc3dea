package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // no user config file

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDispatcherURL, cfg.DispatcherURL)
	assert.Equal(t, DefaultStorageGiB, cfg.StorageGiB)
	assert.Equal(t, DefaultSourceDir, cfg.SourceDir)
	assert.Equal(t, DefaultWorkDir, cfg.WorkDir)
	assert.Equal(t, DefaultRunnerPath, cfg.RunnerPath)
	assert.Equal(t, DefaultProfile, cfg.Profile)
	assert.Equal(t, DefaultConfigOverlay, cfg.ConfigOverlay)
	assert.Equal(t, DefaultLogFilename, cfg.LogFilename)
	assert.Empty(t, cfg.ExecutionToken)
	assert.Empty(t, cfg.ExecutionName)
}

func TestLoadExecutionIdentityFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLYTE_INTERNAL_EXECUTION_ID", "exec-f81a")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "exec-f81a", cfg.ExecutionToken)
	assert.Equal(t, "exec-f81a", cfg.ExecutionName)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `dispatcher_url: http://dispatcher.test
storage_gib: 25
work_dir: /scratch/nf
objectstore:
  endpoint: store.test:9000
  bucket: pipeline-logs
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://dispatcher.test", cfg.DispatcherURL)
	assert.Equal(t, 25, cfg.StorageGiB)
	assert.Equal(t, "/scratch/nf", cfg.WorkDir)
	assert.Equal(t, "store.test:9000", cfg.ObjectStore.Endpoint)
	assert.Equal(t, "pipeline-logs", cfg.ObjectStore.Bucket)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultRunnerPath, cfg.RunnerPath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPathHelpers(t *testing.T) {
	cfg := &Config{WorkDir: "/nf-workdir", EntryScript: "main.nf", LogFilename: ".nextflow.log"}
	assert.Equal(t, "/nf-workdir/main.nf", cfg.EntryScriptPath())
	assert.Equal(t, "/nf-workdir/.nextflow.log", cfg.LogPath())
}
