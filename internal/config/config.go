package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults mirror the environment the launcher runs in on the cluster: the
// pipeline support files are unpacked under /root by the image build, and the
// runner expects its working directory on the shared volume mount.
const (
	DefaultDispatcherURL = "http://nf-dispatcher-service.flyte.svc.cluster.local"
	DefaultSourceDir     = "/root"
	DefaultWorkDir       = "/nf-workdir"
	DefaultRunnerPath    = "/root/nextflow"
	DefaultEntryScript   = "main.nf"
	DefaultProfile       = "docker"
	DefaultConfigOverlay = "latch.config"
	DefaultLogFilename   = ".nextflow.log"
	DefaultLogPrefix     = "your_log_dir/nf_nf_core_viralintegration"
	DefaultStorageGiB    = 100
	DefaultRunnerHome    = "/root/.nextflow"
	DefaultRunnerOpts    = "-Xms2048M -Xmx8G -XX:ActiveProcessorCount=4"
)

// ObjectStore holds the log-archive object store settings. Upload is skipped
// when the endpoint is left empty.
type ObjectStore struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Config carries everything a run needs. It is built once at startup and
// passed into each component; nothing below the CLI reads the ambient
// environment directly.
type Config struct {
	// Provisioning
	DispatcherURL  string
	ExecutionToken string
	StorageGiB     int

	// Execution identity, used for log archival paths. Empty means
	// unresolvable; the log upload is then skipped.
	ExecutionName string

	// Staging and runtime
	SourceDir     string
	WorkDir       string
	RunnerPath    string
	EntryScript   string
	Profile       string
	ConfigOverlay string
	RunnerHome    string
	RunnerOpts    string

	// Finalize
	LogFilename string
	LogPrefix   string
	ObjectStore ObjectStore

	// Optional run-outcome metrics push
	PushgatewayURL string

	LogLevel  string
	LogFormat string
}

// Load builds the Config from an optional config file, environment variables
// and defaults. cfgFile may be empty, in which case $HOME/.nflaunch/config.yaml
// is tried if present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".nflaunch"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("dispatcher_url", DefaultDispatcherURL)
	v.SetDefault("storage_gib", DefaultStorageGiB)
	v.SetDefault("source_dir", DefaultSourceDir)
	v.SetDefault("work_dir", DefaultWorkDir)
	v.SetDefault("runner_path", DefaultRunnerPath)
	v.SetDefault("entry_script", DefaultEntryScript)
	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("config_overlay", DefaultConfigOverlay)
	v.SetDefault("runner_home", DefaultRunnerHome)
	v.SetDefault("runner_opts", DefaultRunnerOpts)
	v.SetDefault("log_filename", DefaultLogFilename)
	v.SetDefault("log_prefix", DefaultLogPrefix)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.AutomaticEnv()

	// The scheduler injects the execution id; it doubles as the provisioning
	// token and as the execution name used in the log archive path.
	v.BindEnv("execution_token", "FLYTE_INTERNAL_EXECUTION_ID")
	v.BindEnv("execution_name", "FLYTE_INTERNAL_EXECUTION_ID")
	v.BindEnv("dispatcher_url", "NF_DISPATCHER_URL")
	v.BindEnv("pushgateway_url", "NF_PUSHGATEWAY_URL")
	v.BindEnv("objectstore.endpoint", "NF_LOGSTORE_ENDPOINT")
	v.BindEnv("objectstore.access_key", "NF_LOGSTORE_ACCESS_KEY")
	v.BindEnv("objectstore.secret_key", "NF_LOGSTORE_SECRET_KEY")
	v.BindEnv("objectstore.bucket", "NF_LOGSTORE_BUCKET")
	v.BindEnv("objectstore.use_ssl", "NF_LOGSTORE_USE_SSL")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed or explicitly named
		// one is not.
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DispatcherURL:  v.GetString("dispatcher_url"),
		ExecutionToken: v.GetString("execution_token"),
		StorageGiB:     v.GetInt("storage_gib"),
		ExecutionName:  v.GetString("execution_name"),
		SourceDir:      v.GetString("source_dir"),
		WorkDir:        v.GetString("work_dir"),
		RunnerPath:     v.GetString("runner_path"),
		EntryScript:    v.GetString("entry_script"),
		Profile:        v.GetString("profile"),
		ConfigOverlay:  v.GetString("config_overlay"),
		RunnerHome:     v.GetString("runner_home"),
		RunnerOpts:     v.GetString("runner_opts"),
		LogFilename:    v.GetString("log_filename"),
		LogPrefix:      v.GetString("log_prefix"),
		PushgatewayURL: v.GetString("pushgateway_url"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		ObjectStore: ObjectStore{
			Endpoint:  v.GetString("objectstore.endpoint"),
			AccessKey: v.GetString("objectstore.access_key"),
			SecretKey: v.GetString("objectstore.secret_key"),
			Bucket:    v.GetString("objectstore.bucket"),
			UseSSL:    v.GetBool("objectstore.use_ssl"),
		},
	}

	return cfg, nil
}

// EntryScriptPath returns the staged path of the pipeline entry script.
func (c *Config) EntryScriptPath() string {
	return filepath.Join(c.WorkDir, c.EntryScript)
}

// LogPath returns the runner log path under the staged working directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.WorkDir, c.LogFilename)
}
