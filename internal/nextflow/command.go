package nextflow

import (
	"github.com/seqops/nflaunch/internal/config"
)

// BuildCommand assembles the full runner invocation: the runner binary, the
// staged entry script, the fixed work-dir/profile/config flags, then one flag
// group per run parameter.
func BuildCommand(cfg *config.Config, params RunParameters) []string {
	argv := []string{
		cfg.RunnerPath,
		"run",
		cfg.EntryScriptPath(),
		"-work-dir", cfg.WorkDir,
		"-profile", cfg.Profile,
		"-c", cfg.ConfigOverlay,
	}
	return append(argv, params.Flags()...)
}

// RuntimeEnv returns the environment overlay for the runner process: home
// directory override, JVM heap tuning, the provisioned volume claim for the
// runner's storage plugin, and the switch disabling its update check.
func RuntimeEnv(cfg *config.Config, volume string) []string {
	return []string{
		"NXF_HOME=" + cfg.RunnerHome,
		"NXF_OPTS=" + cfg.RunnerOpts,
		"K8S_STORAGE_CLAIM_NAME=" + volume,
		"NXF_DISABLE_CHECK_LATEST=true",
	}
}
