// Package preflight inspects the host before a launch. The runner's JVM is
// tuned for 4 processors and an 8G heap; running below that is allowed but
// worth a warning in the run log.
package preflight

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/seqops/nflaunch/internal/logging"
)

const (
	minCPUs     = 4
	minFreeMem  = 8 << 30
	bytesPerGiB = 1 << 30
)

// Report summarizes the host resources relevant to the runner.
type Report struct {
	CPUs         int
	TotalMemory  uint64
	AvailableMem uint64
}

// Inspect gathers host CPU and memory information. Failures are reported as
// errors but callers treat the whole check as advisory.
func Inspect() (*Report, error) {
	cpus, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory info: %w", err)
	}

	return &Report{
		CPUs:         cpus,
		TotalMemory:  vm.Total,
		AvailableMem: vm.Available,
	}, nil
}

// Check logs the host resources and warns when they are below what the runner
// is tuned for. It never fails the run.
func Check(log *logging.Logger) {
	report, err := Inspect()
	if err != nil {
		log.Warn("preflight inspection failed", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("host resources", map[string]interface{}{
		"cpus":          report.CPUs,
		"memory_gib":    report.TotalMemory / bytesPerGiB,
		"available_gib": report.AvailableMem / bytesPerGiB,
	})

	if report.CPUs < minCPUs {
		log.Warn(fmt.Sprintf("host has %d CPUs, runner is tuned for %d", report.CPUs, minCPUs))
	}
	if report.AvailableMem < minFreeMem {
		log.Warn(fmt.Sprintf("host has %d GiB available memory, runner heap is tuned for %d GiB",
			report.AvailableMem/bytesPerGiB, minFreeMem/bytesPerGiB))
	}
}
