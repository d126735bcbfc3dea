package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{"simple", []string{"logs", "run-1", "nextflow.log"}, "logs/run-1/nextflow.log"},
		{"trailing slashes", []string{"logs/", "/run-1/", "nextflow.log"}, "logs/run-1/nextflow.log"},
		{"empty segment", []string{"logs", "", "nextflow.log"}, "logs/nextflow.log"},
		{"nested prefix", []string{"your_log_dir/nf_nf_core_viralintegration", "exec-9", "nextflow.log"},
			"your_log_dir/nf_nf_core_viralintegration/exec-9/nextflow.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinPath(tt.segments...))
		})
	}
}

func TestStaticResolver(t *testing.T) {
	name, ok := StaticResolver{Name: "exec-42"}.ExecutionName()
	assert.True(t, ok)
	assert.Equal(t, "exec-42", name)

	_, ok = StaticResolver{}.ExecutionName()
	assert.False(t, ok)
}
