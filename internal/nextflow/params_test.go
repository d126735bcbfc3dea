package nextflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestFlagsDefaults(t *testing.T) {
	params := New("s3://bucket/samplesheet.csv", "/refs/viral.fa", "s3://bucket/out")

	expected := []string{
		"--input", "s3://bucket/samplesheet.csv",
		"--viral_fasta", "/refs/viral.fa",
		"--outdir", "s3://bucket/out",
		"--min_reads", "5",
		"--max_hits", "50",
		"--remove_duplicates",
	}
	assert.Equal(t, expected, params.Flags())
}

func TestFlagsOmitsAbsentOptionals(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")
	args := params.Flags()

	for _, name := range []string{
		"--email", "--multiqc_title", "--genome", "--fasta", "--gtf", "--multiqc_methods_description",
	} {
		assert.NotContains(t, args, name)
	}
}

func TestFlagsPresentOptionals(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")
	params.Email = strptr("user@example.com")
	params.Genome = strptr("GRCh38")
	params.MultiqcMethodsDescription = strptr("custom methods")

	args := params.Flags()

	assert.Contains(t, args, "--email")
	assert.Contains(t, args, "user@example.com")
	assert.Contains(t, args, "--genome")
	assert.Contains(t, args, "GRCh38")
	assert.Contains(t, args, "--multiqc_methods_description")
	assert.Contains(t, args, "custom methods")
}

func TestBooleanFlagEncoding(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")

	// True is a bare flag.
	params.RemoveDuplicates = true
	argsTrue := params.Flags()
	idx := indexOf(argsTrue, "--remove_duplicates")
	require.GreaterOrEqual(t, idx, 0, "true must still emit the flag")
	if idx+1 < len(argsTrue) {
		assert.NotEqual(t, "false", argsTrue[idx+1])
	}

	// False carries an explicit value, never omitted.
	params.RemoveDuplicates = false
	argsFalse := params.Flags()
	idx = indexOf(argsFalse, "--remove_duplicates")
	require.GreaterOrEqual(t, idx, 0, "false must still emit the flag")
	require.Less(t, idx+1, len(argsFalse))
	assert.Equal(t, "false", argsFalse[idx+1])

	assert.NotEqual(t, argsTrue, argsFalse)
}

func TestFlagsOrderIsStable(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")
	params.Email = strptr("a@b.c")
	params.Genome = strptr("GRCh38")

	expected := []string{
		"--input", "in.csv",
		"--viral_fasta", "viral.fa",
		"--outdir", "out",
		"--email", "a@b.c",
		"--min_reads", "5",
		"--max_hits", "50",
		"--remove_duplicates",
		"--genome", "GRCh38",
	}
	assert.Equal(t, expected, params.Flags())
}

func TestValidate(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")
	assert.NoError(t, params.Validate())

	missing := params
	missing.ViralFasta = ""
	assert.Error(t, missing.Validate())
}

func TestLoadParamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	doc := `input: s3://bucket/sheet.csv
viral_fasta: /refs/hpv.fa
outdir: s3://bucket/out
email: user@example.com
min_reads: 10
remove_duplicates: false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	params := New("", "", "")
	require.NoError(t, LoadParamsFile(path, &params))

	assert.Equal(t, "s3://bucket/sheet.csv", params.Input)
	assert.Equal(t, "/refs/hpv.fa", params.ViralFasta)
	assert.Equal(t, "s3://bucket/out", params.Outdir)
	require.NotNil(t, params.Email)
	assert.Equal(t, "user@example.com", *params.Email)
	assert.Equal(t, 10, params.MinReads)
	assert.False(t, params.RemoveDuplicates)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultMaxHits, params.MaxHits)
	assert.Nil(t, params.Genome)
}

func TestLoadParamsFileMissing(t *testing.T) {
	params := New("in.csv", "viral.fa", "out")
	assert.Error(t, LoadParamsFile(filepath.Join(t.TempDir(), "nope.yaml"), &params))
}

func indexOf(args []string, token string) int {
	for i, a := range args {
		if a == token {
			return i
		}
	}
	return -1
}
