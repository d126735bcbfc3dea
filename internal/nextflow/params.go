package nextflow

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Workflow parameter defaults, matching the pipeline schema.
const (
	DefaultMinReads         = 5
	DefaultMaxHits          = 50
	DefaultRemoveDuplicates = true
)

// RunParameters are the typed workflow inputs for one pipeline run. The struct
// is created once at invocation and never mutated afterwards. Optional fields
// are pointers; nil means the parameter was not supplied and no flag is
// emitted for it.
type RunParameters struct {
	Input      string
	ViralFasta string
	Outdir     string

	Email                     *string
	MultiqcTitle              *string
	Genome                    *string
	Fasta                     *string
	GTF                       *string
	MultiqcMethodsDescription *string

	MinReads         int
	MaxHits          int
	RemoveDuplicates bool
}

// New returns RunParameters for the required inputs with schema defaults
// applied to the remaining fields.
func New(input, viralFasta, outdir string) RunParameters {
	return RunParameters{
		Input:            input,
		ViralFasta:       viralFasta,
		Outdir:           outdir,
		MinReads:         DefaultMinReads,
		MaxHits:          DefaultMaxHits,
		RemoveDuplicates: DefaultRemoveDuplicates,
	}
}

// Validate checks that the required parameters are present.
func (p RunParameters) Validate() error {
	if p.Input == "" {
		return fmt.Errorf("input is required")
	}
	if p.ViralFasta == "" {
		return fmt.Errorf("viral_fasta is required")
	}
	if p.Outdir == "" {
		return fmt.Errorf("outdir is required")
	}
	return nil
}

// Flags renders the parameters as command line tokens in the pipeline's
// declared order. The order is fixed so invocation logs stay reproducible
// across runs with identical inputs.
func (p RunParameters) Flags() []string {
	var args []string
	args = append(args, stringFlag("input", p.Input)...)
	args = append(args, stringFlag("viral_fasta", p.ViralFasta)...)
	args = append(args, stringFlag("outdir", p.Outdir)...)
	args = append(args, optionalFlag("email", p.Email)...)
	args = append(args, optionalFlag("multiqc_title", p.MultiqcTitle)...)
	args = append(args, intFlag("min_reads", p.MinReads)...)
	args = append(args, intFlag("max_hits", p.MaxHits)...)
	args = append(args, boolFlag("remove_duplicates", p.RemoveDuplicates)...)
	args = append(args, optionalFlag("genome", p.Genome)...)
	args = append(args, optionalFlag("fasta", p.Fasta)...)
	args = append(args, optionalFlag("gtf", p.GTF)...)
	args = append(args, optionalFlag("multiqc_methods_description", p.MultiqcMethodsDescription)...)
	return args
}

func stringFlag(name, value string) []string {
	return []string{"--" + name, value}
}

func optionalFlag(name string, value *string) []string {
	if value == nil {
		return nil
	}
	return []string{"--" + name, *value}
}

func intFlag(name string, value int) []string {
	return []string{"--" + name, strconv.Itoa(value)}
}

// boolFlag uses the runner's boolean convention: a bare flag means true,
// an explicit "false" value means false. False is never dropped; omitting it
// would silently fall back to the pipeline default.
func boolFlag(name string, value bool) []string {
	if value {
		return []string{"--" + name}
	}
	return []string{"--" + name, "false"}
}

// paramsFile is the YAML shape of a --params-file document. Every field is a
// pointer so that absent keys can be told apart from zero values.
type paramsFile struct {
	Input                     *string `yaml:"input"`
	ViralFasta                *string `yaml:"viral_fasta"`
	Outdir                    *string `yaml:"outdir"`
	Email                     *string `yaml:"email"`
	MultiqcTitle              *string `yaml:"multiqc_title"`
	Genome                    *string `yaml:"genome"`
	Fasta                     *string `yaml:"fasta"`
	GTF                       *string `yaml:"gtf"`
	MultiqcMethodsDescription *string `yaml:"multiqc_methods_description"`
	MinReads                  *int    `yaml:"min_reads"`
	MaxHits                   *int    `yaml:"max_hits"`
	RemoveDuplicates          *bool   `yaml:"remove_duplicates"`
}

// LoadParamsFile reads a YAML params file and overlays its values onto p.
// Keys absent from the file leave the corresponding field untouched, so CLI
// flags and defaults survive the merge.
func LoadParamsFile(path string, p *RunParameters) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read params file: %w", err)
	}

	var f paramsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse params file %s: %w", path, err)
	}

	if f.Input != nil {
		p.Input = *f.Input
	}
	if f.ViralFasta != nil {
		p.ViralFasta = *f.ViralFasta
	}
	if f.Outdir != nil {
		p.Outdir = *f.Outdir
	}
	if f.Email != nil {
		p.Email = f.Email
	}
	if f.MultiqcTitle != nil {
		p.MultiqcTitle = f.MultiqcTitle
	}
	if f.Genome != nil {
		p.Genome = f.Genome
	}
	if f.Fasta != nil {
		p.Fasta = f.Fasta
	}
	if f.GTF != nil {
		p.GTF = f.GTF
	}
	if f.MultiqcMethodsDescription != nil {
		p.MultiqcMethodsDescription = f.MultiqcMethodsDescription
	}
	if f.MinReads != nil {
		p.MinReads = *f.MinReads
	}
	if f.MaxHits != nil {
		p.MaxHits = *f.MaxHits
	}
	if f.RemoveDuplicates != nil {
		p.RemoveDuplicates = *f.RemoveDuplicates
	}

	return nil
}
