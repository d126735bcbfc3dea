package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/seqops/nflaunch/internal/config"
	"github.com/seqops/nflaunch/internal/launcher"
	"github.com/seqops/nflaunch/internal/logging"
	"github.com/seqops/nflaunch/internal/nextflow"
	"github.com/seqops/nflaunch/internal/preflight"
	"github.com/seqops/nflaunch/internal/upload"
	"github.com/seqops/nflaunch/internal/workflow"
)

var (
	paramsFile string

	inputFlag      string
	viralFastaFlag string
	outdirFlag     string

	emailFlag        string
	multiqcTitleFlag string
	genomeFlag       string
	fastaFlag        string
	gtfFlag          string
	methodsDescFlag  string

	minReadsFlag         int
	maxHitsFlag          int
	removeDuplicatesFlag bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision storage and run the pipeline",
	Long: `Provision a shared storage volume from the cluster dispatcher, stage the
pipeline working directory and execute the Nextflow runtime with the given
workflow parameters.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&paramsFile, "params-file", "", "YAML file with workflow parameters (CLI flags take precedence)")

	runCmd.Flags().StringVar(&inputFlag, "input", "", "samplesheet with input reads (required)")
	runCmd.Flags().StringVar(&viralFastaFlag, "viral-fasta", "", "viral reference FASTA (required)")
	runCmd.Flags().StringVar(&outdirFlag, "outdir", "", "output directory (required)")

	runCmd.Flags().StringVar(&emailFlag, "email", "", "email address for the completion summary")
	runCmd.Flags().StringVar(&multiqcTitleFlag, "multiqc-title", "", "custom title for the MultiQC report")
	runCmd.Flags().StringVar(&genomeFlag, "genome", "", "iGenomes reference name")
	runCmd.Flags().StringVar(&fastaFlag, "fasta", "", "host genome FASTA override")
	runCmd.Flags().StringVar(&gtfFlag, "gtf", "", "host annotation GTF override")
	runCmd.Flags().StringVar(&methodsDescFlag, "multiqc-methods-description", "", "custom MultiQC methods description")

	runCmd.Flags().IntVar(&minReadsFlag, "min-reads", nextflow.DefaultMinReads, "minimum reads supporting an integration site")
	runCmd.Flags().IntVar(&maxHitsFlag, "max-hits", nextflow.DefaultMaxHits, "maximum alignment hits per read")
	runCmd.Flags().BoolVar(&removeDuplicatesFlag, "remove-duplicates", nextflow.DefaultRemoveDuplicates, "remove duplicate alignments")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat == "json")

	params, err := buildParams(cmd, cfg)
	if err != nil {
		return err
	}

	printParams(params)
	preflight.Check(log)

	uploader, err := buildUploader(cfg, log)
	if err != nil {
		return err
	}

	driver := workflow.NewDriver(cfg, log, upload.StaticResolver{Name: cfg.ExecutionName}, uploader)
	return driver.Run(cmd.Context(), params)
}

// buildParams merges the params file (if any) under the CLI flags. A flag the
// user actually set wins over a file value; untouched flags contribute their
// defaults only when the file has no value either.
func buildParams(cmd *cobra.Command, cfg *config.Config) (nextflow.RunParameters, error) {
	params := nextflow.New(inputFlag, viralFastaFlag, outdirFlag)

	if paramsFile != "" {
		if err := nextflow.LoadParamsFile(paramsFile, &params); err != nil {
			return params, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		params.Input = inputFlag
	}
	if flags.Changed("viral-fasta") {
		params.ViralFasta = viralFastaFlag
	}
	if flags.Changed("outdir") {
		params.Outdir = outdirFlag
	}
	if flags.Changed("email") {
		params.Email = &emailFlag
	}
	if flags.Changed("multiqc-title") {
		params.MultiqcTitle = &multiqcTitleFlag
	}
	if flags.Changed("genome") {
		params.Genome = &genomeFlag
	}
	if flags.Changed("fasta") {
		params.Fasta = &fastaFlag
	}
	if flags.Changed("gtf") {
		params.GTF = &gtfFlag
	}
	if flags.Changed("multiqc-methods-description") {
		params.MultiqcMethodsDescription = &methodsDescFlag
	}
	if flags.Changed("min-reads") {
		params.MinReads = minReadsFlag
	}
	if flags.Changed("max-hits") {
		params.MaxHits = maxHitsFlag
	}
	if flags.Changed("remove-duplicates") {
		params.RemoveDuplicates = removeDuplicatesFlag
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

func printParams(params nextflow.RunParameters) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Parameter", "Value")

	table.Append("input", params.Input)
	table.Append("viral_fasta", params.ViralFasta)
	table.Append("outdir", params.Outdir)
	appendOptional(table, "email", params.Email)
	appendOptional(table, "multiqc_title", params.MultiqcTitle)
	table.Append("min_reads", strconv.Itoa(params.MinReads))
	table.Append("max_hits", strconv.Itoa(params.MaxHits))
	table.Append("remove_duplicates", fmt.Sprintf("%t", params.RemoveDuplicates))
	appendOptional(table, "genome", params.Genome)
	appendOptional(table, "fasta", params.Fasta)
	appendOptional(table, "gtf", params.GTF)
	appendOptional(table, "multiqc_methods_description", params.MultiqcMethodsDescription)

	table.Render()
}

func appendOptional(table *tablewriter.Table, name string, value *string) {
	if value == nil {
		return
	}
	table.Append(name, *value)
}

func buildUploader(cfg *config.Config, log *logging.Logger) (launcher.Uploader, error) {
	if cfg.ObjectStore.Endpoint == "" {
		return upload.Discard{Log: log}, nil
	}
	return upload.NewObjectStore(cfg.ObjectStore, log)
}
