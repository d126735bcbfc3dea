package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nflaunch",
	Short: "Launch wrapper for the nf-core/viralintegration Nextflow pipeline",
	Long: `nflaunch provisions shared cluster storage, stages the pipeline working
directory and runs the Nextflow runtime as a child process, archiving its log
on completion.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nflaunch/config.yaml)")
}
