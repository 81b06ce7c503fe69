package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	format     string
	outputDir  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "payslip",
		Short:         "French payslip computation and monthly generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (defaults apply when omitted)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "console", "report format: console, console-lite, csv, detailed-csv, html, json")
	cmd.PersistentFlags().StringVar(&opts.outputDir, "output-dir", "", "write the report to a timestamped file in this directory instead of stdout")

	cmd.AddCommand(
		newComputeCmd(opts),
		newGenerateCmd(opts),
		newRegenerateCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newRulesCmd(opts),
		newEmployeeCmd(opts),
		newInitCmd(),
	)
	return cmd
}
