package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/output"
)

// emit prints report in the selected format, or writes it to a file when an
// output directory was given.
func emit(cmd *cobra.Command, opts *rootOptions, report *output.Report) error {
	if opts.outputDir == "" {
		return output.GenerateReport(cmd.OutOrStdout(), report, opts.format)
	}
	f := output.GetFormatterByName(opts.format)
	if f == nil {
		return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, opts.format)
	}
	path, err := output.WriteFormatted(f, report, opts.outputDir, output.Extension(f))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}
