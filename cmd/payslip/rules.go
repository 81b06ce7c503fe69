package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/output"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the contribution rule sets in force",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, rs := range a.rules.RuleSets() {
				fmt.Fprintf(tw, "%s\tfrom %s\tceiling %s\t%d lines\n",
					rs.Version, rs.EffectiveFrom.Format("2006-01-02"), output.FormatCurrency(rs.SocialSecurityCeiling), len(rs.Definitions))
				if !verbose {
					continue
				}
				for _, d := range rs.Definitions {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s / %s\n",
						d.Category, d.Label, d.BaseType, output.FormatPercentage(d.EmployeeRatePercent), output.FormatPercentage(d.EmployerRatePercent))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every contribution definition")
	return cmd
}
