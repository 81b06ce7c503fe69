package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/output"
)

func newEmployeeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage the employee directory",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "import",
			Short: "Insert or update the employees listed in the configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp(opts.configPath, true)
				if err != nil {
					return err
				}
				defer a.Close()

				for _, e := range a.cfg.Employees {
					if err := a.employees.Upsert(cmd.Context(), e); err != nil {
						return fmt.Errorf("import %s: %w", e.ID, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d employee(s)\n", len(a.cfg.Employees))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the employees on file",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp(opts.configPath, true)
				if err != nil {
					return err
				}
				defer a.Close()

				employees, err := a.employees.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCOMPANY\tNAME\tBASE SALARY\tLEAVE")
				for _, e := range employees {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.CompanyID, e.Name, output.FormatCurrency(e.BaseSalary), output.FormatDays(e.PaidLeaveBalance))
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}
