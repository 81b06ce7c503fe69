package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/output"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		employeeID string
		year       int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored payslips of an employee for a fiscal year",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = dateutil.FiscalYear(time.Now().UTC())
			}
			a, err := loadApp(opts.configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			payslips, err := a.payslips.FindByEmployeeAndYear(cmd.Context(), employeeID, year)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Payslips %s %d", employeeID, year)
			return emit(cmd, opts, output.NewPayslipReport(title, payslips...))
		},
	}
	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "employee id")
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year (defaults to the current year)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var employeeID, month string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored payslip of one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dateutil.ParseMonth(month)
			if err != nil {
				return fmt.Errorf("--month: %w", err)
			}
			a, err := loadApp(opts.configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.payslips.FindByEmployeeAndMonth(cmd.Context(), employeeID, m)
			if err != nil {
				return err
			}
			return emit(cmd, opts, output.NewPayslipReport("", *p))
		},
	}
	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "employee id")
	cmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
