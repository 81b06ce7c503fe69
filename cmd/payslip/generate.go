package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/output"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		salary   salaryFlags
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store the payslips of every month in a range",
		Long: "Generate one payslip per calendar month between --from and --to (inclusive).\n" +
			"Months already on file are skipped, so the command can be re-run safely.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := dateutil.ParseMonth(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end := start
			if to != "" {
				if end, err = dateutil.ParseMonth(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			a, err := loadApp(opts.configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := salary.request(a.cfg.Payroll.IncludePaidLeave)
			if err != nil {
				return err
			}
			req.PeriodStart = start
			req.PeriodEnd = dateutil.MonthEnd(end)

			run, genErr := a.generator().Generate(cmd.Context(), req)
			if run == nil {
				return genErr
			}
			if err := emit(cmd, opts, output.NewRunReport(run)); err != nil {
				return errors.Join(genErr, err)
			}
			if genErr != nil {
				return genErr
			}
			if len(run.Failed) > 0 {
				return fmt.Errorf("%d month(s) failed", len(run.Failed))
			}
			return nil
		},
	}
	salary.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "first month (YYYY-MM)")
	cmd.Flags().StringVar(&to, "to", "", "last month (YYYY-MM, defaults to --from)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newRegenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		salary salaryFlags
		month  string
	)
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Recompute and overwrite the stored payslip of one month",
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

			req, err := salary.request(a.cfg.Payroll.IncludePaidLeave)
			if err != nil {
				return err
			}
			p, err := a.generator().Regenerate(cmd.Context(), req, m)
			if err != nil {
				return err
			}
			return emit(cmd, opts, output.NewPayslipReport("Regenerated payslip", *p))
		},
	}
	salary.register(cmd)
	cmd.Flags().StringVar(&month, "month", "", "month to regenerate (YYYY-MM)")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
