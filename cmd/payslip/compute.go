package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/internal/output"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

func newComputeCmd(opts *rootOptions) *cobra.Command {
	var gross, month, taxRate, ceiling string
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Preview the payslip of a gross salary without storing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := decimal.NewFromString(gross)
			if err != nil {
				return fmt.Errorf("--gross: invalid decimal %q", gross)
			}
			m := dateutil.MonthStart(time.Now().UTC())
			if month != "" {
				if m, err = dateutil.ParseMonth(month); err != nil {
					return fmt.Errorf("--month: %w", err)
				}
			}
			ruleSet, err := a.rules.For(m)
			if err != nil {
				return err
			}

			pc := domain.PayrollContext{
				GrossSalary:               g,
				PeriodStart:               m,
				PeriodEnd:                 dateutil.MonthEnd(m),
				SocialSecurityCeiling:     ruleSet.SocialSecurityCeiling,
				TaxWithholdingRatePercent: a.cfg.Payroll.TaxWithholdingRatePercent,
			}
			if a.cfg.Payroll.SocialSecurityCeiling != nil {
				pc.SocialSecurityCeiling = *a.cfg.Payroll.SocialSecurityCeiling
			}
			if pc.TaxWithholdingRatePercent, err = override("tax-rate", taxRate, pc.TaxWithholdingRatePercent); err != nil {
				return err
			}
			if pc.SocialSecurityCeiling, err = override("ceiling", ceiling, pc.SocialSecurityCeiling); err != nil {
				return err
			}

			result, breakdown, err := a.engine().Compute(pc, ruleSet)
			if err != nil {
				return err
			}
			result.CumulativeGrossYTD = result.GrossSalary
			result.CumulativeNetYTD = result.NetToPay
			preview := domain.Payslip{
				EmployeeID:                "preview",
				PeriodStart:               pc.PeriodStart,
				PeriodEnd:                 pc.PeriodEnd,
				RuleSetVersion:            ruleSet.Version,
				SocialSecurityCeiling:     pc.SocialSecurityCeiling,
				TaxWithholdingRatePercent: pc.TaxWithholdingRatePercent,
				Result:                    result,
				Lines:                     breakdown.Lines,
			}
			return emit(cmd, opts, output.NewPayslipReport("Payslip preview", preview))
		},
	}
	cmd.Flags().StringVar(&gross, "gross", "", "monthly gross salary")
	cmd.Flags().StringVar(&month, "month", "", "month whose rule set applies (YYYY-MM, defaults to the current month)")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "", "withholding rate in percent (defaults to the configured rate)")
	cmd.Flags().StringVar(&ceiling, "ceiling", "", "monthly social-security ceiling (defaults to the rule set's)")
	_ = cmd.MarkFlagRequired("gross")
	return cmd
}

func override(name, value string, current decimal.Decimal) (decimal.Decimal, error) {
	d, err := optionalDecimal(name, value)
	if err != nil || d == nil {
		return current, err
	}
	return *d, nil
}
