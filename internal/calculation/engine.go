package calculation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/domain"
)

// CalculationEngine orchestrates the pure payroll computations of one month:
// contribution lines, then net amounts. It performs no I/O.
type CalculationEngine struct {
	Contributions *ContributionEngine
	Net           *NetSalaryCalculator
	YTD           *YTDAggregator
	Logger        Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	logger := NopLogger{}
	return &CalculationEngine{
		Contributions: &ContributionEngine{Logger: logger},
		Net:           &NetSalaryCalculator{Logger: logger},
		YTD:           NewYTDAggregator(),
		Logger:        logger,
	}
}

// SetLogger sets the logger for the engine and its calculators. If nil is
// provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
	ce.Contributions.Logger = l
	ce.Net.Logger = l
}

// Compute runs the contribution engine and the net calculator for one
// validated payroll context. Leave and year-to-date fields are left for the
// caller, which owns that carried state.
func (ce *CalculationEngine) Compute(pc domain.PayrollContext, ruleSet domain.ContributionRuleSet) (domain.PayslipResult, domain.ContributionBreakdown, error) {
	if err := pc.Validate(); err != nil {
		return domain.PayslipResult{}, domain.ContributionBreakdown{}, err
	}

	breakdown, err := ce.Contributions.ComputeContributions(pc.GrossSalary, ruleSet, pc.SocialSecurityCeiling)
	if err != nil {
		return domain.PayslipResult{}, domain.ContributionBreakdown{}, err
	}

	net, err := ce.Net.ComputeNet(pc.GrossSalary, breakdown.TotalEmployee, breakdown.TotalEmployer,
		breakdown.NonDeductibleEmployee, pc.TaxWithholdingRatePercent)
	if err != nil {
		return domain.PayslipResult{}, domain.ContributionBreakdown{}, fmt.Errorf("period %s: %w", pc.PeriodStart.Format("2006-01"), err)
	}

	result := domain.PayslipResult{
		GrossSalary:                pc.GrossSalary,
		TotalEmployeeContributions: breakdown.TotalEmployee,
		TotalEmployerContributions: breakdown.TotalEmployer,
	}
	result.ApplyNet(net)

	ce.Logger.Debugf("computed %s gross=%s employee=%s employer=%s net=%s (rules %s)",
		pc.PeriodStart.Format("2006-01"), pc.GrossSalary.StringFixed(2), breakdown.TotalEmployee.StringFixed(2),
		breakdown.TotalEmployer.StringFixed(2), net.NetToPay.StringFixed(2), ruleSet.Version)

	return result, breakdown, nil
}
