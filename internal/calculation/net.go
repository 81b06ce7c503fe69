package calculation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/decimal"
	sd "github.com/shopspring/decimal"
)

// NetSalaryCalculator derives the net figures of a payslip.
//
//   netImposable = gross - (employee contributions - non-deductible CSG/CRDS)
//   netBeforeTax = gross - employee contributions
//   taxAmount    = round(netImposable x taxRate / 100)
//   netToPay     = netBeforeTax - taxAmount
//   employerCost = gross + employer contributions
//
// The flat withholding rate is a simplification of the prélèvement à la
// source schedule; the rate is supplied by the caller.
type NetSalaryCalculator struct {
	Logger Logger
}

// NewNetSalaryCalculator creates a net salary calculator with a no-op logger
func NewNetSalaryCalculator() *NetSalaryCalculator {
	return &NetSalaryCalculator{Logger: NopLogger{}}
}

// ComputeNet computes net amounts and asserts
// netToPay <= netBeforeTax <= gross <= employerCost.
func (nc *NetSalaryCalculator) ComputeNet(gross, totalEmployee, totalEmployer, nonDeductible, taxRatePercent sd.Decimal) (domain.NetSalaryResult, error) {
	inputs := []struct {
		name  string
		value sd.Decimal
	}{
		{"gross salary", gross},
		{"employee contributions", totalEmployee},
		{"employer contributions", totalEmployer},
		{"non-deductible contributions", nonDeductible},
	}
	for _, in := range inputs {
		if in.value.IsNegative() {
			return domain.NetSalaryResult{}, fmt.Errorf("%w: %s %s is negative", domain.ErrInvalidInput, in.name, in.value)
		}
	}
	if !decimal.IsPercent(taxRatePercent) {
		return domain.NetSalaryResult{}, fmt.Errorf("%w: tax rate %s%% outside [0,100]", domain.ErrInvalidInput, taxRatePercent)
	}
	if nonDeductible.GreaterThan(totalEmployee) {
		return domain.NetSalaryResult{}, fmt.Errorf("%w: non-deductible %s exceeds employee contributions %s",
			domain.ErrInternalConsistency, nonDeductible, totalEmployee)
	}

	res := domain.NetSalaryResult{
		NetImposable: gross.Sub(totalEmployee.Sub(nonDeductible)),
		NetBeforeTax: gross.Sub(totalEmployee),
		EmployerCost: gross.Add(totalEmployer),
	}
	res.TaxAmount = decimal.PercentOf(res.NetImposable, taxRatePercent)
	res.NetToPay = res.NetBeforeTax.Sub(res.TaxAmount)

	if err := CheckNetInvariant(gross, res); err != nil {
		nc.Logger.Errorf("net invariant violated: %v", err)
		return domain.NetSalaryResult{}, err
	}
	return res, nil
}

// CheckNetInvariant returns ErrInternalConsistency unless
// netToPay <= netBeforeTax <= gross <= employerCost.
func CheckNetInvariant(gross sd.Decimal, n domain.NetSalaryResult) error {
	switch {
	case n.NetToPay.GreaterThan(n.NetBeforeTax):
		return fmt.Errorf("%w: net to pay %s exceeds net before tax %s", domain.ErrInternalConsistency, n.NetToPay, n.NetBeforeTax)
	case n.NetBeforeTax.GreaterThan(gross):
		return fmt.Errorf("%w: net before tax %s exceeds gross %s", domain.ErrInternalConsistency, n.NetBeforeTax, gross)
	case gross.GreaterThan(n.EmployerCost):
		return fmt.Errorf("%w: gross %s exceeds employer cost %s", domain.ErrInternalConsistency, gross, n.EmployerCost)
	}
	return nil
}
