package output

import (
	"github.com/shopspring/decimal"

	"github.com/paie/payslip-engine/internal/domain"
)

// Totals aggregates the payslips of a report.
type Totals struct {
	Count             int
	Gross             decimal.Decimal
	EmployeeContrib   decimal.Decimal
	EmployerContrib   decimal.Decimal
	Tax               decimal.Decimal
	NetToPay          decimal.Decimal
	EmployerCost      decimal.Decimal
	PaidLeaveAcquired decimal.Decimal
	PaidLeaveTaken    decimal.Decimal
}

// Summarize adds up the payslips of a report.
func Summarize(payslips []domain.Payslip) Totals {
	t := Totals{
		Gross:             decimal.Zero,
		EmployeeContrib:   decimal.Zero,
		EmployerContrib:   decimal.Zero,
		Tax:               decimal.Zero,
		NetToPay:          decimal.Zero,
		EmployerCost:      decimal.Zero,
		PaidLeaveAcquired: decimal.Zero,
		PaidLeaveTaken:    decimal.Zero,
	}
	for _, p := range payslips {
		r := p.Result
		t.Count++
		t.Gross = t.Gross.Add(r.GrossSalary)
		t.EmployeeContrib = t.EmployeeContrib.Add(r.TotalEmployeeContributions)
		t.EmployerContrib = t.EmployerContrib.Add(r.TotalEmployerContributions)
		t.Tax = t.Tax.Add(r.TaxAmount)
		t.NetToPay = t.NetToPay.Add(r.NetToPay)
		t.EmployerCost = t.EmployerCost.Add(r.EmployerCost)
		t.PaidLeaveAcquired = t.PaidLeaveAcquired.Add(r.PaidLeaveAcquired)
		t.PaidLeaveTaken = t.PaidLeaveTaken.Add(r.PaidLeaveTaken)
	}
	return t
}
