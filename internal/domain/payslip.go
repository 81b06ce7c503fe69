package domain

import (
	"fmt"
	"time"

	"github.com/paie/payslip-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// PayrollContext is the caller-supplied input of a single month computation.
type PayrollContext struct {
	GrossSalary               decimal.Decimal `json:"gross_salary"`
	PeriodStart               time.Time       `json:"period_start"`
	PeriodEnd                 time.Time       `json:"period_end"`
	SocialSecurityCeiling     decimal.Decimal `json:"social_security_ceiling"`
	TaxWithholdingRatePercent decimal.Decimal `json:"tax_withholding_rate_percent"`
}

// Validate rejects a context that cannot produce a payslip.
func (pc PayrollContext) Validate() error {
	if pc.GrossSalary.IsNegative() {
		return fmt.Errorf("%w: gross salary %s is negative", ErrInvalidInput, pc.GrossSalary)
	}
	if !pc.SocialSecurityCeiling.IsPositive() {
		return fmt.Errorf("%w: social security ceiling must be positive, got %s", ErrInvalidInput, pc.SocialSecurityCeiling)
	}
	if pc.TaxWithholdingRatePercent.IsNegative() || pc.TaxWithholdingRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: tax withholding rate %s%% outside [0,100]", ErrInvalidInput, pc.TaxWithholdingRatePercent)
	}
	if pc.PeriodEnd.Before(pc.PeriodStart) {
		return fmt.Errorf("%w: period end %s before period start %s", ErrInvalidInput,
			pc.PeriodEnd.Format("2006-01-02"), pc.PeriodStart.Format("2006-01-02"))
	}
	if !dateutil.IsMonthAligned(pc.PeriodStart, pc.PeriodEnd) {
		return fmt.Errorf("%w: period %s..%s is not a single calendar month", ErrInvalidInput,
			pc.PeriodStart.Format("2006-01-02"), pc.PeriodEnd.Format("2006-01-02"))
	}
	return nil
}

// NetSalaryResult holds the amounts derived from gross salary and totals.
type NetSalaryResult struct {
	NetImposable decimal.Decimal `json:"net_imposable"`
	NetBeforeTax decimal.Decimal `json:"net_before_tax"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	NetToPay     decimal.Decimal `json:"net_to_pay"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
}

// PayslipResult is the computed aggregate of one month.
type PayslipResult struct {
	GrossSalary                decimal.Decimal `json:"gross_salary"`
	TotalEmployeeContributions decimal.Decimal `json:"total_employee_contributions"`
	TotalEmployerContributions decimal.Decimal `json:"total_employer_contributions"`
	NetImposable               decimal.Decimal `json:"net_imposable"`
	NetBeforeTax               decimal.Decimal `json:"net_before_tax"`
	TaxAmount                  decimal.Decimal `json:"tax_amount"`
	NetToPay                   decimal.Decimal `json:"net_to_pay"`
	EmployerCost               decimal.Decimal `json:"employer_cost"`

	PaidLeaveAcquired  decimal.Decimal `json:"paid_leave_acquired"`
	PaidLeaveTaken     decimal.Decimal `json:"paid_leave_taken"`
	PaidLeaveRemaining decimal.Decimal `json:"paid_leave_remaining"`

	CumulativeGrossYTD decimal.Decimal `json:"cumulative_gross_ytd"`
	CumulativeNetYTD   decimal.Decimal `json:"cumulative_net_ytd"`
}

// ApplyNet copies the net figures into the result.
func (r *PayslipResult) ApplyNet(n NetSalaryResult) {
	r.NetImposable = n.NetImposable
	r.NetBeforeTax = n.NetBeforeTax
	r.TaxAmount = n.TaxAmount
	r.NetToPay = n.NetToPay
	r.EmployerCost = n.EmployerCost
}

// OpeningLeaveBalance is the balance before this month's movements.
func (r PayslipResult) OpeningLeaveBalance() decimal.Decimal {
	return r.PaidLeaveRemaining.Sub(r.PaidLeaveAcquired).Add(r.PaidLeaveTaken)
}

// Payslip is the persisted record for one employee and one calendar month.
type Payslip struct {
	ID                        string             `json:"id"`
	EmployeeID                string             `json:"employee_id"`
	CompanyID                 string             `json:"company_id"`
	PeriodStart               time.Time          `json:"period_start"`
	PeriodEnd                 time.Time          `json:"period_end"`
	RuleSetVersion            string             `json:"rule_set_version"`
	SocialSecurityCeiling     decimal.Decimal    `json:"social_security_ceiling"`
	TaxWithholdingRatePercent decimal.Decimal    `json:"tax_withholding_rate_percent"`
	Result                    PayslipResult      `json:"result"`
	Lines                     []ContributionLine `json:"lines"`
	CreatedAt                 time.Time          `json:"created_at"`
	UpdatedAt                 time.Time          `json:"updated_at"`
}

// FiscalYear returns the fiscal year the payslip belongs to.
func (p Payslip) FiscalYear() int {
	return dateutil.FiscalYear(p.PeriodStart)
}
