package storage

import (
	"time"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// payslipRecord is the payslips table. The unique index on
// (employee_id, period_start) is what keeps concurrent runs from writing two
// payslips for one month.
type payslipRecord struct {
	ID                        string          `gorm:"primaryKey;size:36"`
	EmployeeID                string          `gorm:"size:64;not null;uniqueIndex:uq_payslip_employee_period,priority:1;index:idx_payslip_employee_year,priority:1"`
	CompanyID                 string          `gorm:"size:64"`
	PeriodStart               time.Time       `gorm:"not null;uniqueIndex:uq_payslip_employee_period,priority:2"`
	PeriodEnd                 time.Time       `gorm:"not null"`
	FiscalYear                int             `gorm:"not null;index:idx_payslip_employee_year,priority:2"`
	RuleSetVersion            string          `gorm:"size:32;not null"`
	SocialSecurityCeiling     decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxWithholdingRatePercent decimal.Decimal `gorm:"type:decimal(7,4)"`

	GrossSalary                decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalEmployeeContributions decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalEmployerContributions decimal.Decimal `gorm:"type:decimal(12,2)"`
	NetImposable               decimal.Decimal `gorm:"type:decimal(12,2)"`
	NetBeforeTax               decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxAmount                  decimal.Decimal `gorm:"type:decimal(12,2)"`
	NetToPay                   decimal.Decimal `gorm:"type:decimal(12,2)"`
	EmployerCost               decimal.Decimal `gorm:"type:decimal(12,2)"`
	PaidLeaveAcquired          decimal.Decimal `gorm:"type:decimal(7,2)"`
	PaidLeaveTaken             decimal.Decimal `gorm:"type:decimal(7,2)"`
	PaidLeaveRemaining         decimal.Decimal `gorm:"type:decimal(7,2)"`
	CumulativeGrossYTD         decimal.Decimal `gorm:"column:cumulative_gross_ytd;type:decimal(14,2)"`
	CumulativeNetYTD           decimal.Decimal `gorm:"column:cumulative_net_ytd;type:decimal(14,2)"`

	Lines     []contributionLineRecord `gorm:"foreignKey:PayslipID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (payslipRecord) TableName() string { return "payslips" }

type contributionLineRecord struct {
	ID                  uint            `gorm:"primaryKey"`
	PayslipID           string          `gorm:"size:36;not null;index"`
	Position            int             `gorm:"not null"`
	Category            string          `gorm:"size:32;not null"`
	Label               string          `gorm:"size:128;not null"`
	BaseType            string          `gorm:"size:16;not null"`
	BaseAmount          decimal.Decimal `gorm:"type:decimal(12,2)"`
	EmployeeRatePercent decimal.Decimal `gorm:"type:decimal(7,4)"`
	EmployerRatePercent decimal.Decimal `gorm:"type:decimal(7,4)"`
	EmployeeAmount      decimal.Decimal `gorm:"type:decimal(12,2)"`
	EmployerAmount      decimal.Decimal `gorm:"type:decimal(12,2)"`
	NonDeductible       bool
}

func (contributionLineRecord) TableName() string { return "contribution_lines" }

type employeeRecord struct {
	ID               string          `gorm:"primaryKey;size:64"`
	CompanyID        string          `gorm:"size:64;index"`
	Name             string          `gorm:"size:255"`
	BaseSalary       decimal.Decimal `gorm:"type:decimal(12,2)"`
	HourlyRate       decimal.Decimal `gorm:"type:decimal(10,4)"`
	MonthlyHours     decimal.Decimal `gorm:"type:decimal(7,2)"`
	PaidLeaveBalance decimal.Decimal `gorm:"type:decimal(7,2)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (employeeRecord) TableName() string { return "employees" }

func toPayslipRecord(p *domain.Payslip) *payslipRecord {
	r := p.Result
	rec := &payslipRecord{
		ID:                         p.ID,
		EmployeeID:                 p.EmployeeID,
		CompanyID:                  p.CompanyID,
		PeriodStart:                p.PeriodStart.UTC(),
		PeriodEnd:                  p.PeriodEnd.UTC(),
		FiscalYear:                 p.FiscalYear(),
		RuleSetVersion:             p.RuleSetVersion,
		SocialSecurityCeiling:      p.SocialSecurityCeiling,
		TaxWithholdingRatePercent:  p.TaxWithholdingRatePercent,
		GrossSalary:                r.GrossSalary,
		TotalEmployeeContributions: r.TotalEmployeeContributions,
		TotalEmployerContributions: r.TotalEmployerContributions,
		NetImposable:               r.NetImposable,
		NetBeforeTax:               r.NetBeforeTax,
		TaxAmount:                  r.TaxAmount,
		NetToPay:                   r.NetToPay,
		EmployerCost:               r.EmployerCost,
		PaidLeaveAcquired:          r.PaidLeaveAcquired,
		PaidLeaveTaken:             r.PaidLeaveTaken,
		PaidLeaveRemaining:         r.PaidLeaveRemaining,
		CumulativeGrossYTD:         r.CumulativeGrossYTD,
		CumulativeNetYTD:           r.CumulativeNetYTD,
		Lines:                      toLineRecords(p.ID, p.Lines),
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
	return rec
}

func toLineRecords(payslipID string, lines []domain.ContributionLine) []contributionLineRecord {
	out := make([]contributionLineRecord, 0, len(lines))
	for i, l := range lines {
		out = append(out, contributionLineRecord{
			PayslipID:           payslipID,
			Position:            i,
			Category:            string(l.Category),
			Label:               l.Label,
			BaseType:            string(l.BaseType),
			BaseAmount:          l.BaseAmount,
			EmployeeRatePercent: l.EmployeeRatePercent,
			EmployerRatePercent: l.EmployerRatePercent,
			EmployeeAmount:      l.EmployeeAmount,
			EmployerAmount:      l.EmployerAmount,
			NonDeductible:       l.NonDeductible,
		})
	}
	return out
}

func (rec *payslipRecord) toDomain() domain.Payslip {
	p := domain.Payslip{
		ID:                        rec.ID,
		EmployeeID:                rec.EmployeeID,
		CompanyID:                 rec.CompanyID,
		PeriodStart:               rec.PeriodStart.UTC(),
		PeriodEnd:                 rec.PeriodEnd.UTC(),
		RuleSetVersion:            rec.RuleSetVersion,
		SocialSecurityCeiling:     rec.SocialSecurityCeiling,
		TaxWithholdingRatePercent: rec.TaxWithholdingRatePercent,
		Result: domain.PayslipResult{
			GrossSalary:                rec.GrossSalary,
			TotalEmployeeContributions: rec.TotalEmployeeContributions,
			TotalEmployerContributions: rec.TotalEmployerContributions,
			NetImposable:               rec.NetImposable,
			NetBeforeTax:               rec.NetBeforeTax,
			TaxAmount:                  rec.TaxAmount,
			NetToPay:                   rec.NetToPay,
			EmployerCost:               rec.EmployerCost,
			PaidLeaveAcquired:          rec.PaidLeaveAcquired,
			PaidLeaveTaken:             rec.PaidLeaveTaken,
			PaidLeaveRemaining:         rec.PaidLeaveRemaining,
			CumulativeGrossYTD:         rec.CumulativeGrossYTD,
			CumulativeNetYTD:           rec.CumulativeNetYTD,
		},
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	for _, l := range rec.Lines {
		p.Lines = append(p.Lines, domain.ContributionLine{
			Category:            domain.Category(l.Category),
			Label:               l.Label,
			BaseType:            domain.BaseType(l.BaseType),
			BaseAmount:          l.BaseAmount,
			EmployeeRatePercent: l.EmployeeRatePercent,
			EmployerRatePercent: l.EmployerRatePercent,
			EmployeeAmount:      l.EmployeeAmount,
			EmployerAmount:      l.EmployerAmount,
			NonDeductible:       l.NonDeductible,
		})
	}
	return p
}

func toEmployeeRecord(e domain.Employee) *employeeRecord {
	return &employeeRecord{
		ID:               e.ID,
		CompanyID:        e.CompanyID,
		Name:             e.Name,
		BaseSalary:       e.BaseSalary,
		HourlyRate:       e.HourlyRate,
		MonthlyHours:     e.MonthlyHours,
		PaidLeaveBalance: e.PaidLeaveBalance,
	}
}

func (rec *employeeRecord) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:               rec.ID,
		CompanyID:        rec.CompanyID,
		Name:             rec.Name,
		BaseSalary:       rec.BaseSalary,
		HourlyRate:       rec.HourlyRate,
		MonthlyHours:     rec.MonthlyHours,
		PaidLeaveBalance: rec.PaidLeaveBalance,
	}
}
