package domain

import (
	"github.com/shopspring/decimal"
)

// Employee is the read-only view of an employee the payroll core works with.
// Only PaidLeaveBalance is ever written back, and only by the generator.
type Employee struct {
	ID               string          `yaml:"id" json:"id"`
	CompanyID        string          `yaml:"company_id" json:"company_id"`
	Name             string          `yaml:"name" json:"name"`
	BaseSalary       decimal.Decimal `yaml:"base_salary" json:"base_salary"`
	HourlyRate       decimal.Decimal `yaml:"hourly_rate" json:"hourly_rate"`
	MonthlyHours     decimal.Decimal `yaml:"monthly_hours" json:"monthly_hours"`
	PaidLeaveBalance decimal.Decimal `yaml:"paid_leave_balance" json:"paid_leave_balance"`
}

// EmployeeLeaveState is the paid-leave balance carried from one generated
// month to the next. It is owned by a single generation run.
type EmployeeLeaveState struct {
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Advance returns the state after one month of acquisition and consumption.
func (s EmployeeLeaveState) Advance(acquired, taken decimal.Decimal) EmployeeLeaveState {
	return EmployeeLeaveState{CurrentBalance: s.CurrentBalance.Add(acquired).Sub(taken)}
}
