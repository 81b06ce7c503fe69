package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryMode selects how the monthly gross salary is obtained.
type SalaryMode string

const (
	SalaryModeFixed  SalaryMode = "fixed"
	SalaryModeHourly SalaryMode = "hourly"
)

// GenerationRequest asks for payslips over a range of months.
type GenerationRequest struct {
	EmployeeID  string    `json:"employee_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	SalaryMode SalaryMode `json:"salary_mode"`
	// Optional overrides; when nil the employee's on-file values are used.
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	Hours       *decimal.Decimal `json:"hours,omitempty"`

	IncludePaidLeave bool `json:"include_paid_leave"`
	// LeaveTaken holds days of paid leave taken, keyed by month ("2025-03").
	LeaveTaken map[string]decimal.Decimal `json:"leave_taken,omitempty"`
}

// MonthState tracks one (employee, month) pair through a generation run.
type MonthState string

const (
	MonthPending   MonthState = "pending"
	MonthComputed  MonthState = "computed"
	MonthPersisted MonthState = "persisted"
	MonthSkipped   MonthState = "skipped"
	MonthFailed    MonthState = "failed"
)

// MonthOutcome is the final state of one month of a run.
type MonthOutcome struct {
	Month     time.Time  `json:"month"`
	State     MonthState `json:"state"`
	PayslipID string     `json:"payslip_id,omitempty"`
	Payslip   *Payslip   `json:"payslip,omitempty"`
	Err       error      `json:"-"`
	Error     string     `json:"error,omitempty"`
}

// GenerationReport is the partial-success result of a run.
type GenerationReport struct {
	EmployeeID          string          `json:"employee_id"`
	PeriodStart         time.Time       `json:"period_start"`
	PeriodEnd           time.Time       `json:"period_end"`
	Generated           []MonthOutcome  `json:"generated"`
	Skipped             []MonthOutcome  `json:"skipped"`
	Failed              []MonthOutcome  `json:"failed"`
	Aborted             bool            `json:"aborted"`
	OpeningLeaveBalance decimal.Decimal `json:"opening_leave_balance"`
	ClosingLeaveBalance decimal.Decimal `json:"closing_leave_balance"`
}

// Record files an outcome under the list matching its state.
func (r *GenerationReport) Record(o MonthOutcome) {
	if o.Err != nil && o.Error == "" {
		o.Error = o.Err.Error()
	}
	switch o.State {
	case MonthPersisted:
		r.Generated = append(r.Generated, o)
	case MonthSkipped:
		r.Skipped = append(r.Skipped, o)
	default:
		r.Failed = append(r.Failed, o)
	}
}

// Processed returns how many months reached a final state.
func (r *GenerationReport) Processed() int {
	return len(r.Generated) + len(r.Skipped) + len(r.Failed)
}
