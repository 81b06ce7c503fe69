package calculation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultPaidLeaveDaysPerMonth is the statutory 2.5 working days (30 per year).
var DefaultPaidLeaveDaysPerMonth = decimal.RequireFromString("2.5")

// LeaveAccrual describes paid-leave acquisition for one generation run.
type LeaveAccrual struct {
	DaysPerMonth decimal.Decimal
	Enabled      bool
}

// Acquired returns the days earned in one month. Zero when disabled.
func (la LeaveAccrual) Acquired() decimal.Decimal {
	if !la.Enabled {
		return decimal.Zero
	}
	return la.DaysPerMonth
}

// LeaveMovement is one month of leave bookkeeping.
type LeaveMovement struct {
	Acquired decimal.Decimal
	Taken    decimal.Decimal
	Opening  decimal.Decimal
	Closing  decimal.Decimal
}

// Apply computes the month's movement from the carried state. The caller
// commits movement.Closing into its state only once the month is persisted.
func (la LeaveAccrual) Apply(state domain.EmployeeLeaveState, taken decimal.Decimal) (LeaveMovement, error) {
	if taken.IsNegative() {
		return LeaveMovement{}, fmt.Errorf("%w: leave taken %s is negative", domain.ErrInvalidInput, taken)
	}
	acquired := la.Acquired()
	next := state.Advance(acquired, taken)
	return LeaveMovement{
		Acquired: acquired,
		Taken:    taken,
		Opening:  state.CurrentBalance,
		Closing:  next.CurrentBalance,
	}, nil
}
