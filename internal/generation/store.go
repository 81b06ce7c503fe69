package generation

import (
	"context"
	"time"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// PayslipStore is the persistence collaborator of the generator. Create must
// fail with an error wrapping domain.ErrDuplicatePeriod when a payslip
// already exists for (employee, period start).
type PayslipStore interface {
	Exists(ctx context.Context, employeeID string, periodStart time.Time) (bool, error)
	Create(ctx context.Context, p *domain.Payslip) (string, error)
	FindByEmployeeAndYear(ctx context.Context, employeeID string, fiscalYear int) ([]domain.Payslip, error)
	// FindByEmployeeAndMonth returns domain.ErrPayslipNotFound when absent.
	FindByEmployeeAndMonth(ctx context.Context, employeeID string, month time.Time) (*domain.Payslip, error)
	// FindLatestBefore returns the most recent payslip starting before month,
	// or domain.ErrPayslipNotFound.
	FindLatestBefore(ctx context.Context, employeeID string, month time.Time) (*domain.Payslip, error)
	Replace(ctx context.Context, p *domain.Payslip) error
}

// EmployeeDirectory gives read access to employees. The only write is the
// paid-leave balance computed by the generator.
type EmployeeDirectory interface {
	Find(ctx context.Context, employeeID string) (*domain.Employee, error)
	UpdateLeaveBalance(ctx context.Context, employeeID string, balance decimal.Decimal) error
}
