package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paie/payslip-engine/internal/domain"
)

// EmployeeStore is the gorm-backed employee directory.
type EmployeeStore struct {
	db *gorm.DB
}

// NewEmployeeStore creates a store on db.
func NewEmployeeStore(db *gorm.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

// Find returns one employee or domain.ErrEmployeeNotFound.
func (s *EmployeeStore) Find(ctx context.Context, employeeID string) (*domain.Employee, error) {
	var rec employeeRecord
	err := s.db.WithContext(ctx).Where("id = ?", employeeID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmployeeNotFound, employeeID)
		}
		return nil, fmt.Errorf("%w: loading employee %s: %v", domain.ErrPersistenceFailure, employeeID, err)
	}
	return rec.toDomain(), nil
}

// List returns every employee ordered by id.
func (s *EmployeeStore) List(ctx context.Context) ([]domain.Employee, error) {
	var recs []employeeRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("%w: listing employees: %v", domain.ErrPersistenceFailure, err)
	}
	out := make([]domain.Employee, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

// Upsert creates the employee or overwrites every field of an existing one.
func (s *EmployeeStore) Upsert(ctx context.Context, e domain.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("%w: employee id is required", domain.ErrInvalidInput)
	}
	rec := toEmployeeRecord(e)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_id", "name", "base_salary", "hourly_rate", "monthly_hours", "paid_leave_balance", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("%w: saving employee %s: %v", domain.ErrPersistenceFailure, e.ID, err)
	}
	return nil
}

// UpdateLeaveBalance writes the paid-leave balance, the only employee field
// the payroll core owns.
func (s *EmployeeStore) UpdateLeaveBalance(ctx context.Context, employeeID string, balance decimal.Decimal) error {
	res := s.db.WithContext(ctx).
		Model(&employeeRecord{}).
		Where("id = ?", employeeID).
		Update("paid_leave_balance", balance)
	if res.Error != nil {
		return fmt.Errorf("%w: updating leave balance of %s: %v", domain.ErrPersistenceFailure, employeeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEmployeeNotFound, employeeID)
	}
	return nil
}
