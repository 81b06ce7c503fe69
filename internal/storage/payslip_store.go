package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

// PayslipStore persists payslips and their contribution lines with gorm.
type PayslipStore struct {
	db *gorm.DB
}

// NewPayslipStore creates a store on db.
func NewPayslipStore(db *gorm.DB) *PayslipStore {
	return &PayslipStore{db: db}
}

// Exists reports whether a payslip is on file for the employee and month.
func (s *PayslipStore) Exists(ctx context.Context, employeeID string, periodStart time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&payslipRecord{}).
		Where("employee_id = ? AND period_start = ?", employeeID, dateutil.MonthStart(periodStart)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("%w: checking payslip %s %s: %v", domain.ErrPersistenceFailure, employeeID, dateutil.MonthKey(periodStart), err)
	}
	return n > 0, nil
}

// Create inserts the payslip and its lines in one transaction and returns
// its id.
func (s *PayslipStore) Create(ctx context.Context, p *domain.Payslip) (string, error) {
	if p.ID == "" {
		return "", fmt.Errorf("%w: payslip id is required", domain.ErrInvalidInput)
	}
	rec := toPayslipRecord(p)
	rec.PeriodStart = dateutil.MonthStart(rec.PeriodStart)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s %s", domain.ErrDuplicatePeriod, p.EmployeeID, dateutil.MonthKey(p.PeriodStart))
		}
		return "", fmt.Errorf("%w: creating payslip %s %s: %v", domain.ErrPersistenceFailure, p.EmployeeID, dateutil.MonthKey(p.PeriodStart), err)
	}
	return rec.ID, nil
}

// FindByEmployeeAndYear returns every payslip of the fiscal year, oldest
// first.
func (s *PayslipStore) FindByEmployeeAndYear(ctx context.Context, employeeID string, fiscalYear int) ([]domain.Payslip, error) {
	var recs []payslipRecord
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("employee_id = ? AND fiscal_year = ?", employeeID, fiscalYear).
		Order("period_start asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing payslips %s %d: %v", domain.ErrPersistenceFailure, employeeID, fiscalYear, err)
	}
	out := make([]domain.Payslip, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

// FindByEmployeeAndMonth returns the payslip of one month or
// domain.ErrPayslipNotFound.
func (s *PayslipStore) FindByEmployeeAndMonth(ctx context.Context, employeeID string, month time.Time) (*domain.Payslip, error) {
	var rec payslipRecord
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("employee_id = ? AND period_start = ?", employeeID, dateutil.MonthStart(month)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrPayslipNotFound, employeeID, dateutil.MonthKey(month))
		}
		return nil, fmt.Errorf("%w: loading payslip %s %s: %v", domain.ErrPersistenceFailure, employeeID, dateutil.MonthKey(month), err)
	}
	p := rec.toDomain()
	return &p, nil
}

// FindLatestBefore returns the most recent payslip starting before month,
// or domain.ErrPayslipNotFound.
func (s *PayslipStore) FindLatestBefore(ctx context.Context, employeeID string, month time.Time) (*domain.Payslip, error) {
	var rec payslipRecord
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("employee_id = ? AND period_start < ?", employeeID, dateutil.MonthStart(month)).
		Order("period_start desc").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s before %s", domain.ErrPayslipNotFound, employeeID, dateutil.MonthKey(month))
		}
		return nil, fmt.Errorf("%w: loading last payslip of %s: %v", domain.ErrPersistenceFailure, employeeID, err)
	}
	p := rec.toDomain()
	return &p, nil
}

// Replace overwrites a stored payslip and swaps its lines atomically.
func (s *PayslipStore) Replace(ctx context.Context, p *domain.Payslip) error {
	rec := toPayslipRecord(p)
	lines := rec.Lines
	rec.Lines = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&payslipRecord{}).
			Where("id = ?", rec.ID).
			Select("*").
			Omit("id", "employee_id", "period_start", "fiscal_year", "created_at").
			Updates(rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPayslipNotFound
		}
		if err := tx.Where("payslip_id = ?", rec.ID).Delete(&contributionLineRecord{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrPayslipNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrPayslipNotFound, p.ID)
		}
		return fmt.Errorf("%w: replacing payslip %s: %v", domain.ErrPersistenceFailure, p.ID, err)
	}
	return nil
}
