package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/paie/payslip-engine/internal/calculation"
	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/internal/generation"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Config{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mon(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func samplePayslip(id string, month time.Time, gross string) *domain.Payslip {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return &domain.Payslip{
		ID:                        id,
		EmployeeID:                "emp-1",
		CompanyID:                 "acme",
		PeriodStart:               month,
		PeriodEnd:                 month.AddDate(0, 1, -1),
		RuleSetVersion:            "FR-2025.01",
		SocialSecurityCeiling:     dec("3925"),
		TaxWithholdingRatePercent: dec("12"),
		Result: domain.PayslipResult{
			GrossSalary:                dec(gross),
			TotalEmployeeContributions: dec("473.21"),
			TotalEmployerContributions: dec("637.50"),
			NetImposable:               dec("2267.50"),
			NetBeforeTax:               dec("2026.79"),
			TaxAmount:                  dec("272.10"),
			NetToPay:                   dec("1754.69"),
			EmployerCost:               dec("3137.50"),
			PaidLeaveAcquired:          dec("2.5"),
			PaidLeaveTaken:             dec("0"),
			PaidLeaveRemaining:         dec("7.5"),
			CumulativeGrossYTD:         dec(gross),
			CumulativeNetYTD:           dec("1754.69"),
		},
		Lines: []domain.ContributionLine{
			{Category: domain.CategoryHealth, Label: "Health", BaseType: domain.BaseTotal, BaseAmount: dec("2500"),
				EmployeeRatePercent: dec("0"), EmployerRatePercent: dec("13"), EmployeeAmount: dec("0"), EmployerAmount: dec("325")},
			{Category: domain.CategoryCSGCRDS, Label: "CSG/CRDS", BaseType: domain.BaseCSGCRDS, BaseAmount: dec("2456.25"),
				EmployeeRatePercent: dec("9.8"), EmployerRatePercent: dec("0"), EmployeeAmount: dec("240.71"), EmployerAmount: dec("0"), NonDeductible: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPayslipStore_CreateAndFind(t *testing.T) {
	db := setupDB(t)
	store := NewPayslipStore(db)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "emp-1", mon(2025, time.March))
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := store.Create(ctx, samplePayslip("ps-1", mon(2025, time.March), "2500"))
	require.NoError(t, err)
	assert.Equal(t, "ps-1", id)

	exists, err = store.Exists(ctx, "emp-1", time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, exists, "any day of the month matches")

	got, err := store.FindByEmployeeAndMonth(ctx, "emp-1", mon(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, "ps-1", got.ID)
	assert.True(t, got.PeriodStart.Equal(mon(2025, time.March)))
	assert.Equal(t, "FR-2025.01", got.RuleSetVersion)
	assert.True(t, got.Result.NetToPay.Equal(dec("1754.69")), "got %s", got.Result.NetToPay)
	assert.True(t, got.Result.PaidLeaveRemaining.Equal(dec("7.5")))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Health", got.Lines[0].Label)
	assert.True(t, got.Lines[1].NonDeductible)
	assert.True(t, got.Lines[1].EmployeeAmount.Equal(dec("240.71")))
}

func TestPayslipStore_DuplicatePeriod(t *testing.T) {
	db := setupDB(t)
	store := NewPayslipStore(db)
	ctx := context.Background()

	_, err := store.Create(ctx, samplePayslip("ps-1", mon(2025, time.March), "2500"))
	require.NoError(t, err)

	_, err = store.Create(ctx, samplePayslip("ps-2", mon(2025, time.March), "2600"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicatePeriod), "got %v", err)

	var n int64
	require.NoError(t, db.Model(&payslipRecord{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.Model(&contributionLineRecord{}).Count(&n).Error)
	assert.Equal(t, int64(2), n, "the losing insert left no lines behind")
}

func TestPayslipStore_FindByEmployeeAndYear(t *testing.T) {
	db := setupDB(t)
	store := NewPayslipStore(db)
	ctx := context.Background()

	for i, m := range []time.Time{mon(2025, time.March), mon(2024, time.December), mon(2025, time.January)} {
		_, err := store.Create(ctx, samplePayslip(fmt.Sprintf("ps-%d", i), m, "2500"))
		require.NoError(t, err)
	}
	other := samplePayslip("ps-other", mon(2025, time.February), "9000")
	other.EmployeeID = "emp-2"
	_, err := store.Create(ctx, other)
	require.NoError(t, err)

	got, err := store.FindByEmployeeAndYear(ctx, "emp-1", 2025)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].PeriodStart.Equal(mon(2025, time.January)), "oldest first")
	assert.True(t, got[1].PeriodStart.Equal(mon(2025, time.March)))
	assert.Len(t, got[0].Lines, 2)

	none, err := store.FindByEmployeeAndYear(ctx, "emp-1", 2023)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPayslipStore_FindLatestBefore(t *testing.T) {
	db := setupDB(t)
	store := NewPayslipStore(db)
	ctx := context.Background()

	_, err := store.FindLatestBefore(ctx, "emp-1", mon(2025, time.March))
	assert.ErrorIs(t, err, domain.ErrPayslipNotFound)

	for i, m := range []time.Month{time.January, time.February, time.April} {
		_, err := store.Create(ctx, samplePayslip(fmt.Sprintf("ps-%d", i), mon(2025, m), "2500.00"))
		require.NoError(t, err)
	}

	got, err := store.FindLatestBefore(ctx, "emp-1", mon(2025, time.April))
	require.NoError(t, err)
	assert.Equal(t, "2025-02", got.PeriodStart.Format("2006-01"))
	assert.Len(t, got.Lines, 2)

	got, err = store.FindLatestBefore(ctx, "emp-1", mon(2026, time.January))
	require.NoError(t, err)
	assert.Equal(t, "2025-04", got.PeriodStart.Format("2006-01"))
}

func TestPayslipStore_Replace(t *testing.T) {
	db := setupDB(t)
	store := NewPayslipStore(db)
	ctx := context.Background()

	original := samplePayslip("ps-1", mon(2025, time.March), "2500")
	_, err := store.Create(ctx, original)
	require.NoError(t, err)

	updated := samplePayslip("ps-1", mon(2025, time.March), "3000")
	updated.RuleSetVersion = "FR-2025.02"
	updated.Lines = updated.Lines[:1]
	require.NoError(t, store.Replace(ctx, updated))

	got, err := store.FindByEmployeeAndMonth(ctx, "emp-1", mon(2025, time.March))
	require.NoError(t, err)
	assert.True(t, got.Result.GrossSalary.Equal(dec("3000")))
	assert.Equal(t, "FR-2025.02", got.RuleSetVersion)
	assert.Len(t, got.Lines, 1)

	missing := samplePayslip("ps-404", mon(2025, time.April), "2500")
	err = store.Replace(ctx, missing)
	assert.True(t, errors.Is(err, domain.ErrPayslipNotFound))

	_, err = store.FindByEmployeeAndMonth(ctx, "emp-1", mon(2025, time.April))
	assert.True(t, errors.Is(err, domain.ErrPayslipNotFound))
}

func TestEmployeeStore(t *testing.T) {
	db := setupDB(t)
	store := NewEmployeeStore(db)
	ctx := context.Background()

	_, err := store.Find(ctx, "emp-1")
	assert.True(t, errors.Is(err, domain.ErrEmployeeNotFound))

	emp := domain.Employee{
		ID: "emp-1", CompanyID: "acme", Name: "Camille Martin",
		BaseSalary: dec("2500"), HourlyRate: dec("16.50"), MonthlyHours: dec("151.67"), PaidLeaveBalance: dec("5"),
	}
	require.NoError(t, store.Upsert(ctx, emp))

	emp.BaseSalary = dec("2600")
	require.NoError(t, store.Upsert(ctx, emp))

	got, err := store.Find(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.BaseSalary.Equal(dec("2600")))
	assert.True(t, got.MonthlyHours.Equal(dec("151.67")))

	require.NoError(t, store.UpdateLeaveBalance(ctx, "emp-1", dec("12.5")))
	got, err = store.Find(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.PaidLeaveBalance.Equal(dec("12.5")))

	err = store.UpdateLeaveBalance(ctx, "ghost", dec("1"))
	assert.True(t, errors.Is(err, domain.ErrEmployeeNotFound))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.True(t, errors.Is(store.Upsert(ctx, domain.Employee{}), domain.ErrInvalidInput))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: payslips.employee_id, payslips.period_start (2067)"), true},
		{"other", errors.New("database is locked"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestDialect(t *testing.T) {
	d, err := Dialect(Config{Driver: "postgres", DSN: "host=localhost dbname=paie"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialect(Config{})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialect(Config{Driver: "oracle"})
	assert.Error(t, err)
}

// TestGeneratorOnSQLite runs the month loop against the real stores.
func TestGeneratorOnSQLite(t *testing.T) {
	db := setupDB(t)
	payslips := NewPayslipStore(db)
	employees := NewEmployeeStore(db)
	ctx := context.Background()

	require.NoError(t, employees.Upsert(ctx, domain.Employee{
		ID: "emp-1", CompanyID: "acme", Name: "Camille Martin",
		BaseSalary: dec("2500"), PaidLeaveBalance: dec("5.0"),
	}))

	gen := generation.NewPeriodGenerator(payslips, employees, calculation.DefaultRuleBook(), generation.DefaultSettings())
	req := domain.GenerationRequest{
		EmployeeID:       "emp-1",
		PeriodStart:      mon(2025, time.January),
		PeriodEnd:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		SalaryMode:       domain.SalaryModeFixed,
		IncludePaidLeave: true,
	}

	report, err := gen.Generate(ctx, req)
	require.NoError(t, err)
	assert.Len(t, report.Generated, 3)

	emp, err := employees.Find(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, emp.PaidLeaveBalance.Equal(dec("12.5")), "got %s", emp.PaidLeaveBalance)

	march, err := payslips.FindByEmployeeAndMonth(ctx, "emp-1", mon(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, "7500.00", march.Result.CumulativeGrossYTD.StringFixed(2))
	assert.Len(t, march.Lines, len(calculation.RuleSet2025().Definitions))

	again, err := gen.Generate(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, again.Generated)
	assert.Len(t, again.Skipped, 3)
}
