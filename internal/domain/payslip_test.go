package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() PayrollContext {
	return PayrollContext{
		GrossSalary:               decimal.NewFromInt(2500),
		PeriodStart:               time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:                 time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		SocialSecurityCeiling:     decimal.NewFromInt(3925),
		TaxWithholdingRatePercent: decimal.NewFromInt(12),
	}
}

func TestPayrollContext_Validate(t *testing.T) {
	require.NoError(t, validContext().Validate())

	tests := []struct {
		name   string
		mutate func(*PayrollContext)
	}{
		{"negative gross", func(pc *PayrollContext) { pc.GrossSalary = decimal.NewFromInt(-1) }},
		{"zero ceiling", func(pc *PayrollContext) { pc.SocialSecurityCeiling = decimal.Zero }},
		{"negative ceiling", func(pc *PayrollContext) { pc.SocialSecurityCeiling = decimal.NewFromInt(-3864) }},
		{"tax rate above 100", func(pc *PayrollContext) { pc.TaxWithholdingRatePercent = decimal.NewFromInt(101) }},
		{"negative tax rate", func(pc *PayrollContext) { pc.TaxWithholdingRatePercent = decimal.NewFromInt(-1) }},
		{"end before start", func(pc *PayrollContext) { pc.PeriodEnd = pc.PeriodStart.AddDate(0, 0, -1) }},
		{"spans two months", func(pc *PayrollContext) { pc.PeriodEnd = time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC) }},
		{"not month aligned", func(pc *PayrollContext) { pc.PeriodStart = time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := validContext()
			tt.mutate(&pc)
			err := pc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestPayrollContext_ZeroGrossIsValid(t *testing.T) {
	pc := validContext()
	pc.GrossSalary = decimal.Zero
	assert.NoError(t, pc.Validate())
}

func TestEmployeeLeaveState_Advance(t *testing.T) {
	state := EmployeeLeaveState{CurrentBalance: decimal.NewFromInt(5)}
	next := state.Advance(decimal.RequireFromString("2.5"), decimal.NewFromInt(1))
	assert.Equal(t, "6.5", next.CurrentBalance.String())
	assert.Equal(t, "5", state.CurrentBalance.String(), "Advance must not mutate the receiver")
}

func TestPayslipResult_OpeningLeaveBalance(t *testing.T) {
	r := PayslipResult{
		PaidLeaveAcquired:  decimal.RequireFromString("2.5"),
		PaidLeaveTaken:     decimal.NewFromInt(2),
		PaidLeaveRemaining: decimal.RequireFromString("10.5"),
	}
	assert.Equal(t, "10", r.OpeningLeaveBalance().String())
}

func TestGenerationReport_Record(t *testing.T) {
	var r GenerationReport
	r.Record(MonthOutcome{State: MonthPersisted})
	r.Record(MonthOutcome{State: MonthSkipped})
	r.Record(MonthOutcome{State: MonthFailed, Err: errors.New("disk full")})

	assert.Len(t, r.Generated, 1)
	assert.Len(t, r.Skipped, 1)
	require.Len(t, r.Failed, 1)
	assert.Equal(t, "disk full", r.Failed[0].Error)
	assert.Equal(t, 3, r.Processed())
}

func TestCategoryAndBaseTypeValidity(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("pension").Valid())
	assert.True(t, BaseTrancheB.Valid())
	assert.False(t, BaseType("trancheC").Valid())
}
