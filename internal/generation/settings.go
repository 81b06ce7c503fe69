package generation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/calculation"
	"github.com/paie/payslip-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxMonthsPerRun is the hard upper bound on months in one request.
const MaxMonthsPerRun = 24

// DefaultTaxWithholdingRatePercent is the flat withholding rate applied when
// none is configured.
var DefaultTaxWithholdingRatePercent = decimal.NewFromInt(12)

// Settings are the run-wide parameters of a generator.
type Settings struct {
	TaxWithholdingRatePercent decimal.Decimal
	PaidLeaveDaysPerMonth     decimal.Decimal
	// MaxMonths may lower the per-run limit; zero means MaxMonthsPerRun.
	MaxMonths int
	// SocialSecurityCeiling overrides the ceiling of every rule set when set.
	SocialSecurityCeiling *decimal.Decimal
}

// DefaultSettings returns 12% withholding, 2.5 days of leave a month and the
// full 24-month window.
func DefaultSettings() Settings {
	return Settings{
		TaxWithholdingRatePercent: DefaultTaxWithholdingRatePercent,
		PaidLeaveDaysPerMonth:     calculation.DefaultPaidLeaveDaysPerMonth,
		MaxMonths:                 MaxMonthsPerRun,
	}
}

// Validate checks settings bounds.
func (s Settings) Validate() error {
	if s.TaxWithholdingRatePercent.IsNegative() || s.TaxWithholdingRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: tax withholding rate %s%% outside [0,100]", domain.ErrInvalidInput, s.TaxWithholdingRatePercent)
	}
	if s.PaidLeaveDaysPerMonth.IsNegative() {
		return fmt.Errorf("%w: paid leave accrual %s is negative", domain.ErrInvalidInput, s.PaidLeaveDaysPerMonth)
	}
	if s.MaxMonths < 0 || s.MaxMonths > MaxMonthsPerRun {
		return fmt.Errorf("%w: max months %d outside [1,%d]", domain.ErrInvalidInput, s.MaxMonths, MaxMonthsPerRun)
	}
	if s.SocialSecurityCeiling != nil && !s.SocialSecurityCeiling.IsPositive() {
		return fmt.Errorf("%w: social security ceiling override must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func (s Settings) monthLimit() int {
	if s.MaxMonths <= 0 || s.MaxMonths > MaxMonthsPerRun {
		return MaxMonthsPerRun
	}
	return s.MaxMonths
}
