package calculation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/decimal"
	sd "github.com/shopspring/decimal"
)

// CONTRIBUTION BASES:
//
//   total       -> gross salary
//   plafond     -> min(gross, PMSS)
//   trancheA    -> min(gross, PMSS)
//   trancheB    -> max(0, min(gross, 8 x PMSS) - PMSS)
//   csgCrdsBase -> gross x 98.25% (1.75% professional-expense abatement)
//
// Bases are not rounded; only line amounts are.

var (
	trancheBMultiplier = sd.NewFromInt(8)
	csgCrdsBaseRatio   = sd.RequireFromString("0.9825")
)

// ComputeBase returns the contributable base for a gross salary. A negative
// gross or a non-positive ceiling is a caller error and is never clamped.
func ComputeBase(gross sd.Decimal, baseType domain.BaseType, ceiling sd.Decimal) (sd.Decimal, error) {
	if gross.IsNegative() {
		return sd.Zero, fmt.Errorf("%w: gross salary %s is negative", domain.ErrInvalidInput, gross)
	}
	if !ceiling.IsPositive() {
		return sd.Zero, fmt.Errorf("%w: social security ceiling must be positive, got %s", domain.ErrInvalidInput, ceiling)
	}

	switch baseType {
	case domain.BaseTotal:
		return gross, nil
	case domain.BasePlafond, domain.BaseTrancheA:
		return decimal.Min(gross, ceiling), nil
	case domain.BaseTrancheB:
		upper := decimal.Min(gross, ceiling.Mul(trancheBMultiplier))
		return decimal.Max(sd.Zero, upper.Sub(ceiling)), nil
	case domain.BaseCSGCRDS:
		return gross.Mul(csgCrdsBaseRatio), nil
	default:
		return sd.Zero, fmt.Errorf("%w: unknown base type %q", domain.ErrInvalidInput, baseType)
	}
}
