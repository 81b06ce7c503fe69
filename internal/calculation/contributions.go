package calculation

import (
	"fmt"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/decimal"
	sd "github.com/shopspring/decimal"
)

// ContributionEngine applies a rule set to a gross salary.
type ContributionEngine struct {
	Logger Logger
}

// NewContributionEngine creates a contribution engine with a no-op logger
func NewContributionEngine() *ContributionEngine {
	return &ContributionEngine{Logger: NopLogger{}}
}

// ValidateDefinitions checks every definition of a rule set. A single bad row
// rejects the whole set: a partial contribution table is never produced.
func ValidateDefinitions(defs []domain.ContributionDefinition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: rule set has no contribution definitions", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def.Label == "" {
			return fmt.Errorf("%w: definition %d has no label", domain.ErrInvalidInput, i)
		}
		if seen[def.Label] {
			return fmt.Errorf("%w: duplicate definition label %q", domain.ErrInvalidInput, def.Label)
		}
		seen[def.Label] = true
		if !def.Category.Valid() {
			return fmt.Errorf("%w: %q has unknown category %q", domain.ErrInvalidInput, def.Label, def.Category)
		}
		if !def.BaseType.Valid() {
			return fmt.Errorf("%w: %q has unknown base type %q", domain.ErrInvalidInput, def.Label, def.BaseType)
		}
		if !decimal.IsPercent(def.EmployeeRatePercent) {
			return fmt.Errorf("%w: %q employee rate %s%% outside [0,100]", domain.ErrInvalidInput, def.Label, def.EmployeeRatePercent)
		}
		if !decimal.IsPercent(def.EmployerRatePercent) {
			return fmt.Errorf("%w: %q employer rate %s%% outside [0,100]", domain.ErrInvalidInput, def.Label, def.EmployerRatePercent)
		}
	}
	return nil
}

// ComputeContributions produces one line per definition, in rule-set order,
// plus per-category subtotals and grand totals. Zero-rate definitions still
// yield a zero line.
func (ce *ContributionEngine) ComputeContributions(gross sd.Decimal, ruleSet domain.ContributionRuleSet, ceiling sd.Decimal) (domain.ContributionBreakdown, error) {
	if err := ValidateDefinitions(ruleSet.Definitions); err != nil {
		return domain.ContributionBreakdown{}, fmt.Errorf("rule set %s: %w", ruleSet.Version, err)
	}

	out := domain.ContributionBreakdown{
		Lines:                 make([]domain.ContributionLine, 0, len(ruleSet.Definitions)),
		TotalEmployee:         sd.Zero,
		TotalEmployer:         sd.Zero,
		NonDeductibleEmployee: sd.Zero,
	}

	for _, def := range ruleSet.Definitions {
		base, err := ComputeBase(gross, def.BaseType, ceiling)
		if err != nil {
			return domain.ContributionBreakdown{}, fmt.Errorf("%s: %w", def.Label, err)
		}

		// amounts derive from the printed base so every line can be re-checked from it
		base = decimal.RoundCents(base)
		line := domain.ContributionLine{
			Category:            def.Category,
			Label:               def.Label,
			BaseType:            def.BaseType,
			BaseAmount:          base,
			EmployeeRatePercent: def.EmployeeRatePercent,
			EmployerRatePercent: def.EmployerRatePercent,
			EmployeeAmount:      decimal.PercentOf(base, def.EmployeeRatePercent),
			EmployerAmount:      decimal.PercentOf(base, def.EmployerRatePercent),
			NonDeductible:       def.NonDeductible,
		}
		out.Lines = append(out.Lines, line)

		out.TotalEmployee = out.TotalEmployee.Add(line.EmployeeAmount)
		out.TotalEmployer = out.TotalEmployer.Add(line.EmployerAmount)
		if line.NonDeductible {
			out.NonDeductibleEmployee = out.NonDeductibleEmployee.Add(line.EmployeeAmount)
		}

		ce.Logger.Debugf("contribution %s base=%s employee=%s employer=%s",
			line.Label, line.BaseAmount.StringFixed(2), line.EmployeeAmount.StringFixed(2), line.EmployerAmount.StringFixed(2))
	}

	out.Categories = domain.SubtotalByCategory(out.Lines)

	return out, nil
}
