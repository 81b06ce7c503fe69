package calculation

import (
	"fmt"
	"sort"
	"time"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// RATE TABLE ASSUMPTIONS:
//
// 1. General regime, non-executive employee, company with 11 to 49 staff.
// 2. Allocations familiales and maladie at their full employer rates; the
//    reduced rates for low salaries are not modelled.
// 3. AT/MP uses a representative collective rate; real rates are notified
//    per establishment and belong in a rule-set override.
// 4. Assurance chômage is applied on total gross (its 4 x PMSS cap is never
//    reached by the salaries this tool targets).

// RuleBook holds versioned rule sets ordered by effective date.
type RuleBook struct {
	sets []domain.ContributionRuleSet
}

// NewRuleBook validates and orders rule sets. Versions and effective months
// must be unique.
func NewRuleBook(sets ...domain.ContributionRuleSet) (*RuleBook, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: rule book needs at least one rule set", domain.ErrInvalidInput)
	}
	versions := make(map[string]bool, len(sets))
	months := make(map[string]string, len(sets))
	ordered := make([]domain.ContributionRuleSet, 0, len(sets))
	for _, rs := range sets {
		if err := ValidateRuleSet(rs); err != nil {
			return nil, err
		}
		if versions[rs.Version] {
			return nil, fmt.Errorf("%w: duplicate rule set version %q", domain.ErrInvalidInput, rs.Version)
		}
		versions[rs.Version] = true
		key := dateutil.MonthKey(rs.EffectiveFrom)
		if other, ok := months[key]; ok {
			return nil, fmt.Errorf("%w: rule sets %q and %q share effective month %s", domain.ErrInvalidInput, other, rs.Version, key)
		}
		months[key] = rs.Version
		rs.EffectiveFrom = dateutil.MonthStart(rs.EffectiveFrom)
		ordered = append(ordered, rs)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].EffectiveFrom.Before(ordered[j].EffectiveFrom) })
	return &RuleBook{sets: ordered}, nil
}

// ValidateRuleSet checks the header and every definition of a rule set.
func ValidateRuleSet(rs domain.ContributionRuleSet) error {
	if rs.Version == "" {
		return fmt.Errorf("%w: rule set version is required", domain.ErrInvalidInput)
	}
	if rs.EffectiveFrom.IsZero() {
		return fmt.Errorf("%w: rule set %s has no effective date", domain.ErrInvalidInput, rs.Version)
	}
	if !rs.SocialSecurityCeiling.IsPositive() {
		return fmt.Errorf("%w: rule set %s ceiling must be positive", domain.ErrInvalidInput, rs.Version)
	}
	if err := ValidateDefinitions(rs.Definitions); err != nil {
		return fmt.Errorf("rule set %s: %w", rs.Version, err)
	}
	return nil
}

// For returns the rule set in force for month: the latest one whose
// effective month is not after it.
func (rb *RuleBook) For(month time.Time) (domain.ContributionRuleSet, error) {
	m := dateutil.MonthStart(month)
	for i := len(rb.sets) - 1; i >= 0; i-- {
		if !rb.sets[i].EffectiveFrom.After(m) {
			return cloneRuleSet(rb.sets[i]), nil
		}
	}
	return domain.ContributionRuleSet{}, fmt.Errorf("%w: no rule set in force for %s", domain.ErrInvalidInput, dateutil.MonthKey(m))
}

// RuleSets returns every rule set, oldest first.
func (rb *RuleBook) RuleSets() []domain.ContributionRuleSet {
	out := make([]domain.ContributionRuleSet, 0, len(rb.sets))
	for _, rs := range rb.sets {
		out = append(out, cloneRuleSet(rs))
	}
	return out
}

func cloneRuleSet(rs domain.ContributionRuleSet) domain.ContributionRuleSet {
	rs.Definitions = append([]domain.ContributionDefinition(nil), rs.Definitions...)
	return rs
}

// DefaultRuleBook returns the built-in 2024 and 2025 rule sets.
func DefaultRuleBook() *RuleBook {
	rb, err := NewRuleBook(RuleSet2024(), RuleSet2025())
	if err != nil {
		panic(fmt.Sprintf("built-in rule book is invalid: %v", err))
	}
	return rb
}

func def(cat domain.Category, label string, base domain.BaseType, employee, employer string) domain.ContributionDefinition {
	return domain.ContributionDefinition{
		Category:            cat,
		Label:               label,
		BaseType:            base,
		EmployeeRatePercent: decimal.RequireFromString(employee),
		EmployerRatePercent: decimal.RequireFromString(employer),
	}
}

func nonDeductible(d domain.ContributionDefinition) domain.ContributionDefinition {
	d.NonDeductible = true
	return d
}

// RuleSet2024 is the general-regime table for 2024 (PMSS 3 864 €).
func RuleSet2024() domain.ContributionRuleSet {
	return domain.ContributionRuleSet{
		Version:               "FR-2024.01",
		EffectiveFrom:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SocialSecurityCeiling: decimal.NewFromInt(3864),
		Definitions: []domain.ContributionDefinition{
			def(domain.CategoryHealth, "Maladie, maternité, invalidité, décès", domain.BaseTotal, "0", "13.00"),
			def(domain.CategoryRetirementBase, "Vieillesse plafonnée", domain.BasePlafond, "6.90", "8.55"),
			def(domain.CategoryRetirementBase, "Vieillesse déplafonnée", domain.BaseTotal, "0.40", "2.02"),
			def(domain.CategoryRetirementComplementary, "AGIRC-ARRCO tranche 1", domain.BaseTrancheA, "3.15", "4.72"),
			def(domain.CategoryRetirementComplementary, "AGIRC-ARRCO tranche 2", domain.BaseTrancheB, "8.64", "12.95"),
			def(domain.CategoryRetirementComplementary, "CEG tranche 1", domain.BaseTrancheA, "0.86", "1.29"),
			def(domain.CategoryRetirementComplementary, "CEG tranche 2", domain.BaseTrancheB, "1.08", "1.62"),
			def(domain.CategoryUnemployment, "Assurance chômage", domain.BaseTotal, "0", "4.05"),
			def(domain.CategoryUnemployment, "AGS", domain.BaseTotal, "0", "0.15"),
			def(domain.CategoryCSGCRDS, "CSG déductible", domain.BaseCSGCRDS, "6.80", "0"),
			nonDeductible(def(domain.CategoryCSGCRDS, "CSG non déductible", domain.BaseCSGCRDS, "2.40", "0")),
			nonDeductible(def(domain.CategoryCSGCRDS, "CRDS", domain.BaseCSGCRDS, "0.50", "0")),
			def(domain.CategoryFamily, "Allocations familiales", domain.BaseTotal, "0", "5.25"),
			def(domain.CategoryAccident, "Accidents du travail", domain.BaseTotal, "0", "2.08"),
			def(domain.CategoryOther, "FNAL", domain.BasePlafond, "0", "0.10"),
			def(domain.CategoryOther, "Contribution solidarité autonomie", domain.BaseTotal, "0", "0.30"),
			def(domain.CategoryOther, "Formation professionnelle", domain.BaseTotal, "0", "0.55"),
			def(domain.CategoryOther, "Taxe d'apprentissage", domain.BaseTotal, "0", "0.68"),
		},
	}
}

// RuleSet2025 is the general-regime table for 2025 (PMSS 3 925 €).
func RuleSet2025() domain.ContributionRuleSet {
	return domain.ContributionRuleSet{
		Version:               "FR-2025.01",
		EffectiveFrom:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SocialSecurityCeiling: decimal.NewFromInt(3925),
		Definitions: []domain.ContributionDefinition{
			def(domain.CategoryHealth, "Maladie, maternité, invalidité, décès", domain.BaseTotal, "0", "13.00"),
			def(domain.CategoryRetirementBase, "Vieillesse plafonnée", domain.BasePlafond, "6.90", "8.55"),
			def(domain.CategoryRetirementBase, "Vieillesse déplafonnée", domain.BaseTotal, "0.40", "2.11"),
			def(domain.CategoryRetirementComplementary, "AGIRC-ARRCO tranche 1", domain.BaseTrancheA, "3.15", "4.72"),
			def(domain.CategoryRetirementComplementary, "AGIRC-ARRCO tranche 2", domain.BaseTrancheB, "8.64", "12.95"),
			def(domain.CategoryRetirementComplementary, "CEG tranche 1", domain.BaseTrancheA, "0.86", "1.29"),
			def(domain.CategoryRetirementComplementary, "CEG tranche 2", domain.BaseTrancheB, "1.08", "1.62"),
			def(domain.CategoryUnemployment, "Assurance chômage", domain.BaseTotal, "0", "4.00"),
			def(domain.CategoryUnemployment, "AGS", domain.BaseTotal, "0", "0.25"),
			def(domain.CategoryCSGCRDS, "CSG déductible", domain.BaseCSGCRDS, "6.80", "0"),
			nonDeductible(def(domain.CategoryCSGCRDS, "CSG non déductible", domain.BaseCSGCRDS, "2.40", "0")),
			nonDeductible(def(domain.CategoryCSGCRDS, "CRDS", domain.BaseCSGCRDS, "0.50", "0")),
			def(domain.CategoryFamily, "Allocations familiales", domain.BaseTotal, "0", "5.25"),
			def(domain.CategoryAccident, "Accidents du travail", domain.BaseTotal, "0", "2.12"),
			def(domain.CategoryOther, "FNAL", domain.BasePlafond, "0", "0.10"),
			def(domain.CategoryOther, "Contribution solidarité autonomie", domain.BaseTotal, "0", "0.30"),
			def(domain.CategoryOther, "Formation professionnelle", domain.BaseTotal, "0", "0.55"),
			def(domain.CategoryOther, "Taxe d'apprentissage", domain.BaseTotal, "0", "0.68"),
		},
	}
}
