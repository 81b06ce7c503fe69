package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups contribution lines on the payslip.
type Category string

const (
	CategoryHealth                  Category = "health"
	CategoryRetirementBase          Category = "retirement_base"
	CategoryRetirementComplementary Category = "retirement_complementary"
	CategoryUnemployment            Category = "unemployment"
	CategoryCSGCRDS                 Category = "csg_crds"
	CategoryFamily                  Category = "family"
	CategoryAccident                Category = "accident"
	CategoryOther                   Category = "other"
)

// Categories lists every category in payslip display order.
var Categories = []Category{
	CategoryHealth,
	CategoryRetirementBase,
	CategoryRetirementComplementary,
	CategoryUnemployment,
	CategoryCSGCRDS,
	CategoryFamily,
	CategoryAccident,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// BaseType selects how the contributable base is derived from gross salary.
type BaseType string

const (
	BaseTotal    BaseType = "total"
	BasePlafond  BaseType = "plafond"
	BaseTrancheA BaseType = "trancheA"
	BaseTrancheB BaseType = "trancheB"
	BaseCSGCRDS  BaseType = "csgCrdsBase"
)

// Valid reports whether b is a known base type.
func (b BaseType) Valid() bool {
	switch b {
	case BaseTotal, BasePlafond, BaseTrancheA, BaseTrancheB, BaseCSGCRDS:
		return true
	}
	return false
}

// ContributionDefinition is one row of a contribution rule set.
type ContributionDefinition struct {
	Category            Category        `yaml:"category" json:"category"`
	Label               string          `yaml:"label" json:"label"`
	BaseType            BaseType        `yaml:"base_type" json:"base_type"`
	EmployeeRatePercent decimal.Decimal `yaml:"employee_rate_percent" json:"employee_rate_percent"`
	EmployerRatePercent decimal.Decimal `yaml:"employer_rate_percent" json:"employer_rate_percent"`
	// NonDeductible lines (CSG non déductible, CRDS) stay in the income-tax base.
	NonDeductible bool `yaml:"non_deductible,omitempty" json:"non_deductible,omitempty"`
}

// ContributionRuleSet is an immutable, versioned table of contribution
// definitions together with the social-security ceiling in force from
// EffectiveFrom onwards.
type ContributionRuleSet struct {
	Version               string                   `yaml:"version" json:"version"`
	EffectiveFrom         time.Time                `yaml:"effective_from" json:"effective_from"`
	SocialSecurityCeiling decimal.Decimal          `yaml:"social_security_ceiling" json:"social_security_ceiling"`
	Definitions           []ContributionDefinition `yaml:"definitions" json:"definitions"`
}

// ContributionLine is a definition applied to one gross salary.
type ContributionLine struct {
	Category            Category        `json:"category"`
	Label               string          `json:"label"`
	BaseType            BaseType        `json:"base_type"`
	BaseAmount          decimal.Decimal `json:"base_amount"`
	EmployeeRatePercent decimal.Decimal `json:"employee_rate_percent"`
	EmployerRatePercent decimal.Decimal `json:"employer_rate_percent"`
	EmployeeAmount      decimal.Decimal `json:"employee_amount"`
	EmployerAmount      decimal.Decimal `json:"employer_amount"`
	NonDeductible       bool            `json:"non_deductible,omitempty"`
}

// CategoryTotal is the per-category subtotal of a breakdown.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Employee decimal.Decimal `json:"employee"`
	Employer decimal.Decimal `json:"employer"`
}

// ContributionBreakdown is the full output of the contribution engine.
type ContributionBreakdown struct {
	Lines                 []ContributionLine `json:"lines"`
	Categories            []CategoryTotal    `json:"categories"`
	TotalEmployee         decimal.Decimal    `json:"total_employee"`
	TotalEmployer         decimal.Decimal    `json:"total_employer"`
	NonDeductibleEmployee decimal.Decimal    `json:"non_deductible_employee"`
}

// SubtotalByCategory groups line amounts per category, in Categories order.
// Categories without lines are left out.
func SubtotalByCategory(lines []ContributionLine) []CategoryTotal {
	subtotals := make(map[Category]*CategoryTotal)
	for _, l := range lines {
		sub, ok := subtotals[l.Category]
		if !ok {
			sub = &CategoryTotal{Category: l.Category, Employee: decimal.Zero, Employer: decimal.Zero}
			subtotals[l.Category] = sub
		}
		sub.Employee = sub.Employee.Add(l.EmployeeAmount)
		sub.Employer = sub.Employer.Add(l.EmployerAmount)
	}
	var out []CategoryTotal
	for _, cat := range Categories {
		if sub, ok := subtotals[cat]; ok {
			out = append(out, *sub)
		}
	}
	return out
}
