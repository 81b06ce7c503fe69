package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/paie/payslip-engine/internal/calculation"
	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/internal/generation"
	"github.com/paie/payslip-engine/internal/logging"
	"github.com/paie/payslip-engine/internal/storage"
)

// Environment variables that override the file.
const (
	EnvDatabaseDSN    = "PAYSLIP_DATABASE_DSN"
	EnvDatabaseDriver = "PAYSLIP_DATABASE_DRIVER"
	EnvLogLevel       = "PAYSLIP_LOG_LEVEL"
)

// Configuration is the full configuration file.
type Configuration struct {
	Payroll   PayrollConfig                `yaml:"payroll"`
	RuleSets  []domain.ContributionRuleSet `yaml:"rule_sets,omitempty"`
	Database  storage.Config               `yaml:"database"`
	Logging   logging.Config               `yaml:"logging"`
	Employees []domain.Employee            `yaml:"employees,omitempty"`
}

// PayrollConfig holds the run-wide payroll parameters.
type PayrollConfig struct {
	TaxWithholdingRatePercent decimal.Decimal  `yaml:"tax_withholding_rate_percent"`
	PaidLeaveDaysPerMonth     decimal.Decimal  `yaml:"paid_leave_days_per_month"`
	IncludePaidLeave          bool             `yaml:"include_paid_leave"`
	MaxMonthsPerRun           int              `yaml:"max_months_per_run"`
	SocialSecurityCeiling     *decimal.Decimal `yaml:"social_security_ceiling,omitempty"`
}

// InputParser handles parsing of configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// DefaultConfiguration is used when no file is given and as the base every
// file is decoded onto.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Payroll: PayrollConfig{
			TaxWithholdingRatePercent: generation.DefaultTaxWithholdingRatePercent,
			PaidLeaveDaysPerMonth:     calculation.DefaultPaidLeaveDaysPerMonth,
			IncludePaidLeave:          true,
			MaxMonthsPerRun:           generation.MaxMonthsPerRun,
		},
		Database: storage.Config{Driver: "sqlite", DSN: "payslips.db"},
		Logging:  logging.Config{Level: "info", Format: "json"},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default value.
func (ip *InputParser) LoadFromFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates YAML configuration.
func (ip *InputParser) Parse(data []byte) (*Configuration, error) {
	config := DefaultConfiguration()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides database and logging settings from the environment.
func (c *Configuration) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDatabaseDSN)); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(getenv(EnvDatabaseDriver)); v != "" {
		c.Database.Driver = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *Configuration) error {
	if err := ip.validatePayroll(&config.Payroll); err != nil {
		return fmt.Errorf("payroll: %w", err)
	}

	versions := make(map[string]bool, len(config.RuleSets))
	for i, rs := range config.RuleSets {
		if err := calculation.ValidateRuleSet(rs); err != nil {
			return fmt.Errorf("rule set %d: %w", i, err)
		}
		if versions[rs.Version] {
			return fmt.Errorf("rule set %d: duplicate version %q", i, rs.Version)
		}
		versions[rs.Version] = true
	}

	switch strings.ToLower(config.Database.Driver) {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("database: unsupported driver %q (want sqlite or postgres)", config.Database.Driver)
	}
	if strings.TrimSpace(config.Database.DSN) == "" {
		return fmt.Errorf("database: dsn is required")
	}

	if !logging.ValidLevel(config.Logging.Level) {
		return fmt.Errorf("logging: invalid level %q", config.Logging.Level)
	}

	seen := make(map[string]bool, len(config.Employees))
	for i := range config.Employees {
		e := &config.Employees[i]
		if err := ip.validateEmployee(e); err != nil {
			return fmt.Errorf("employee %d validation failed: %w", i, err)
		}
		if seen[e.ID] {
			return fmt.Errorf("employee %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}

	return nil
}

func (ip *InputParser) validatePayroll(p *PayrollConfig) error {
	if p.TaxWithholdingRatePercent.IsNegative() || p.TaxWithholdingRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("tax withholding rate must be between 0 and 100, got %s", p.TaxWithholdingRatePercent)
	}
	if p.PaidLeaveDaysPerMonth.IsNegative() {
		return fmt.Errorf("paid leave days per month cannot be negative")
	}
	if p.MaxMonthsPerRun < 1 || p.MaxMonthsPerRun > generation.MaxMonthsPerRun {
		return fmt.Errorf("max months per run must be between 1 and %d, got %d", generation.MaxMonthsPerRun, p.MaxMonthsPerRun)
	}
	if p.SocialSecurityCeiling != nil && !p.SocialSecurityCeiling.IsPositive() {
		return fmt.Errorf("social security ceiling must be positive")
	}
	return nil
}

func (ip *InputParser) validateEmployee(e *domain.Employee) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if e.BaseSalary.IsNegative() {
		return fmt.Errorf("base salary cannot be negative")
	}
	if e.HourlyRate.IsNegative() {
		return fmt.Errorf("hourly rate cannot be negative")
	}
	if e.MonthlyHours.IsNegative() {
		return fmt.Errorf("monthly hours cannot be negative")
	}
	return nil
}

// RuleBook builds the rule book: the built-in sets with any configured set
// added, or replacing the built-in set of the same version.
func (c *Configuration) RuleBook() (*calculation.RuleBook, error) {
	if len(c.RuleSets) == 0 {
		return calculation.DefaultRuleBook(), nil
	}
	overrides := make(map[string]domain.ContributionRuleSet, len(c.RuleSets))
	for _, rs := range c.RuleSets {
		overrides[rs.Version] = rs
	}
	var sets []domain.ContributionRuleSet
	for _, rs := range calculation.DefaultRuleBook().RuleSets() {
		if o, ok := overrides[rs.Version]; ok {
			sets = append(sets, o)
			delete(overrides, rs.Version)
			continue
		}
		sets = append(sets, rs)
	}
	for _, rs := range c.RuleSets {
		if _, ok := overrides[rs.Version]; ok {
			sets = append(sets, rs)
		}
	}
	return calculation.NewRuleBook(sets...)
}

// GenerationSettings maps the payroll section onto generator settings.
func (c *Configuration) GenerationSettings() generation.Settings {
	return generation.Settings{
		TaxWithholdingRatePercent: c.Payroll.TaxWithholdingRatePercent,
		PaidLeaveDaysPerMonth:     c.Payroll.PaidLeaveDaysPerMonth,
		MaxMonths:                 c.Payroll.MaxMonthsPerRun,
		SocialSecurityCeiling:     c.Payroll.SocialSecurityCeiling,
	}
}

// CreateExampleConfiguration returns a configuration showing every section.
func (ip *InputParser) CreateExampleConfiguration() *Configuration {
	config := DefaultConfiguration()
	config.Employees = []domain.Employee{
		{
			ID:               "emp-001",
			CompanyID:        "acme",
			Name:             "Camille Martin",
			BaseSalary:       decimal.NewFromInt(2500),
			HourlyRate:       decimal.RequireFromString("16.48"),
			MonthlyHours:     decimal.RequireFromString("151.67"),
			PaidLeaveBalance: decimal.NewFromInt(5),
		},
	}
	return config
}

// Marshal renders a configuration as YAML.
func Marshal(config *Configuration) ([]byte, error) {
	return yaml.Marshal(config)
}
