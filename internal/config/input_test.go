package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payslip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_Success(t *testing.T) {
	testConfig := "payroll:\n" +
		"  tax_withholding_rate_percent: 7.5\n" +
		"  paid_leave_days_per_month: 2.08\n" +
		"  include_paid_leave: false\n" +
		"  max_months_per_run: 12\n" +
		"database:\n" +
		"  driver: postgres\n" +
		"  dsn: \"host=db user=paie dbname=paie sslmode=disable\"\n" +
		"logging:\n" +
		"  level: debug\n" +
		"employees:\n" +
		"  - id: emp-001\n" +
		"    company_id: acme\n" +
		"    name: Camille Martin\n" +
		"    base_salary: 2500\n" +
		"    paid_leave_balance: 5.0\n"

	parser := NewInputParser()
	config, err := parser.LoadFromFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.True(t, config.Payroll.TaxWithholdingRatePercent.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, config.Payroll.PaidLeaveDaysPerMonth.Equal(decimal.RequireFromString("2.08")))
	assert.False(t, config.Payroll.IncludePaidLeave)
	assert.Equal(t, 12, config.Payroll.MaxMonthsPerRun)
	assert.Nil(t, config.Payroll.SocialSecurityCeiling)
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format, "default kept")
	require.Len(t, config.Employees, 1)
	assert.True(t, config.Employees[0].BaseSalary.Equal(decimal.NewFromInt(2500)))

	settings := config.GenerationSettings()
	assert.Equal(t, 12, settings.MaxMonths)
	assert.NoError(t, settings.Validate())
}

func TestLoadFromFile_Defaults(t *testing.T) {
	config, err := NewInputParser().LoadFromFile(writeConfig(t, "logging:\n  level: warn\n"))
	require.NoError(t, err)

	assert.True(t, config.Payroll.TaxWithholdingRatePercent.Equal(decimal.NewFromInt(12)))
	assert.True(t, config.Payroll.PaidLeaveDaysPerMonth.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, config.Payroll.IncludePaidLeave)
	assert.Equal(t, 24, config.Payroll.MaxMonthsPerRun)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "payslips.db", config.Database.DSN)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	_, err := NewInputParser().LoadFromFile("nonexistent.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(writeConfig(t, "payroll: [unclosed\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{"tax above 100", "payroll:\n  tax_withholding_rate_percent: 120\n", "tax withholding rate"},
		{"negative accrual", "payroll:\n  paid_leave_days_per_month: -1\n", "paid leave"},
		{"too many months", "payroll:\n  max_months_per_run: 36\n", "max months"},
		{"zero ceiling", "payroll:\n  social_security_ceiling: 0\n", "ceiling"},
		{"unknown driver", "database:\n  driver: oracle\n", "unsupported driver"},
		{"empty dsn", "database:\n  dsn: \"\"\n", "dsn is required"},
		{"bad log level", "logging:\n  level: loud\n", "invalid level"},
		{"employee without id", "employees:\n  - name: Anonymous\n", "id is required"},
		{"negative salary", "employees:\n  - id: e1\n    base_salary: -10\n", "base salary"},
		{"duplicate employee", "employees:\n  - id: e1\n  - id: e1\n", "duplicate id"},
		{"rule set without definitions", "rule_sets:\n  - version: X\n    effective_from: 2026-01-01\n    social_security_ceiling: 4000\n", "no contribution definitions"},
		{"rule set bad rate", "rule_sets:\n" +
			"  - version: X\n" +
			"    effective_from: 2026-01-01\n" +
			"    social_security_ceiling: 4000\n" +
			"    definitions:\n" +
			"      - {category: health, label: Maladie, base_type: total, employee_rate_percent: 0, employer_rate_percent: 130}\n",
			"outside [0,100]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInputParser().Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

const ruleSetOverride = `rule_sets:
  - version: FR-2026.01
    effective_from: 2026-01-01
    social_security_ceiling: 4005
    definitions:
      - category: retirement_base
        label: Vieillesse plafonnée
        base_type: plafond
        employee_rate_percent: 6.90
        employer_rate_percent: 8.55
      - category: csg_crds
        label: CRDS
        base_type: csgCrdsBase
        employee_rate_percent: 0.50
        employer_rate_percent: 0
        non_deductible: true
  - version: FR-2024.01
    effective_from: 2024-01-01
    social_security_ceiling: 3864
    definitions:
      - category: health
        label: Maladie
        base_type: total
        employee_rate_percent: 0
        employer_rate_percent: 7.0
`

func TestRuleBook_Overrides(t *testing.T) {
	config, err := NewInputParser().Parse([]byte(ruleSetOverride))
	require.NoError(t, err)
	require.Len(t, config.RuleSets, 2)
	assert.True(t, config.RuleSets[0].Definitions[1].NonDeductible)

	rb, err := config.RuleBook()
	require.NoError(t, err)
	sets := rb.RuleSets()
	require.Len(t, sets, 3)
	assert.Equal(t, "FR-2024.01", sets[0].Version)
	assert.Len(t, sets[0].Definitions, 1, "built-in 2024 set replaced")
	assert.Equal(t, "FR-2025.01", sets[1].Version)
	assert.Equal(t, "FR-2026.01", sets[2].Version)

	rs, err := rb.For(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, rs.SocialSecurityCeiling.Equal(decimal.NewFromInt(4005)))
}

func TestRuleBook_DefaultWhenNoOverrides(t *testing.T) {
	rb, err := DefaultConfiguration().RuleBook()
	require.NoError(t, err)
	assert.Len(t, rb.RuleSets(), 2)
}

func TestApplyEnv(t *testing.T) {
	config := DefaultConfiguration()
	env := map[string]string{
		EnvDatabaseDSN:    "postgres://paie@db/paie",
		EnvDatabaseDriver: "postgres",
	}
	config.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "postgres://paie@db/paie", config.Database.DSN)
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "info", config.Logging.Level, "unset variables change nothing")
}

func TestCreateExampleConfiguration_RoundTrip(t *testing.T) {
	parser := NewInputParser()
	example := parser.CreateExampleConfiguration()
	require.NoError(t, parser.ValidateConfiguration(example))

	data, err := Marshal(example)
	require.NoError(t, err)

	back, err := parser.Parse(data)
	require.NoError(t, err)
	require.Len(t, back.Employees, 1)
	assert.Equal(t, example.Employees[0].ID, back.Employees[0].ID)
	assert.True(t, back.Employees[0].MonthlyHours.Equal(example.Employees[0].MonthlyHours))
	assert.True(t, back.Payroll.TaxWithholdingRatePercent.Equal(example.Payroll.TaxWithholdingRatePercent))
}
