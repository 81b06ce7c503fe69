package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

// salaryFlags are shared by generate and regenerate.
type salaryFlags struct {
	employeeID string
	mode       string
	amount     string
	rate       string
	hours      string
	noLeave    bool
	leaveTaken map[string]string
}

func (f *salaryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.employeeID, "employee", "e", "", "employee id")
	cmd.Flags().StringVar(&f.mode, "mode", string(domain.SalaryModeFixed), "salary mode: fixed or hourly")
	cmd.Flags().StringVar(&f.amount, "amount", "", "fixed monthly gross (defaults to the employee base salary)")
	cmd.Flags().StringVar(&f.rate, "rate", "", "hourly rate (defaults to the employee hourly rate)")
	cmd.Flags().StringVar(&f.hours, "hours", "", "hours per month (defaults to the employee monthly hours)")
	cmd.Flags().BoolVar(&f.noLeave, "no-leave", false, "do not accrue paid leave")
	cmd.Flags().StringToStringVar(&f.leaveTaken, "leave-taken", nil, "days of paid leave taken per month, e.g. 2024-03=2,2024-04=1.5")
	_ = cmd.MarkFlagRequired("employee")
}

// request builds the generation request; period bounds are filled by the caller.
func (f *salaryFlags) request(includeLeaveDefault bool) (domain.GenerationRequest, error) {
	req := domain.GenerationRequest{
		EmployeeID:       strings.TrimSpace(f.employeeID),
		SalaryMode:       domain.SalaryMode(strings.ToLower(strings.TrimSpace(f.mode))),
		IncludePaidLeave: includeLeaveDefault && !f.noLeave,
	}
	var err error
	if req.FixedAmount, err = optionalDecimal("amount", f.amount); err != nil {
		return req, err
	}
	if req.HourlyRate, err = optionalDecimal("rate", f.rate); err != nil {
		return req, err
	}
	if req.Hours, err = optionalDecimal("hours", f.hours); err != nil {
		return req, err
	}
	if len(f.leaveTaken) > 0 {
		req.LeaveTaken = make(map[string]decimal.Decimal, len(f.leaveTaken))
		for key, value := range f.leaveTaken {
			m, err := dateutil.ParseMonth(key)
			if err != nil {
				return req, fmt.Errorf("--leave-taken: %w", err)
			}
			days, err := decimal.NewFromString(strings.TrimSpace(value))
			if err != nil {
				return req, fmt.Errorf("--leave-taken %s: invalid number of days %q", key, value)
			}
			req.LeaveTaken[dateutil.MonthKey(m)] = days
		}
	}
	return req, nil
}

func optionalDecimal(name, value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: invalid decimal %q", name, value)
	}
	return &d, nil
}
