package output

import (
	"bytes"
	"fmt"

	"github.com/paie/payslip-engine/pkg/dateutil"
)

// ConsoleFormatter provides a concise console summary: the run outcome
// followed by one line per payslip.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "PAYSLIP SUMMARY")
	fmt.Fprintln(&buf, "================================")
	if report.Title != "" {
		fmt.Fprintln(&buf, report.Title)
	}
	if run := report.Run; run != nil {
		fmt.Fprintf(&buf, "Period: %s..%s\n", dateutil.MonthKey(run.PeriodStart), dateutil.MonthKey(run.PeriodEnd))
		fmt.Fprintf(&buf, "Generated=%d Skipped=%d Failed=%d Aborted=%s\n",
			len(run.Generated), len(run.Skipped), len(run.Failed), boolToString(run.Aborted))
		fmt.Fprintf(&buf, "Leave balance: %s -> %s\n", FormatDays(run.OpeningLeaveBalance), FormatDays(run.ClosingLeaveBalance))
		for _, o := range run.Skipped {
			fmt.Fprintf(&buf, "  skipped %s\n", dateutil.MonthKey(o.Month))
		}
		for _, o := range run.Failed {
			fmt.Fprintf(&buf, "  failed  %s: %s\n", dateutil.MonthKey(o.Month), o.Error)
		}
	}
	fmt.Fprintln(&buf)
	for _, p := range report.Payslips {
		r := p.Result
		fmt.Fprintf(&buf, "%s %s: Gross=%s Net=%s Tax=%s Cost=%s\n",
			dateutil.MonthKey(p.PeriodStart),
			p.EmployeeID,
			FormatCurrency(r.GrossSalary),
			FormatCurrency(r.NetToPay),
			FormatCurrency(r.TaxAmount),
			FormatCurrency(r.EmployerCost),
		)
	}
	if len(report.Payslips) > 1 {
		t := Summarize(report.Payslips)
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Total: Gross=%s Net=%s Cost=%s\n", FormatCurrency(t.Gross), FormatCurrency(t.NetToPay), FormatCurrency(t.EmployerCost))
	}
	return buf.Bytes(), nil
}
