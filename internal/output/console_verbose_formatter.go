package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

// ConsoleVerboseFormatter renders every payslip in full: contribution lines,
// category subtotals, net figures, paid leave and year-to-date totals.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "BULLETIN DE PAIE")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	if report.Title != "" {
		fmt.Fprintln(&buf, report.Title)
	}
	fmt.Fprintln(&buf)

	for i, p := range report.Payslips {
		if i > 0 {
			fmt.Fprintln(&buf, strings.Repeat("-", 81))
			fmt.Fprintln(&buf)
		}
		if err := writePayslip(&buf, p); err != nil {
			return nil, err
		}
	}

	if run := report.Run; run != nil {
		writeRunOutcome(&buf, run)
	}
	return buf.Bytes(), nil
}

func writePayslip(w io.Writer, p domain.Payslip) error {
	r := p.Result
	fmt.Fprintf(w, "Employee: %s  Company: %s\n", p.EmployeeID, p.CompanyID)
	fmt.Fprintf(w, "Period:   %s to %s  (rules %s)\n", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"), p.RuleSetVersion)
	fmt.Fprintf(w, "Ceiling:  %s\n", FormatCurrency(p.SocialSecurityCeiling))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Salaire brut: %s\n", FormatCurrency(r.GrossSalary))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Cotisation\tBase\tTaux sal.\tPart sal.\tTaux pat.\tPart pat.\t")
	for _, l := range p.Lines {
		if l.EmployeeAmount.IsZero() && l.EmployerAmount.IsZero() {
			continue
		}
		label := l.Label
		if l.NonDeductible {
			label += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			label,
			FormatCurrency(l.BaseAmount),
			FormatPercentage(l.EmployeeRatePercent),
			FormatCurrency(l.EmployeeAmount),
			FormatPercentage(l.EmployerRatePercent),
			FormatCurrency(l.EmployerAmount),
		)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t\t")
	for _, sub := range domain.SubtotalByCategory(p.Lines) {
		fmt.Fprintf(tw, "Total %s\t\t\t%s\t\t%s\t\n", sub.Category, FormatCurrency(sub.Employee), FormatCurrency(sub.Employer))
	}
	fmt.Fprintf(tw, "TOTAL COTISATIONS\t\t\t%s\t\t%s\t\n", FormatCurrency(r.TotalEmployeeContributions), FormatCurrency(r.TotalEmployerContributions))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "(* non déductible de l'impôt sur le revenu)")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Net imposable:          %s\n", FormatCurrency(r.NetImposable))
	fmt.Fprintf(w, "Net avant impôt:        %s\n", FormatCurrency(r.NetBeforeTax))
	fmt.Fprintf(w, "Prélèvement à la source %s: %s\n", FormatPercentage(p.TaxWithholdingRatePercent), FormatCurrency(r.TaxAmount))
	fmt.Fprintf(w, "NET À PAYER:            %s\n", FormatCurrency(r.NetToPay))
	fmt.Fprintf(w, "Coût employeur:         %s\n", FormatCurrency(r.EmployerCost))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Congés payés: acquis %s, pris %s, solde %s\n",
		FormatDays(r.PaidLeaveAcquired), FormatDays(r.PaidLeaveTaken), FormatDays(r.PaidLeaveRemaining))
	fmt.Fprintf(w, "Cumul %d: brut %s, net %s\n", p.FiscalYear(), FormatCurrency(r.CumulativeGrossYTD), FormatCurrency(r.CumulativeNetYTD))
	fmt.Fprintln(w)
	return nil
}

func writeRunOutcome(w io.Writer, run *domain.GenerationReport) {
	fmt.Fprintln(w, strings.Repeat("=", 81))
	fmt.Fprintf(w, "RUN %s  %s..%s\n", run.EmployeeID, dateutil.MonthKey(run.PeriodStart), dateutil.MonthKey(run.PeriodEnd))
	fmt.Fprintf(w, "Generated: %d  Skipped: %d  Failed: %d\n", len(run.Generated), len(run.Skipped), len(run.Failed))
	for _, o := range run.Skipped {
		fmt.Fprintf(w, "  %s skipped (already generated)\n", dateutil.MonthKey(o.Month))
	}
	for _, o := range run.Failed {
		fmt.Fprintf(w, "  %s failed: %s\n", dateutil.MonthKey(o.Month), o.Error)
	}
	if run.Aborted {
		fmt.Fprintln(w, "Run aborted before the last month.")
	}
	fmt.Fprintf(w, "Leave balance: %s -> %s\n", FormatDays(run.OpeningLeaveBalance), FormatDays(run.ClosingLeaveBalance))
}
