package output

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

// CSVSummarizer writes one row per payslip.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Employee", "Month", "RuleSet", "Gross", "EmployeeContributions", "EmployerContributions", "NetImposable", "NetBeforeTax", "Tax", "NetToPay", "EmployerCost", "LeaveRemaining", "GrossYTD", "NetYTD"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	payslips := sortedPayslips(report.Payslips)
	for _, p := range payslips {
		r := p.Result
		row := []string{
			p.EmployeeID,
			dateutil.MonthKey(p.PeriodStart),
			p.RuleSetVersion,
			r.GrossSalary.StringFixed(2),
			r.TotalEmployeeContributions.StringFixed(2),
			r.TotalEmployerContributions.StringFixed(2),
			r.NetImposable.StringFixed(2),
			r.NetBeforeTax.StringFixed(2),
			r.TaxAmount.StringFixed(2),
			r.NetToPay.StringFixed(2),
			r.EmployerCost.StringFixed(2),
			r.PaidLeaveRemaining.StringFixed(2),
			r.CumulativeGrossYTD.StringFixed(2),
			r.CumulativeNetYTD.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// sortedPayslips orders rows by employee then month for deterministic output.
func sortedPayslips(in []domain.Payslip) []domain.Payslip {
	out := append([]domain.Payslip(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}
