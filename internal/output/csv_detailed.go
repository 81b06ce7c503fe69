package output

import (
	"bytes"
	"encoding/csv"

	"github.com/paie/payslip-engine/pkg/dateutil"
)

// CSVDetailedExporter writes one row per contribution line of every payslip.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Employee", "Month", "Category", "Label", "BaseType", "Base", "EmployeeRate", "EmployeeAmount", "EmployerRate", "EmployerAmount", "NonDeductible"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, p := range sortedPayslips(report.Payslips) {
		month := dateutil.MonthKey(p.PeriodStart)
		for _, l := range p.Lines {
			row := []string{
				p.EmployeeID,
				month,
				string(l.Category),
				l.Label,
				string(l.BaseType),
				l.BaseAmount.StringFixed(2),
				l.EmployeeRatePercent.String(),
				l.EmployeeAmount.StringFixed(2),
				l.EmployerRatePercent.String(),
				l.EmployerAmount.StringFixed(2),
				boolToString(l.NonDeductible),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
