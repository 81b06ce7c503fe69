package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paie/payslip-engine/internal/domain"
)

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Report is what the CLI prints: the outcome of a generation run, a set of
// stored payslips, or a single preview.
type Report struct {
	Title    string                   `json:"title"`
	Run      *domain.GenerationReport `json:"run,omitempty"`
	Payslips []domain.Payslip         `json:"payslips"`
}

// NewRunReport builds a report from a generation run. The payslips are the
// ones generated by the run, in month order.
func NewRunReport(run *domain.GenerationReport) *Report {
	r := &Report{Title: "Payslip generation " + run.EmployeeID, Run: run}
	for _, o := range run.Generated {
		if o.Payslip != nil {
			r.Payslips = append(r.Payslips, *o.Payslip)
		}
	}
	return r
}

// NewPayslipReport builds a report over payslips, sorted by employee then month.
func NewPayslipReport(title string, payslips ...domain.Payslip) *Report {
	return &Report{Title: title, Payslips: sortedPayslips(payslips)}
}

// GenerateReport formats report and writes it to w.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		// enrich error with available formatters and aliases
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("format %s: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}
