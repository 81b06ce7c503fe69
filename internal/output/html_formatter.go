package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
)

// HTMLFormatter produces a printable HTML page with one payslip per section.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/payslip.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("payslip").Funcs(template.FuncMap{
	"curr":      FormatCurrency,
	"pct":       FormatPercentage,
	"days":      FormatDays,
	"month":     dateutil.MonthKey,
	"subtotals": domain.SubtotalByCategory,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*Report
		Totals Totals
	}{report, Summarize(report.Payslips)}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
