package calculation

import (
	"time"

	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
	pd "github.com/paie/payslip-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// YTDTotals are the year-to-date cumulative amounts printed on a payslip.
type YTDTotals struct {
	Gross decimal.Decimal `json:"gross"`
	Net   decimal.Decimal `json:"net"`
}

// YTDAggregator folds persisted payslips into year-to-date totals. It keeps
// no state between calls; callers always pass the authoritative set.
type YTDAggregator struct{}

// NewYTDAggregator creates a new aggregator
func NewYTDAggregator() *YTDAggregator {
	return &YTDAggregator{}
}

// CumulativeTotals sums gross and net-to-pay of every prior payslip of the
// fiscal year that starts before month, then adds the current month. Any
// payslip for month itself (e.g. the one being regenerated) is ignored.
func (a *YTDAggregator) CumulativeTotals(fiscalYear int, month time.Time, prior []domain.Payslip, current domain.PayslipResult) YTDTotals {
	start, end := dateutil.FiscalYearBounds(fiscalYear)
	cutoff := dateutil.MonthStart(month)
	if end.After(cutoff) {
		end = cutoff
	}

	gross := []decimal.Decimal{current.GrossSalary}
	net := []decimal.Decimal{current.NetToPay}
	for _, p := range prior {
		if p.PeriodStart.Before(start) || !p.PeriodStart.Before(end) {
			continue
		}
		gross = append(gross, p.Result.GrossSalary)
		net = append(net, p.Result.NetToPay)
	}
	return YTDTotals{Gross: pd.Sum(gross...), Net: pd.Sum(net...)}
}
