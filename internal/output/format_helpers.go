package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	money "github.com/paie/payslip-engine/pkg/decimal"
)

// FormatCurrency formats an amount in euros the way French payslips print it.
func FormatCurrency(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Format() }

// FormatPercentage formats a rate with up to three decimals.
func FormatPercentage(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "-"
	}
	return rate.Round(3).String() + "%"
}

// FormatDays formats a leave balance in days.
func FormatDays(days decimal.Decimal) string { return days.StringFixed(2) + " j" }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }
