// Package renderer turns arena reports into markdown documents.
package renderer

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd formats a decimal quote-currency value as a display amount. The
// simulated quote asset is a USD stablecoin, so USD formatting applies.
func usd(v decimal.Decimal) string {
	cents := v.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	return money.New(cents, money.USD).Display()
}

// percent formats a ratio as a signed percentage.
func percent(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}

// ratio formats a dimensionless figure such as Sharpe or Sortino.
func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
