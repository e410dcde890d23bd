package arena

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

// periodsPerYear annualizes per-snapshot returns. Crypto trades every
// calendar day, so a year is 365 periods.
const periodsPerYear = 365

// riskFreePerPeriod is the per-period risk-free rate used by the ratio
// metrics. Simulated agents hold no yield-bearing cash.
const riskFreePerPeriod = 0.0

// ErrEmptyLedger is returned when metrics are requested for a ledger with
// no snapshots at all.
var ErrEmptyLedger = errors.New("ledger has no snapshots")

// EquityPoint is one ledger snapshot marked to market. It is derived on
// demand, never persisted.
type EquityPoint struct {
	Date       date.Date       `json:"date"`
	Cash       decimal.Decimal `json:"cash"`
	AssetValue decimal.Decimal `json:"asset_value"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// EquityCurve marks every snapshot of the ledger at archive closes, in
// ledger order. Non-cash holdings are valued at the most recent usable
// close on or before the snapshot date; a symbol with no usable close at
// all marks at zero, consistent with how sells settle when the market is
// dark.
func EquityCurve(l *Ledger, archive *PriceArchive) []EquityPoint {
	var curve []EquityPoint
	for _, s := range l.snapshots {
		assets := decimal.Zero
		for _, sym := range s.Holdings.Symbols() {
			price, ok := archive.CloseAsOf(sym, s.Date)
			if !ok {
				continue
			}
			assets = assets.Add(s.Holdings.Quantity(sym).Mul(price))
		}
		cash := s.Holdings.Cash()
		curve = append(curve, EquityPoint{
			Date:       s.Date,
			Cash:       cash,
			AssetValue: assets,
			TotalValue: cash.Add(assets),
		})
	}
	return curve
}

// Metrics bundles the risk and return figures derived from one agent's
// equity curve.
type Metrics struct {
	CumulativeReturn float64 `json:"cumulative_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	Sharpe           float64 `json:"sharpe_ratio"`
	Sortino          float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`

	FirstValue float64   `json:"first_value"`
	LastValue  float64   `json:"last_value"`
	Records    int       `json:"records"`
	From       date.Date `json:"from"`
	To         date.Date `json:"to"`
}

// MarshalJSON renders the bundle with JSON-safe ratio values: the +Inf
// sentinel serializes as the string "inf" instead of failing the encode.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CumulativeReturn any       `json:"cumulative_return"`
		AnnualizedReturn any       `json:"annualized_return"`
		Volatility       any       `json:"volatility"`
		Sharpe           any       `json:"sharpe_ratio"`
		Sortino          any       `json:"sortino_ratio"`
		MaxDrawdown      any       `json:"max_drawdown"`
		FirstValue       float64   `json:"first_value"`
		LastValue        float64   `json:"last_value"`
		Records          int       `json:"records"`
		From             date.Date `json:"from"`
		To               date.Date `json:"to"`
	}{
		jsonFloat(m.CumulativeReturn),
		jsonFloat(m.AnnualizedReturn),
		jsonFloat(m.Volatility),
		jsonFloat(m.Sharpe),
		jsonFloat(m.Sortino),
		jsonFloat(m.MaxDrawdown),
		m.FirstValue, m.LastValue, m.Records, m.From, m.To,
	})
}

// jsonFloat maps the non-finite sentinels onto JSON-representable values.
func jsonFloat(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return nil
	default:
		return v
	}
}

// Derive computes Metrics from the ledger marked at archive prices. It is
// a pure function of the persisted state: deriving twice yields identical
// results.
//
// Degenerate input never fails: a single-snapshot ledger has zero returns
// and every ratio metric resolves to its sentinel (0, or +Inf for Sortino
// with positive mean and no downside). Only a ledger with no snapshots at
// all is an error.
func Derive(l *Ledger, archive *PriceArchive) (Metrics, error) {
	curve := EquityCurve(l, archive)
	if len(curve) == 0 {
		return Metrics{}, ErrEmptyLedger
	}

	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.TotalValue.InexactFloat64()
	}
	returns := periodReturns(values)

	m := Metrics{
		FirstValue: values[0],
		LastValue:  values[len(values)-1],
		Records:    len(curve),
		From:       curve[0].Date,
		To:         curve[len(curve)-1].Date,
	}
	if m.FirstValue != 0 {
		m.CumulativeReturn = (m.LastValue - m.FirstValue) / m.FirstValue
	}
	if n := len(returns); n > 0 {
		m.AnnualizedReturn = math.Pow(1+m.CumulativeReturn, periodsPerYear/float64(n)) - 1
	}
	if len(returns) >= 2 {
		m.Volatility = stdev(returns) * math.Sqrt(periodsPerYear)
	}
	m.Sharpe = sharpeRatio(returns)
	m.Sortino = sortinoRatio(returns)
	m.MaxDrawdown = maxDrawdown(returns)
	return m, nil
}

// periodReturns computes simple returns between consecutive values. A zero
// base value contributes a zero return rather than a division blow-up.
func periodReturns(values []float64) []float64 {
	var returns []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the population standard deviation.
func stdev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// sharpeRatio is the annualized excess mean return over total deviation.
// A series with no deviation yields 0; only Sortino carries the +Inf
// sentinel.
func sharpeRatio(returns []float64) float64 {
	excess := mean(returns) - riskFreePerPeriod
	sd := stdev(returns)
	if sd == 0 {
		return 0
	}
	return excess / sd * math.Sqrt(periodsPerYear)
}

// sortinoRatio is the annualized excess mean return over downside
// deviation, the population stdev of the negative returns only. No
// downside with positive mean is +Inf; no downside otherwise is 0.
func sortinoRatio(returns []float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	excess := mean(returns) - riskFreePerPeriod
	dd := stdev(downside)
	if dd == 0 {
		if excess > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return excess / dd * math.Sqrt(periodsPerYear)
}

// maxDrawdown is the deepest peak-to-trough loss of the compounded wealth
// series, always <= 0.
func maxDrawdown(returns []float64) float64 {
	wealth := 1.0
	peak := 1.0
	mdd := 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := (wealth - peak) / peak; dd < mdd {
			mdd = dd
		}
	}
	return mdd
}
