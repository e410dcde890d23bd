package arena

import (
	"fmt"
	"math"
	"sort"
)

// SortKey selects the metric a leaderboard is ranked by. Every key ranks
// descending.
type SortKey string

const (
	SortCumulativeReturn SortKey = "cumulative_return"
	SortAnnualizedReturn SortKey = "annualized_return"
	SortVolatility       SortKey = "volatility"
	SortSharpe           SortKey = "sharpe_ratio"
	SortSortino          SortKey = "sortino_ratio"
	SortMaxDrawdown      SortKey = "max_drawdown"
)

// DefaultSortKey ranks by cumulative return.
const DefaultSortKey = SortCumulativeReturn

// ParseSortKey validates a user-supplied sort key. An empty string selects
// the default.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return DefaultSortKey, nil
	case SortCumulativeReturn, SortAnnualizedReturn, SortVolatility,
		SortSharpe, SortSortino, SortMaxDrawdown:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// AgentSummary is one leaderboard row. A row either carries metrics or an
// error: an agent whose metrics cannot be derived is still listed, tagged
// with the failure, rather than silently dropped.
type AgentSummary struct {
	Rank      int      `json:"rank"`
	Signature string   `json:"signature"`
	Name      string   `json:"name"`
	Model     string   `json:"model,omitempty"`
	Metrics   *Metrics `json:"metrics,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// value returns the row's ranking figure under key. Rows without metrics
// rank as NaN and land after every successful row.
func (s AgentSummary) value(key SortKey) float64 {
	if s.Metrics == nil {
		return math.NaN()
	}
	switch key {
	case SortAnnualizedReturn:
		return s.Metrics.AnnualizedReturn
	case SortVolatility:
		return s.Metrics.Volatility
	case SortSharpe:
		return s.Metrics.Sharpe
	case SortSortino:
		return s.Metrics.Sortino
	case SortMaxDrawdown:
		return s.Metrics.MaxDrawdown
	default:
		return s.Metrics.CumulativeReturn
	}
}

// BuildLeaderboard derives metrics for every registered agent and returns
// the rows ranked by key, descending. One agent's failure never aborts the
// build: its row carries the error and sorts after all successful rows,
// failures keeping their discovery order (the sort is stable).
func BuildLeaderboard(store *Store, archive *PriceArchive, key SortKey) ([]AgentSummary, error) {
	sigs, err := store.Signatures()
	if err != nil {
		return nil, err
	}

	rows := make([]AgentSummary, 0, len(sigs))
	for _, sig := range sigs {
		row := AgentSummary{Signature: sig, Name: sig}
		if meta, err := store.Meta(sig); err == nil {
			row.Name = meta.Name
			row.Model = meta.Model
		}
		ledger, err := store.Ledger(sig)
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		m, err := Derive(ledger, archive)
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		row.Metrics = &m
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := rows[i].value(key), rows[j].value(key)
		switch {
		case math.IsNaN(vi):
			return false
		case math.IsNaN(vj):
			return true
		default:
			return vi > vj
		}
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// detailTradeLimit caps the trade list in an agent detail view to the most
// recent entries.
const detailTradeLimit = 50

// AgentDetail is the full report for one agent: its metadata, metrics,
// marked equity curve, and most recent trades.
type AgentDetail struct {
	Meta    AgentMeta     `json:"meta"`
	Metrics *Metrics      `json:"metrics,omitempty"`
	Error   string        `json:"error,omitempty"`
	Curve   []EquityPoint `json:"equity_curve"`
	Trades  []Snapshot    `json:"trades"`
}

// Detail builds the detail view for one agent. An unknown agent is an
// error; a degenerate ledger is not, it simply reports sentinel metrics.
func Detail(store *Store, archive *PriceArchive, signature string) (AgentDetail, error) {
	ledger, err := store.Ledger(signature)
	if err != nil {
		return AgentDetail{}, err
	}
	meta, err := store.Meta(signature)
	if err != nil {
		return AgentDetail{}, err
	}

	detail := AgentDetail{Meta: meta, Curve: EquityCurve(ledger, archive)}
	if m, err := Derive(ledger, archive); err != nil {
		detail.Error = err.Error()
	} else {
		detail.Metrics = &m
	}

	trades := ledger.Trades()
	if len(trades) > detailTradeLimit {
		trades = trades[len(trades)-detailTradeLimit:]
	}
	detail.Trades = trades
	return detail, nil
}
