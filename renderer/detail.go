package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/wsoa/arena"
)

// equityTail caps the equity rows shown in a detail report.
const equityTail = 10

// DetailMarkdown renders one agent's full report: metrics, the tail of
// its marked equity curve, and its recent trades.
func DetailMarkdown(d arena.AgentDetail) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Agent %s", d.Meta.Sig()))
	if d.Meta.Model != "" {
		doc.PlainText(fmt.Sprintf("%s, driven by `%s`.", d.Meta.Name, d.Meta.Model))
	}
	if d.Meta.Strategy != "" {
		line := fmt.Sprintf("Strategy: %s", d.Meta.Strategy)
		if d.Meta.StrategyDescription != "" {
			line += ", " + d.Meta.StrategyDescription
		}
		doc.PlainText(line)
	}

	if d.Error != "" {
		doc.PlainText(fmt.Sprintf("Metrics unavailable: %s", d.Error))
	}
	if m := d.Metrics; m != nil {
		doc.H2("Performance")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Metric", "Value"},
			Rows: [][]string{
				{"Cumulative Return", percent(m.CumulativeReturn)},
				{"Annualized Return", percent(m.AnnualizedReturn)},
				{"Volatility", percent(m.Volatility)},
				{"Sharpe Ratio", ratio(m.Sharpe)},
				{"Sortino Ratio", ratio(m.Sortino)},
				{"Max Drawdown", percent(m.MaxDrawdown)},
				{"First Value", fmt.Sprintf("%.4f", m.FirstValue)},
				{"Last Value", fmt.Sprintf("%.4f", m.LastValue)},
				{"Records", fmt.Sprint(m.Records)},
				{"Range", fmt.Sprintf("%s to %s", m.From, m.To)},
			},
		})
	}

	if len(d.Curve) > 0 {
		doc.H2("Equity")
		curve := d.Curve
		if len(curve) > equityTail {
			curve = curve[len(curve)-equityTail:]
		}
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Date", "Cash", "Assets", "Total"},
		}
		for _, p := range curve {
			table.Rows = append(table.Rows, []string{
				p.Date.String(),
				usd(p.Cash),
				usd(p.AssetValue),
				usd(p.TotalValue),
			})
		}
		doc.Table(table)
	}

	if len(d.Trades) > 0 {
		doc.H2("Recent Trades")
		var trades []string
		for _, s := range d.Trades {
			trades = append(trades, fmt.Sprintf("%s %s", s.Date, s.Action))
		}
		doc.OrderedList(trades...)
	}

	return doc.String()
}
