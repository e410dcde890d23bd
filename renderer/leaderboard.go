package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/wsoa/arena"
)

// LeaderboardMarkdown renders the ranked rows as a markdown table. Rows
// without metrics print their error in place of figures.
func LeaderboardMarkdown(rows []arena.AgentSummary, key arena.SortKey) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Leaderboard")
	doc.PlainText(fmt.Sprintf("Ranked by `%s`, descending. %d agents.", string(key), len(rows)))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Rank", "Agent", "CR", "Ann.", "Vol", "Sortino", "MDD"},
	}
	for _, row := range rows {
		if row.Metrics == nil {
			table.Rows = append(table.Rows, []string{
				fmt.Sprint(row.Rank), row.Signature,
				"error: " + row.Error, "", "", "", "",
			})
			continue
		}
		m := row.Metrics
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(row.Rank),
			row.Signature,
			percent(m.CumulativeReturn),
			percent(m.AnnualizedReturn),
			percent(m.Volatility),
			ratio(m.Sortino),
			percent(m.MaxDrawdown),
		})
	}
	doc.Table(table)

	return doc.String()
}
