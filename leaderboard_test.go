package arena

import (
	"os"
	"path/filepath"
	"testing"
)

// leaderboardStore registers three agents: a winner, a loser, and one with
// a corrupt ledger.
func leaderboardStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store := NewStore(root, NewMemLocker())
	executor := NewExecutor(store, testArchive(t))

	for _, name := range []string{"winner", "loser", "broken"} {
		meta := AgentMeta{Name: name, Signature: name}
		if err := store.Register(meta, dec("100000"), nil, d("2025-01-09")); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	// The winner buys and the mark appreciates; the loser sells into a dark
	// market and destroys value.
	if _, err := executor.Execute("winner", d("2025-01-10"), Instruction{Kind: BuyCrypto, Symbol: "ETH-USDT", Amount: dec("10")}); err != nil {
		t.Fatalf("winner buy: %v", err)
	}
	if _, err := executor.Execute("loser", d("2025-01-10"), Instruction{Kind: BuyCrypto, Symbol: "BTC-USDT", Amount: dec("1")}); err != nil {
		t.Fatalf("loser buy: %v", err)
	}
	if _, err := executor.Execute("loser", d("2025-01-11"), Instruction{Kind: SellCrypto, Symbol: "BTC-USDT", Amount: dec("1")}); err != nil {
		t.Fatalf("loser sell: %v", err)
	}

	path := filepath.Join(root, "broken", "position.jsonl")
	if err := os.WriteFile(path, []byte("{corrupt\n"), 0o644); err != nil {
		t.Fatalf("corrupting ledger: %v", err)
	}
	return store
}

func TestBuildLeaderboard(t *testing.T) {
	store := leaderboardStore(t)

	rows, err := BuildLeaderboard(store, testArchive(t), DefaultSortKey)
	if err != nil {
		t.Fatalf("BuildLeaderboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if rows[0].Signature != "winner" || rows[1].Signature != "loser" {
		t.Errorf("order = [%s %s %s], want winner before loser", rows[0].Signature, rows[1].Signature, rows[2].Signature)
	}
	if rows[2].Signature != "broken" || rows[2].Error == "" || rows[2].Metrics != nil {
		t.Errorf("last row = %+v, want the broken agent tagged with its error", rows[2])
	}
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, row.Rank, i+1)
		}
	}
	if rows[0].Metrics.CumulativeReturn <= rows[1].Metrics.CumulativeReturn {
		t.Errorf("ranking is not descending: %v <= %v",
			rows[0].Metrics.CumulativeReturn, rows[1].Metrics.CumulativeReturn)
	}
}

func TestBuildLeaderboard_FailureDoesNotAbort(t *testing.T) {
	store := leaderboardStore(t)

	// Whatever the sort key, the corrupt agent is present and last.
	for _, key := range []SortKey{SortSortino, SortVolatility, SortMaxDrawdown} {
		rows, err := BuildLeaderboard(store, testArchive(t), key)
		if err != nil {
			t.Fatalf("BuildLeaderboard(%s): %v", key, err)
		}
		if len(rows) != 3 || rows[2].Signature != "broken" {
			t.Errorf("sort by %s: broken agent not isolated last", key)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	testCases := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{in: "", want: DefaultSortKey},
		{in: "cumulative_return", want: SortCumulativeReturn},
		{in: "sortino_ratio", want: SortSortino},
		{in: "alphabetical", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseSortKey(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseSortKey(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseSortKey(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDetail(t *testing.T) {
	store := leaderboardStore(t)

	detail, err := Detail(store, testArchive(t), "loser")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Meta.Sig() != "loser" {
		t.Errorf("meta signature = %q, want loser", detail.Meta.Sig())
	}
	if detail.Metrics == nil {
		t.Fatal("detail has no metrics")
	}
	if len(detail.Curve) != 3 {
		t.Errorf("curve has %d points, want 3", len(detail.Curve))
	}
	// Only the actual trades, not the registration record.
	if len(detail.Trades) != 2 {
		t.Errorf("detail lists %d trades, want 2", len(detail.Trades))
	}

	if _, err := Detail(store, testArchive(t), "nobody"); err == nil {
		t.Error("Detail accepted an unknown agent")
	}
}
