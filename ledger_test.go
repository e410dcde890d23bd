package arena

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

func d(s string) date.Date { return date.MustParse(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// holdings builds a Holdings map from alternating symbol, quantity pairs.
func holdings(pairs ...string) Holdings {
	h := Holdings{}
	for i := 0; i < len(pairs); i += 2 {
		h[pairs[i]] = dec(pairs[i+1])
	}
	return h
}

func seedLedger() *Ledger {
	l := NewLedger("tester--model")
	l.Append(
		Snapshot{Date: d("2025-01-10"), ID: 0, Action: NewNoTrade(), Holdings: holdings(Cash, "10000")},
		Snapshot{Date: d("2025-01-12"), ID: 1, Action: Action{Kind: BuyCrypto, Symbol: "BTC-USDT", Amount: dec("0.1")}, Holdings: holdings(Cash, "1000", "BTC-USDT", "0.1")},
		Snapshot{Date: d("2025-01-12"), ID: 2, Action: Action{Kind: SellCrypto, Symbol: "BTC-USDT", Amount: dec("0.05")}, Holdings: holdings(Cash, "5500", "BTC-USDT", "0.05")},
		Snapshot{Date: d("2025-01-20"), ID: 3, Action: NewNoTrade(), Holdings: holdings(Cash, "5500", "BTC-USDT", "0.05")},
	)
	return l
}

func TestLedger_Latest(t *testing.T) {
	ledger := seedLedger()

	testCases := []struct {
		name   string
		asOf   string
		wantID int
		want   Holdings
	}{
		{
			name:   "before any snapshot",
			asOf:   "2025-01-09",
			wantID: -1,
			want:   Holdings{},
		},
		{
			name:   "on the seed day",
			asOf:   "2025-01-10",
			wantID: 0,
			want:   holdings(Cash, "10000"),
		},
		{
			name:   "same day resolves to the greatest id",
			asOf:   "2025-01-12",
			wantID: 2,
			want:   holdings(Cash, "5500", "BTC-USDT", "0.05"),
		},
		{
			name:   "gap falls back to the most recent earlier date",
			asOf:   "2025-01-15",
			wantID: 2,
			want:   holdings(Cash, "5500", "BTC-USDT", "0.05"),
		},
		{
			name:   "after the last snapshot",
			asOf:   "2025-02-01",
			wantID: 3,
			want:   holdings(Cash, "5500", "BTC-USDT", "0.05"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, id := ledger.Latest(d(tc.asOf))
			if id != tc.wantID {
				t.Errorf("Latest(%s) id = %d, want %d", tc.asOf, id, tc.wantID)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Latest(%s) holdings = %v, want %v", tc.asOf, got, tc.want)
			}
		})
	}
}

func TestLedger_InitAt(t *testing.T) {
	ledger := seedLedger()

	testCases := []struct {
		name string
		asOf string
		want Holdings
	}{
		{
			name: "never returns same-day state",
			asOf: "2025-01-12",
			want: holdings(Cash, "10000"),
		},
		{
			name: "strictly earlier date wins",
			asOf: "2025-01-13",
			want: holdings(Cash, "5500", "BTC-USDT", "0.05"),
		},
		{
			name: "no earlier snapshot",
			asOf: "2025-01-10",
			want: Holdings{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ledger.InitAt(d(tc.asOf)); !got.Equal(tc.want) {
				t.Errorf("InitAt(%s) = %v, want %v", tc.asOf, got, tc.want)
			}
		})
	}
}

func TestLedger_AllDates(t *testing.T) {
	ledger := seedLedger()
	want := []date.Date{d("2025-01-10"), d("2025-01-12"), d("2025-01-20")}
	if got := ledger.AllDates(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllDates() = %v, want %v", got, want)
	}
}

func TestLedger_AppendKeepsOrder(t *testing.T) {
	l := NewLedger("x")
	// Appended out of order on purpose.
	l.Append(Snapshot{Date: d("2025-03-02"), ID: 1, Action: NewNoTrade(), Holdings: holdings(Cash, "2")})
	l.Append(Snapshot{Date: d("2025-03-01"), ID: 0, Action: NewNoTrade(), Holdings: holdings(Cash, "1")})

	want := []date.Date{d("2025-03-01"), d("2025-03-02")}
	if got := l.AllDates(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllDates() = %v, want %v", got, want)
	}
	h, id := l.Latest(d("2025-03-02"))
	if id != 1 || !h.Equal(holdings(Cash, "2")) {
		t.Errorf("Latest() = (%v, %d), want ({CASH:2}, 1)", h, id)
	}
}

func TestLedger_ValidateAppend(t *testing.T) {
	ledger := seedLedger()

	early := Snapshot{Date: d("2025-01-11"), ID: 9, Action: NewNoTrade(), Holdings: holdings(Cash, "1")}
	if err := ledger.validateAppend(early); err == nil {
		t.Error("validateAppend accepted a snapshot preceding the ledger tail")
	}

	negative := Snapshot{Date: d("2025-02-01"), ID: 4, Action: NewNoTrade(), Holdings: holdings(Cash, "-1")}
	if err := ledger.validateAppend(negative); err == nil {
		t.Error("validateAppend accepted negative holdings")
	}

	good := Snapshot{Date: d("2025-02-01"), ID: 4, Action: NewNoTrade(), Holdings: holdings(Cash, "1")}
	if err := ledger.validateAppend(good); err != nil {
		t.Errorf("validateAppend rejected a valid snapshot: %v", err)
	}
}

func TestDecodeSnapshots_RoundTrip(t *testing.T) {
	ledger := seedLedger()
	var snapshots []Snapshot
	for _, s := range ledger.Snapshots() {
		snapshots = append(snapshots, s)
	}

	var buf strings.Builder
	if err := EncodeSnapshots(&buf, snapshots); err != nil {
		t.Fatalf("EncodeSnapshots: %v", err)
	}

	got, err := DecodeSnapshots(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("DecodeSnapshots: %v", err)
	}
	if len(got) != len(snapshots) {
		t.Fatalf("round trip lost records: got %d, want %d", len(got), len(snapshots))
	}
	for i := range got {
		if got[i].Date != snapshots[i].Date || got[i].ID != snapshots[i].ID {
			t.Errorf("record %d = (%v, %d), want (%v, %d)", i, got[i].Date, got[i].ID, snapshots[i].Date, snapshots[i].ID)
		}
		if !got[i].Holdings.Equal(snapshots[i].Holdings) {
			t.Errorf("record %d holdings = %v, want %v", i, got[i].Holdings, snapshots[i].Holdings)
		}
	}
}

func TestDecodeSnapshots_ToleratesBlankLines(t *testing.T) {
	in := `
{"date": "2025-01-10", "id": 0, "this_action": {"action": "no_trade", "symbol": "", "amount": 0}, "positions": {"CASH": 10000}}

{"date": "2025-01-11", "id": 1, "this_action": {"action": "buy_crypto", "symbol": "ETH-USDT", "amount": 2}, "positions": {"CASH": 4000, "ETH-USDT": 2}}
`
	got, err := DecodeSnapshots(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeSnapshots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	if got[1].Action.Kind != BuyCrypto || got[1].Action.Symbol != "ETH-USDT" {
		t.Errorf("second action = %v, want buy ETH-USDT", got[1].Action)
	}
}

func TestDecodeSnapshots_CorruptLineFails(t *testing.T) {
	in := `{"date": "2025-01-10", "id": 0, "this_action": {"action": "no_trade", "symbol": "", "amount": 0}, "positions": {"CASH": 10000}}
{not json}`
	if _, err := DecodeSnapshots(strings.NewReader(in)); err == nil {
		t.Error("DecodeSnapshots accepted a corrupt line")
	}
}

func TestEncodeSnapshot_FieldOrder(t *testing.T) {
	s := Snapshot{
		Date:     d("2025-01-10"),
		ID:       3,
		Action:   Action{Kind: BuyCrypto, Symbol: "BTC-USDT", Amount: dec("0.5")},
		Holdings: holdings(Cash, "5000", "BTC-USDT", "0.5"),
	}
	var buf strings.Builder
	if err := EncodeSnapshot(&buf, s); err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	line := buf.String()

	order := []string{`"date"`, `"id"`, `"this_action"`, `"positions"`}
	last := -1
	for _, field := range order {
		i := strings.Index(line, field)
		if i < 0 {
			t.Fatalf("field %s missing from %q", field, line)
		}
		if i < last {
			t.Errorf("field %s out of canonical order in %q", field, line)
		}
		last = i
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("record %q does not end with a newline", line)
	}
}
