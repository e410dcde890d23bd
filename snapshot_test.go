package arena

import (
	"reflect"
	"testing"
)

func TestParseActionKind(t *testing.T) {
	testCases := []struct {
		in      string
		want    ActionKind
		wantErr bool
	}{
		{in: "buy_crypto", want: BuyCrypto},
		{in: "sell_crypto", want: SellCrypto},
		{in: "no_trade", want: NoTrade},
		{in: "hold", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseActionKind(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseActionKind(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseActionKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHoldings_Symbols(t *testing.T) {
	h := holdings(Cash, "100", "ETH-USDT", "2", "BTC-USDT", "0.5", "SOL-USDT", "0")
	// CASH and zero quantities are not positions.
	want := []string{"BTC-USDT", "ETH-USDT"}
	if got := h.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestHoldings_CloneIsIndependent(t *testing.T) {
	h := holdings(Cash, "100", "BTC-USDT", "1")
	clone := h.Clone()
	clone[Cash] = dec("0")
	if !h.Cash().Equal(dec("100")) {
		t.Errorf("mutating the clone changed the original: CASH = %s", h.Cash())
	}
}

func TestNewHoldings(t *testing.T) {
	h := NewHoldings(dec("10000"), []string{"BTC-USDT", "ETH-USDT"})
	if !h.Cash().Equal(dec("10000")) {
		t.Errorf("Cash() = %s, want 10000", h.Cash())
	}
	for _, sym := range []string{"BTC-USDT", "ETH-USDT"} {
		if !h.Quantity(sym).IsZero() {
			t.Errorf("Quantity(%s) = %s, want 0", sym, h.Quantity(sym))
		}
	}
}

func TestSnapshot_Ordering(t *testing.T) {
	a := Snapshot{Date: d("2025-01-10"), ID: 2}
	b := Snapshot{Date: d("2025-01-10"), ID: 3}
	c := Snapshot{Date: d("2025-01-11"), ID: 0}

	if !a.before(b) || !b.before(c) || c.before(a) {
		t.Error("snapshot ordering is not (date, id) ascending")
	}
}
