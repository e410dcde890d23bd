package arena

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodePriceArchive(t *testing.T) {
	archive := testArchive(t)

	if got, want := archive.Symbols(), []string{"BTC-USDT", "ETH-USDT"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}

	open, found := archive.Open("BTC-USDT", d("2025-01-10"))
	if !found || !open.Equal(dec("90000")) {
		t.Errorf("Open = (%s, %v), want (90000, true)", open, found)
	}
	closePrice, found := archive.Close("BTC-USDT", d("2025-01-10"))
	if !found || !closePrice.Equal(dec("90500")) {
		t.Errorf("Close = (%s, %v), want (90500, true)", closePrice, found)
	}
}

func TestPriceArchive_PartialDay(t *testing.T) {
	archive := testArchive(t)

	// 2025-01-11 carries only the open: the day has not closed.
	open, found := archive.Open("BTC-USDT", d("2025-01-11"))
	if !found || !open.Equal(dec("90500")) {
		t.Errorf("Open = (%s, %v), want (90500, true)", open, found)
	}
	if _, found := archive.Close("BTC-USDT", d("2025-01-11")); found {
		t.Error("Close returned a value for a partial day")
	}

	// As-of falls back to the last settled close.
	price, found := archive.CloseAsOf("BTC-USDT", d("2025-01-11"))
	if !found || !price.Equal(dec("90500")) {
		t.Errorf("CloseAsOf = (%s, %v), want (90500, true)", price, found)
	}
}

func TestPriceArchive_TodayEmbargo(t *testing.T) {
	archive := testArchive(t)
	archive.SetToday(d("2025-01-10"))

	// The close is structurally present but the day is the system's today,
	// so it must read as unavailable.
	if _, found := archive.Close("BTC-USDT", d("2025-01-10")); found {
		t.Error("Close leaked the embargoed current-day value")
	}
	if open, found := archive.Open("BTC-USDT", d("2025-01-10")); !found || !open.Equal(dec("90000")) {
		t.Errorf("Open = (%s, %v), the open must stay usable on the current day", open, found)
	}
	if _, found := archive.CloseAsOf("BTC-USDT", d("2025-01-10")); found {
		t.Error("CloseAsOf leaked an embargoed value with no earlier close")
	}
}

func TestPriceArchive_MissingSymbol(t *testing.T) {
	archive := testArchive(t)
	if _, found := archive.Open("DOGE-USDT", d("2025-01-10")); found {
		t.Error("Open returned a value for an untracked symbol")
	}
	if _, found := archive.CloseAsOf("DOGE-USDT", d("2025-01-10")); found {
		t.Error("CloseAsOf returned a value for an untracked symbol")
	}
}

func TestDecodePriceArchive_SkipsBlankFailsCorrupt(t *testing.T) {
	withBlank := testPrices + "\n\n"
	if _, err := DecodePriceArchive(strings.NewReader(withBlank)); err != nil {
		t.Errorf("DecodePriceArchive rejected blank lines: %v", err)
	}

	corrupt := testPrices + "{not json}\n"
	if _, err := DecodePriceArchive(strings.NewReader(corrupt)); err == nil {
		t.Error("DecodePriceArchive accepted a corrupt line")
	}

	noSymbol := `{"Meta Data": {"1. Information": "x"}, "Time Series (Daily)": {}}` + "\n"
	if _, err := DecodePriceArchive(strings.NewReader(noSymbol)); err == nil {
		t.Error("DecodePriceArchive accepted a document without a symbol")
	}
}

func TestPriceArchive_EncodeRoundTrip(t *testing.T) {
	archive := testArchive(t)

	var buf strings.Builder
	if err := archive.EncodePriceArchive(&buf); err != nil {
		t.Fatalf("EncodePriceArchive: %v", err)
	}
	decoded, err := DecodePriceArchive(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("DecodePriceArchive: %v", err)
	}

	if got, want := decoded.Symbols(), archive.Symbols(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip symbols = %v, want %v", got, want)
	}
	closePrice, found := decoded.Close("ETH-USDT", d("2025-01-10"))
	if !found || !closePrice.Equal(dec("3050")) {
		t.Errorf("round trip Close = (%s, %v), want (3050, true)", closePrice, found)
	}
	// The partial day must stay partial after a round trip.
	if _, found := decoded.Close("BTC-USDT", d("2025-01-11")); found {
		t.Error("round trip settled a partial day")
	}
}
