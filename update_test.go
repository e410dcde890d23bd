package arena

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wsoa/arena/date"
)

func TestBinanceDaily(t *testing.T) {
	day := date.MustParse("2025-01-10")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("exchange symbol = %q, want BTCUSDT", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want 1d", got)
		}
		fmt.Fprintf(w, `[[%d, "90000", "91000", "89000", "90500", "1200", %d]]`,
			day.UnixMilli(), day.Add(1).UnixMilli()-1)
	}))
	defer server.Close()

	old := binanceBaseURL
	binanceBaseURL = server.URL
	defer func() { binanceBaseURL = old }()

	history, err := binanceDaily(http.DefaultClient, "BTC-USDT", day, day)
	if err != nil {
		t.Fatalf("binanceDaily: %v", err)
	}
	bar, ok := history.Get(day)
	if !ok {
		t.Fatal("fetched history misses the requested day")
	}
	if !bar.Open.Equal(dec("90000")) || !bar.Close.Equal(dec("90500")) {
		t.Errorf("bar = %+v, want open 90000 close 90500", bar)
	}
	if bar.Partial {
		t.Error("a settled past day decoded as partial")
	}
}

func TestUpdate_FillsMissingDays(t *testing.T) {
	day := date.Today().Add(-2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[[%d, "100", "110", "90", "105", "10", %d]]`,
			day.UnixMilli(), day.Add(1).UnixMilli()-1)
	}))
	defer server.Close()

	old := binanceBaseURL
	binanceBaseURL = server.URL
	defer func() { binanceBaseURL = old }()

	archive := NewPriceArchive()
	archive.AddSymbol("SOL-USDT")
	if err := archive.Update(day); err != nil {
		t.Fatalf("Update: %v", err)
	}

	price, found := archive.Close("SOL-USDT", day)
	if !found || !price.Equal(dec("105")) {
		t.Errorf("Close after update = (%s, %v), want (105, true)", price, found)
	}

	// Already up to date: a second update must not refetch.
	server.Close()
	if err := archive.Update(day); err != nil {
		t.Errorf("no-op Update failed: %v", err)
	}
}

func TestBinanceSymbol(t *testing.T) {
	if got := binanceSymbol("BTC-USDT"); got != "BTCUSDT" {
		t.Errorf("binanceSymbol = %q, want BTCUSDT", got)
	}
}
