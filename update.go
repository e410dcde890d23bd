package arena

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wsoa/arena/date"
)

// This file contains functions to update the price archive with latest
// exchange candles.

// binanceBaseURL is a variable so tests can point the updater at a stub
// server.
var binanceBaseURL = "https://api.binance.com"

// binanceSymbol converts an archive symbol like "BTC-USDT" to the
// exchange's "BTCUSDT" form.
func binanceSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "")
}

// binanceDaily fetches the daily candles for one symbol in [from, to].
func binanceDaily(client *http.Client, symbol string, from, to date.Date) (date.History[Bar], error) {
	var history date.History[Bar]

	q := url.Values{}
	q.Set("symbol", binanceSymbol(symbol))
	q.Set("interval", "1d")
	q.Set("startTime", fmt.Sprintf("%d", from.UnixMilli()))
	q.Set("endTime", fmt.Sprintf("%d", to.Add(1).UnixMilli()-1))
	q.Set("limit", "1000")
	addr := binanceBaseURL + "/api/v3/klines?" + q.Encode()

	// Each kline mixes numeric timestamps with quoted prices, so decode
	// loosely and convert field by field.
	var klines [][]any
	if err := jwget(client, addr, &klines); err != nil {
		return history, err
	}

	today := date.Today()
	for _, k := range klines {
		if len(k) < 6 {
			return history, fmt.Errorf("kline for %s has %d fields, want at least 6", symbol, len(k))
		}
		openTime, ok := k[0].(float64)
		if !ok {
			return history, fmt.Errorf("kline for %s has open time %T, want number", symbol, k[0])
		}
		day := date.FromTime(time.UnixMilli(int64(openTime)).UTC())
		bar := Bar{
			Open:   toDecimal(k[1]),
			High:   toDecimal(k[2]),
			Low:    toDecimal(k[3]),
			Close:  toDecimal(k[4]),
			Volume: toDecimal(k[5]),
			// The running day's candle has not closed. Only its open is
			// real, everything else would leak intraday state.
			Partial: !day.Before(today),
		}
		history.Append(day, bar)
	}
	return history, nil
}

// AddSymbol ensures the archive tracks symbol, with an empty series if it
// is new.
func (a *PriceArchive) AddSymbol(symbol string) {
	if a.series[symbol] == nil {
		a.series[symbol] = &date.History[Bar]{}
	}
}

// Update fetches missing daily candles for every tracked symbol up to and
// including end. Symbols already carrying end's bar are skipped. A failing
// symbol does not stop the others; the failures come back joined.
func (a *PriceArchive) Update(end date.Date) error {
	client := daily()

	var errs error
	for _, symbol := range a.Symbols() {
		history := a.series[symbol]
		latest, _ := history.Latest()
		if history.Len() > 0 && !latest.Before(end) {
			continue
		}

		from := end.Add(-999)
		if history.Len() > 0 {
			from = latest.Add(1)
		}

		fetched, err := binanceDaily(client, symbol, from, end)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to get candles for %s: %w", symbol, err))
			continue
		}
		if fetched.Len() == 0 {
			log.Printf("no new candles for %q between %s and %s", symbol, from, end)
			continue
		}
		for day, bar := range fetched.Values() {
			history.Append(day, bar)
		}
	}
	return errs
}

// EncodePriceArchive writes the archive in its on-disk form: one JSON
// document per symbol per line, symbols sorted, days sorted ascending
// inside each document. Partial bars persist only their open.
func (a *PriceArchive) EncodePriceArchive(w io.Writer) error {
	for _, symbol := range a.Symbols() {
		doc, err := a.encodeSymbol(symbol)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(doc, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func (a *PriceArchive) encodeSymbol(symbol string) ([]byte, error) {
	history := a.series[symbol]

	var meta jsonObjectWriter
	meta.Append("1. Information", "Daily Prices and Volumes").
		Append("2. Symbol", symbol)

	days := make([]date.Date, 0, history.Len())
	for day := range history.Days() {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var series jsonObjectWriter
	for _, day := range days {
		bar, _ := history.Get(day)
		var fields jsonObjectWriter
		fields.Append(barOpen, bar.Open.String())
		if !bar.Partial {
			fields.Append(barHigh, bar.High.String()).
				Append(barLow, bar.Low.String()).
				Append(barClose, bar.Close.String()).
				Append(barVolume, bar.Volume.String())
		}
		series.Append(day.String(), &fields)
	}

	var doc jsonObjectWriter
	doc.Append("Meta Data", &meta).
		Append("Time Series (Daily)", &series)
	return doc.MarshalJSON()
}

// SavePriceArchive atomically rewrites the archive file at path.
func (a *PriceArchive) SavePriceArchive(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".archive-*")
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := a.EncodePriceArchive(tmp); err != nil {
		tmp.Close()
		return &StorageError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	return nil
}

