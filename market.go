package arena

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

// Bar holds one symbol's prices for one day. The open is the execution
// price for buys, the close the mark price for sells and valuation.
//
// Partial marks the current trading day's placeholder: the day has not
// closed yet, so only the open is usable and high/low/close/volume carry
// no information.
type Bar struct {
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal

	Partial bool
}

// Source document field labels.
const (
	metaSymbolPath  = `$["Meta Data"]["2. Symbol"]`
	seriesKeyPrefix = "Time Series"

	barOpen   = "1. buy price"
	barHigh   = "2. high"
	barLow    = "3. low"
	barClose  = "4. sell price"
	barVolume = "5. volume"
)

// PriceArchive is a read-only view over the shared multi-symbol price
// file: one JSON document per line, each holding a single symbol's full
// daily series.
//
// An archive can be pinned to a trading day with SetToday. From that day
// on, close, high, low and volume are treated as unavailable even when the
// file structurally carries them, because the day has not closed and using
// them would leak future information.
type PriceArchive struct {
	series map[string]*date.History[Bar]
	today  date.Date
}

// NewPriceArchive creates an empty archive tracking no symbols.
func NewPriceArchive() *PriceArchive {
	return &PriceArchive{series: make(map[string]*date.History[Bar])}
}

// LoadPriceArchive reads the archive at path.
func LoadPriceArchive(path string) (*PriceArchive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	defer file.Close()
	archive, err := DecodePriceArchive(file)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	return archive, nil
}

// DecodePriceArchive parses a multi-symbol price stream. Blank lines are
// skipped; a line that is not valid JSON or carries no symbol fails the
// whole decode. A symbol appearing on several lines keeps the union of its
// days, later lines overwriting earlier ones day by day.
func DecodePriceArchive(r io.Reader) (*PriceArchive, error) {
	archive := NewPriceArchive()

	scanner := bufio.NewScanner(r)
	// One line holds a symbol's entire series, so lines run well past the
	// default scanner limit.
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := archive.decodeDocument(raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return archive, nil
}

func (a *PriceArchive) decodeDocument(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}

	sym, err := jsonpath.Get(metaSymbolPath, doc)
	if err != nil {
		return fmt.Errorf("no symbol in metadata: %w", err)
	}
	symbol, ok := sym.(string)
	if !ok || symbol == "" {
		return fmt.Errorf("symbol in metadata is %T, want non-empty string", sym)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return fmt.Errorf("document is %T, want object", doc)
	}
	var series map[string]any
	for key, value := range obj {
		if strings.HasPrefix(key, seriesKeyPrefix) {
			series, _ = value.(map[string]any)
			break
		}
	}
	if series == nil {
		return fmt.Errorf("symbol %s: no %q block", symbol, seriesKeyPrefix)
	}

	history := a.series[symbol]
	if history == nil {
		history = &date.History[Bar]{}
		a.series[symbol] = history
	}
	for day, value := range series {
		d, err := date.Parse(day)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", symbol, err)
		}
		fields, _ := value.(map[string]any)
		history.Append(d, decodeBar(fields))
	}
	return nil
}

func decodeBar(fields map[string]any) Bar {
	_, hasClose := fields[barClose]
	return Bar{
		Open:    toDecimal(fields[barOpen]),
		High:    toDecimal(fields[barHigh]),
		Low:     toDecimal(fields[barLow]),
		Close:   toDecimal(fields[barClose]),
		Volume:  toDecimal(fields[barVolume]),
		Partial: !hasClose,
	}
}

// toDecimal converts the field encodings found in the wild (quoted
// numbers, json numbers, floats). Anything else decodes as zero.
func toDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err == nil {
			return d
		}
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(x)
	}
	return decimal.Zero
}

// SetToday pins the archive to a trading day, enabling the close embargo
// for that day and any later one.
func (a *PriceArchive) SetToday(d date.Date) { a.today = d }

// Today returns the pinned trading day, zero if none.
func (a *PriceArchive) Today() date.Date { return a.today }

// embargoed reports whether close-side fields are off limits on d.
func (a *PriceArchive) embargoed(d date.Date) bool {
	return !a.today.IsZero() && !d.Before(a.today)
}

// Symbols returns the symbols present in the archive, sorted.
func (a *PriceArchive) Symbols() []string {
	syms := make([]string, 0, len(a.series))
	for s := range a.series {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// Open returns the open price for symbol on exactly day d.
func (a *PriceArchive) Open(symbol string, d date.Date) (decimal.Decimal, bool) {
	history := a.series[symbol]
	if history == nil {
		return decimal.Zero, false
	}
	bar, ok := history.Get(d)
	if !ok {
		return decimal.Zero, false
	}
	return bar.Open, true
}

// Close returns the close price for symbol on exactly day d. It is absent
// for partial bars and for any day under the current-day embargo.
func (a *PriceArchive) Close(symbol string, d date.Date) (decimal.Decimal, bool) {
	if a.embargoed(d) {
		return decimal.Zero, false
	}
	history := a.series[symbol]
	if history == nil {
		return decimal.Zero, false
	}
	bar, ok := history.Get(d)
	if !ok || bar.Partial {
		return decimal.Zero, false
	}
	return bar.Close, true
}

// CloseAsOf returns the most recent usable close for symbol on or before
// day d, skipping partial bars and embargoed days. It is how holdings are
// marked on days the symbol did not print.
func (a *PriceArchive) CloseAsOf(symbol string, d date.Date) (decimal.Decimal, bool) {
	history := a.series[symbol]
	if history == nil {
		return decimal.Zero, false
	}
	var price decimal.Decimal
	found := false
	for day, bar := range history.Values() {
		if day.After(d) || a.embargoed(day) {
			break
		}
		if bar.Partial {
			continue
		}
		price, found = bar.Close, true
	}
	return price, found
}
