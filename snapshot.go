package arena

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

// Cash is the reserved pseudo-symbol under which an agent's settlement
// balance is held. It is present in every initialized ledger.
const Cash = "CASH"

// Precision is the number of fractional digits kept for every stored
// quantity. Rounding at each trade prevents unbounded floating
// accumulation across thousands of trades.
const Precision = 4

// DefaultSymbols is the default crypto universe (USDT pairs) seeded into a
// new agent's ledger.
var DefaultSymbols = []string{
	"BTC-USDT", "ETH-USDT", "XRP-USDT", "SOL-USDT", "ADA-USDT",
	"SUI-USDT", "LINK-USDT", "AVAX-USDT", "LTC-USDT", "DOT-USDT",
}

// ActionKind identifies the trade that produced a snapshot.
type ActionKind string

const (
	// NoTrade marks a snapshot that carries holdings forward unchanged.
	NoTrade ActionKind = "no_trade"
	// BuyCrypto marks a snapshot produced by a buy.
	BuyCrypto ActionKind = "buy_crypto"
	// SellCrypto marks a snapshot produced by a sell.
	SellCrypto ActionKind = "sell_crypto"
)

// ParseActionKind parses a string into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case NoTrade, BuyCrypto, SellCrypto:
		return ActionKind(s), nil
	default:
		return "", fmt.Errorf("unknown action kind: %q", s)
	}
}

// Action describes the trade that produced a snapshot.
// The zero Action is not valid; use NewNoTrade for bookkeeping records.
type Action struct {
	Kind   ActionKind
	Symbol string
	Amount decimal.Decimal
}

// NewNoTrade returns the action tagged on bookkeeping snapshots.
func NewNoTrade() Action { return Action{Kind: NoTrade} }

// IsTrade reports whether the action moved any position.
func (a Action) IsTrade() bool { return a.Kind == BuyCrypto || a.Kind == SellCrypto }

func (a Action) String() string {
	if !a.IsTrade() {
		return string(NoTrade)
	}
	return fmt.Sprintf("%s %s %s", a.Kind, a.Amount, a.Symbol)
}

// Holdings maps an asset symbol (plus the Cash pseudo-symbol) to a
// non-negative quantity.
type Holdings map[string]decimal.Decimal

// NewHoldings returns holdings seeded with the given cash balance and every
// symbol at zero.
func NewHoldings(cash decimal.Decimal, symbols []string) Holdings {
	h := make(Holdings, len(symbols)+1)
	h[Cash] = cash
	for _, sym := range symbols {
		h[sym] = decimal.Zero
	}
	return h
}

// Cash returns the settlement balance, zero if the ledger was never initialized.
func (h Holdings) Cash() decimal.Decimal { return h[Cash] }

// Quantity returns the held quantity of a symbol, zero when absent.
func (h Holdings) Quantity(symbol string) decimal.Decimal { return h[symbol] }

// Clone returns an independent copy of the holdings.
func (h Holdings) Clone() Holdings {
	c := make(Holdings, len(h))
	maps.Copy(c, h)
	return c
}

// Symbols returns the non-cash symbols with a non-zero position, sorted.
func (h Holdings) Symbols() []string {
	syms := make([]string, 0, len(h))
	for sym, qty := range h {
		if sym == Cash || qty.IsZero() {
			continue
		}
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}

// String formats the holdings as "CASH 5000, BTC-USDT 0.5", cash first.
func (h Holdings) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", Cash, h.Cash())
	for _, sym := range h.Symbols() {
		fmt.Fprintf(&sb, ", %s %s", sym, h[sym])
	}
	return sb.String()
}

// Equal reports whether two holdings carry the same quantities. An absent
// key counts as zero, so a seeded zero position and a missing one compare
// equal.
func (h Holdings) Equal(o Holdings) bool {
	for sym, qty := range h {
		if !qty.Equal(o.Quantity(sym)) {
			return false
		}
	}
	for sym, qty := range o {
		if !qty.Equal(h.Quantity(sym)) {
			return false
		}
	}
	return true
}

// check verifies the holdings invariant: no negative quantity, ever.
func (h Holdings) check() error {
	for sym, qty := range h {
		if qty.IsNegative() {
			return fmt.Errorf("negative holding %s for %q", qty, sym)
		}
	}
	return nil
}

// Snapshot is one immutable record in an agent's ledger: the complete
// position state after the tagged action was applied.
type Snapshot struct {
	Date     date.Date
	ID       int // sequence id, unique per date, assigned by the writer
	Action   Action
	Holdings Holdings
}

// before orders snapshots by (date, id).
func (s Snapshot) before(o Snapshot) bool {
	if c := s.Date.Compare(o.Date); c != 0 {
		return c < 0
	}
	return s.ID < o.ID
}
