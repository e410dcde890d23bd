package arena

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

// Instruction is a single buy or sell decision issued by an agent.
type Instruction struct {
	Kind   ActionKind
	Symbol string
	Amount decimal.Decimal
}

// ParseInstruction builds an Instruction from its textual form, as received
// from an agent or the command line. The amount must parse as a finite,
// strictly positive number.
func ParseInstruction(action, symbol, amount string) (Instruction, error) {
	kind, err := ParseActionKind(action)
	if err != nil {
		return Instruction{}, err
	}
	if kind != BuyCrypto && kind != SellCrypto {
		return Instruction{}, fmt.Errorf("action %q is not a trade", action)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Instruction{}, &InvalidAmountError{Amount: amount}
	}
	ins := Instruction{Kind: kind, Symbol: symbol, Amount: qty}
	if !qty.IsPositive() {
		return ins, &InvalidAmountError{Amount: amount}
	}
	return ins, nil
}

// Executor applies trade instructions to agent ledgers. Each execution runs
// under the agent's exclusive lock so that the read-validate-append cycle
// is atomic with respect to concurrent executions on the same ledger.
type Executor struct {
	store   *Store
	archive *PriceArchive

	// Flags, when set, receives the "a trade occurred today" marker after
	// each successful execution. It is process-wide caller state, not part
	// of any ledger.
	Flags *FlagStore
}

// NewExecutor creates an executor settling against archive prices.
func NewExecutor(store *Store, archive *PriceArchive) *Executor {
	return &Executor{store: store, archive: archive}
}

// Execute validates and applies one instruction for the agent on the given
// day, and returns the appended snapshot.
//
// Buys settle at the day's open price; a missing price rejects the buy with
// UnknownSymbolError. Sells settle at the day's close price; a missing
// close (including the current day's embargoed placeholder) falls back to
// price 0, a proceeds-less liquidation, so a holder can always exit a
// position even with incomplete market data. All stored values are rounded
// to 4 fractional digits.
func (e *Executor) Execute(signature string, on date.Date, ins Instruction) (Snapshot, error) {
	if !ins.Amount.IsPositive() {
		return Snapshot{}, &InvalidAmountError{Amount: ins.Amount.String()}
	}

	var out Snapshot
	err := e.store.withLock(signature, func() error {
		ledger, err := e.store.Ledger(signature)
		if err != nil {
			return err
		}
		holdings, seq := ledger.Latest(on)

		next, err := e.settle(holdings, on, ins)
		if err != nil {
			return err
		}

		out = Snapshot{
			Date:     on,
			ID:       seq + 1,
			Action:   Action{Kind: ins.Kind, Symbol: ins.Symbol, Amount: ins.Amount},
			Holdings: next,
		}
		if err := ledger.validateAppend(out); err != nil {
			return err
		}
		return e.store.appendSnapshot(signature, out)
	})
	if err != nil {
		return Snapshot{}, err
	}

	if e.Flags != nil {
		if err := e.Flags.Set(KeyIfTrade, FlagTrue); err != nil {
			return out, err
		}
	}
	return out, nil
}

// settle computes the holdings resulting from applying ins to holdings on
// the given day. It never partially fills.
func (e *Executor) settle(holdings Holdings, on date.Date, ins Instruction) (Holdings, error) {
	next := holdings.Clone()
	switch ins.Kind {
	case BuyCrypto:
		price, ok := e.archive.Open(ins.Symbol, on)
		if !ok {
			return nil, &UnknownSymbolError{Symbol: ins.Symbol, Date: on.String()}
		}
		cost := price.Mul(ins.Amount).Round(Precision)
		if cash := next.Cash(); cash.LessThan(cost) {
			return nil, &InsufficientCashError{Required: cost, Available: cash, Symbol: ins.Symbol}
		}
		next[Cash] = next.Cash().Sub(cost)
		next[ins.Symbol] = next.Quantity(ins.Symbol).Add(ins.Amount)

	case SellCrypto:
		held := next.Quantity(ins.Symbol)
		if held.LessThan(ins.Amount) {
			return nil, &InsufficientHoldingsError{Held: held, Requested: ins.Amount, Symbol: ins.Symbol}
		}
		// Missing close settles at zero rather than rejecting the sell.
		price, ok := e.archive.Close(ins.Symbol, on)
		if !ok {
			price = decimal.Zero
		}
		proceeds := price.Mul(ins.Amount).Round(Precision)
		next[Cash] = next.Cash().Add(proceeds)
		next[ins.Symbol] = held.Sub(ins.Amount)

	default:
		return nil, fmt.Errorf("action %q is not executable", ins.Kind)
	}

	for sym, qty := range next {
		next[sym] = qty.Round(Precision)
	}
	return next, nil
}
