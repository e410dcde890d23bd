package arena

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownAgent is returned when no ledger exists for a signature.
var ErrUnknownAgent = errors.New("unknown agent")

// StorageError reports an unreadable or corrupt backing file. It aborts the
// current operation; callers must not treat it as an empty ledger or archive.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error on %q: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidAmountError rejects an instruction whose amount is not a finite,
// strictly positive number.
type InvalidAmountError struct {
	Amount string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %q, must be a finite positive number", e.Amount)
}

// UnknownSymbolError rejects a buy whose symbol has no price on the trade date.
type UnknownSymbolError struct {
	Symbol string
	Date   string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q has no price on %s", e.Symbol, e.Date)
}

// InsufficientCashError rejects a buy that would overdraw the cash balance.
// The trade is not partially filled.
type InsufficientCashError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
	Symbol    string
}

func (e *InsufficientCashError) Error() string {
	return fmt.Sprintf("insufficient cash to buy %s: required %s, available %s",
		e.Symbol, e.Required, e.Available)
}

// InsufficientHoldingsError rejects a sell of more units than are held.
type InsufficientHoldingsError struct {
	Held      decimal.Decimal
	Requested decimal.Decimal
	Symbol    string
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient %s to sell: have %s, want to sell %s",
		e.Symbol, e.Held, e.Requested)
}

// IsTradeError reports whether err is one of the recoverable trade-level
// rejections. Trade errors never mutate the ledger; the caller may retry
// with a corrected instruction.
func IsTradeError(err error) bool {
	var (
		ia *InvalidAmountError
		us *UnknownSymbolError
		ic *InsufficientCashError
		ih *InsufficientHoldingsError
	)
	return errors.As(err, &ia) || errors.As(err, &us) ||
		errors.As(err, &ic) || errors.As(err, &ih)
}
