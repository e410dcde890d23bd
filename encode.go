package arena

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// actionCmd is the wire form of an Action. All three fields are always
// written, a no_trade carries an empty symbol and a zero amount.
type actionCmd struct {
	Action string          `json:"action"`
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// snapshotCmd is the wire form of one ledger record.
type snapshotCmd struct {
	Date      date.Date                  `json:"date"`
	ID        int                        `json:"id"`
	Action    actionCmd                  `json:"this_action"`
	Positions map[string]decimal.Decimal `json:"positions"`
}

// DecodeSnapshots reads a stream of JSONL ledger records, decodes each line
// into a Snapshot, and returns them ordered by (date, id). Blank lines are
// tolerated and skipped; a line that fails to decode aborts the read.
func DecodeSnapshots(r io.Reader) ([]Snapshot, error) {
	var snapshots []Snapshot
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var cmd snapshotCmd
		if err := json.Unmarshal(lineBytes, &cmd); err != nil {
			return nil, fmt.Errorf("could not decode ledger record %q: %w", string(lineBytes), err)
		}

		kind := NoTrade
		if cmd.Action.Action != "" {
			var err error
			kind, err = ParseActionKind(cmd.Action.Action)
			if err != nil {
				return nil, fmt.Errorf("could not decode ledger record %q: %w", string(lineBytes), err)
			}
		}

		snapshots = append(snapshots, Snapshot{
			Date: cmd.Date,
			ID:   cmd.ID,
			Action: Action{
				Kind:   kind,
				Symbol: cmd.Action.Symbol,
				Amount: cmd.Action.Amount,
			},
			Holdings: Holdings(cmd.Positions),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	sortSnapshots(snapshots)
	return snapshots, nil
}

// MarshalJSON writes the snapshot in its wire form, fields in the
// canonical order (date, id, this_action, positions) so ledger files diff
// cleanly.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var action jsonObjectWriter
	action.Append("action", string(s.Action.Kind)).
		Append("symbol", s.Action.Symbol).
		Append("amount", s.Action.Amount)

	var record jsonObjectWriter
	record.Append("date", s.Date).
		Append("id", s.ID).
		Append("this_action", &action).
		Append("positions", map[string]decimal.Decimal(s.Holdings))

	return record.MarshalJSON()
}

// EncodeSnapshot marshals a single snapshot and writes it to the writer,
// followed by a newline, in JSONL format.
func EncodeSnapshot(w io.Writer, s Snapshot) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger record: %w", err)
	}
	return nil
}

// EncodeSnapshots persists a whole ledger to an io.Writer in JSONL format,
// ordered by (date, id).
func EncodeSnapshots(w io.Writer, snapshots []Snapshot) error {
	sortSnapshots(snapshots)
	for _, s := range snapshots {
		if err := EncodeSnapshot(w, s); err != nil {
			return err
		}
	}
	return nil
}
