package arena

import (
	"fmt"
	"iter"
	"sort"

	"github.com/wsoa/arena/date"
)

// Ledger is the append-only ordered history of Snapshots for one agent.
//
// Snapshots are always ordered first by date, then by sequence id. A ledger
// is never truncated or rewritten: corrections are new appended snapshots.
type Ledger struct {
	signature string
	snapshots []Snapshot
}

// NewLedger creates an empty ledger for the given agent signature.
func NewLedger(signature string) *Ledger {
	return &Ledger{signature: signature}
}

// Signature returns the agent signature that owns this ledger.
func (l *Ledger) Signature() string { return l.signature }

// Len returns the number of snapshots in the ledger.
func (l *Ledger) Len() int { return len(l.snapshots) }

// sortSnapshots orders snapshots by (date, id). The sort is stable, so
// malformed records carrying duplicate keys keep their file order.
func sortSnapshots(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].before(snapshots[j])
	})
}

// Append adds snapshots to this ledger and maintains the (date, id) order.
//
// Append only mutates the in-memory view; durable, mutually-exclusive
// appends go through Store.appendSnapshot under the agent's lock.
func (l *Ledger) Append(snapshots ...Snapshot) {
	l.snapshots = append(l.snapshots, snapshots...)
	sortSnapshots(l.snapshots)
}

// Snapshots returns an iterator over all snapshots in (date, id) order.
func (l *Ledger) Snapshots() iter.Seq2[int, Snapshot] {
	return func(yield func(int, Snapshot) bool) {
		for i, s := range l.snapshots {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Latest returns the holdings and sequence id of the snapshot with the
// greatest (date, id) such that date <= asOf.
//
// Resolution policy: first the greatest id on exactly asOf; failing that,
// the greatest id on the most recent strictly-earlier date present in the
// ledger (gaps are allowed, it need not be the calendar-previous day).
// If the ledger has no snapshot at or before asOf, it returns an empty
// holdings map and id -1.
func (l *Ledger) Latest(asOf date.Date) (Holdings, int) {
	best := -1
	var holdings Holdings
	for i := len(l.snapshots) - 1; i >= 0; i-- {
		s := l.snapshots[i]
		if s.Date.After(asOf) {
			continue
		}
		// The ledger is sorted, so the first snapshot at or before asOf,
		// scanning backwards, is the (date, id) maximum.
		best = s.ID
		holdings = s.Holdings.Clone()
		break
	}
	if best < 0 {
		return Holdings{}, -1
	}
	return holdings, best
}

// InitAt returns the holdings of the snapshot with the greatest (date, id)
// strictly before asOf: the opening position used to build an agent's
// decision context for day asOf. Unlike Latest it never returns same-day
// state, because the opening context for a day must reflect only trades
// settled before it. It returns an empty map when no earlier snapshot exists.
func (l *Ledger) InitAt(asOf date.Date) Holdings {
	for i := len(l.snapshots) - 1; i >= 0; i-- {
		s := l.snapshots[i]
		if s.Date.Before(asOf) {
			return s.Holdings.Clone()
		}
	}
	return Holdings{}
}

// AllDates returns the distinct trading dates with at least one snapshot,
// ascending.
func (l *Ledger) AllDates() []date.Date {
	var dates []date.Date
	for _, s := range l.snapshots {
		if n := len(dates); n > 0 && dates[n-1] == s.Date {
			continue
		}
		dates = append(dates, s.Date)
	}
	return dates
}

// Trades returns the snapshots produced by an actual trade (buys and sells,
// no bookkeeping records), in (date, id) order.
func (l *Ledger) Trades() []Snapshot {
	var trades []Snapshot
	for _, s := range l.snapshots {
		if s.Action.IsTrade() {
			trades = append(trades, s)
		}
	}
	return trades
}

// validateAppend checks that a snapshot may legally extend the ledger.
func (l *Ledger) validateAppend(s Snapshot) error {
	if err := s.Holdings.check(); err != nil {
		return fmt.Errorf("invalid snapshot on %v: %w", s.Date, err)
	}
	if n := len(l.snapshots); n > 0 && s.before(l.snapshots[n-1]) {
		last := l.snapshots[n-1]
		return fmt.Errorf("snapshot (%v, %d) would precede ledger tail (%v, %d)",
			s.Date, s.ID, last.Date, last.ID)
	}
	return nil
}
