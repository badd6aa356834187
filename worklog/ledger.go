/*
ledger.go - Running-balance ledger over service/purchase-order events

CRITICAL INVARIANT:
  For events ordered by date (ties keep insertion order):

    RunningBalance[i] == RunningBalance[i-1] + Amount[i]

  with a conceptual balance of zero before the first event. Every mutation
  re-runs the full fold rather than patching incrementally: deleting an
  early event shifts every later balance, and an incremental scheme would
  need the same full rescan to find which events are "later".

ORDERING:
  The event slice is kept in display order (date ascending, stable) at all
  times; recompute re-sorts after each mutation so same-day events keep
  their relative insertion order.
*/
package worklog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
)

// Ledger is the in-memory event sequence. Not safe for concurrent use; the
// owning Service serializes access.
type Ledger struct {
	events []Event
}

// NewLedger builds a ledger from loaded rows and recomputes every running
// balance, so stale persisted balances can never survive a load.
func NewLedger(events []Event) *Ledger {
	l := &Ledger{events: append([]Event(nil), events...)}
	for i := range l.events {
		if l.events[i].ID == "" {
			l.events[i].ID = NewEventID()
		}
	}
	l.recompute()
	return l
}

// AppendService records a rendered service: the daily rate debits the
// balance.
func (l *Ledger) AppendService(date billing.Date, worker, equipment string, dailyRate decimal.Decimal) (Event, error) {
	if worker == "" {
		return Event{}, &ValidationError{Field: "worker", Message: "required"}
	}
	if dailyRate.IsNegative() {
		return Event{}, &ValidationError{Field: "daily_rate", Message: "must be >= 0"}
	}
	e := Event{
		ID:        NewEventID(),
		Date:      date,
		Kind:      KindService,
		Worker:    worker,
		Equipment: equipment,
		Amount:    dailyRate.Neg(),
	}
	l.events = append(l.events, e)
	l.recompute()
	return l.byID(e.ID), nil
}

// AppendPurchaseOrder records an incoming purchase order: the order value
// credits the balance. Reference is mandatory.
func (l *Ledger) AppendPurchaseOrder(date billing.Date, reference string, amount decimal.Decimal) (Event, error) {
	if reference == "" {
		return Event{}, &ValidationError{Field: "reference", Message: "required"}
	}
	if amount.IsNegative() {
		return Event{}, &ValidationError{Field: "amount", Message: "must be >= 0"}
	}
	e := Event{
		ID:        NewEventID(),
		Date:      date,
		Kind:      KindPurchaseOrder,
		Reference: reference,
		Amount:    amount,
	}
	l.events = append(l.events, e)
	l.recompute()
	return l.byID(e.ID), nil
}

// Delete removes every event whose id is in ids and recomputes the
// remaining balances. Returns how many events were removed.
func (l *Ledger) Delete(ids []EventID) int {
	drop := make(map[EventID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := l.events[:0]
	removed := 0
	for _, e := range l.events {
		if drop[e.ID] {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.events = kept
	if removed > 0 {
		l.recompute()
	}
	return removed
}

// Events returns a copy of the ledger in display order.
func (l *Ledger) Events() []Event {
	return append([]Event(nil), l.events...)
}

// Balance returns the current (final) running balance, zero when empty.
func (l *Ledger) Balance() decimal.Decimal {
	if len(l.events) == 0 {
		return decimal.Zero
	}
	return l.events[len(l.events)-1].RunningBalance
}

// recompute sorts by date (stable, so same-day events keep insertion
// order) and folds left, rewriting every stored running balance. O(n) per
// mutation, correct regardless of where the mutation occurred.
func (l *Ledger) recompute() {
	sort.SliceStable(l.events, func(i, j int) bool {
		return l.events[i].Date.Before(l.events[j].Date)
	})
	balance := decimal.Zero
	for i := range l.events {
		balance = balance.Add(l.events[i].Amount)
		l.events[i].RunningBalance = balance
	}
}

func (l *Ledger) byID(id EventID) Event {
	for _, e := range l.events {
		if e.ID == id {
			return e
		}
	}
	return Event{}
}
