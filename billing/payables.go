/*
payables.go - Outstanding/historical payable entries

PURPOSE:
  The PayableLedger owns the two disjoint partitions of "all entries ever
  created": outstanding (pending) and historical (paid). An entry belongs
  to exactly one partition at a time, and moves exactly once under normal
  flow, when it is paid.

CRITICAL INVARIANTS:
  1. DISJOINT: outstanding ∩ historical = ∅, always
  2. PAID ⇔ PAYMENT DATE: Status is Paid exactly when PaymentDate is set
  3. MARK-PAID MOVES ONE: outstanding shrinks by one, historical grows by one

  Direct edits may alter a paid entry in place, but never move it between
  partitions.

DELETION:
  Delete is permanent. The "are you sure" confirmation is a presentation
  concern; the ledger itself deletes unconditionally.

SEE ALSO:
  - recurrence.go: Feeds generated entries into Add
  - service.go: Persists the affected table after each mutation
*/
package billing

import (
	"sort"
)

// =============================================================================
// QUERY FILTERS
// =============================================================================

type Filter string

const (
	// FilterPending matches every outstanding entry.
	FilterPending Filter = "pending"
	// FilterOverdue matches outstanding entries due strictly before today.
	FilterOverdue Filter = "overdue"
	// FilterUpcoming matches outstanding entries due today or later.
	FilterUpcoming Filter = "upcoming"
	// FilterPaid matches every historical entry.
	FilterPaid Filter = "paid"
)

func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterPending, FilterOverdue, FilterUpcoming, FilterPaid:
		return Filter(s), nil
	}
	return "", &FieldError{Field: "filter", Message: "must be pending, overdue, upcoming or paid"}
}

// =============================================================================
// PAYABLE LEDGER
// =============================================================================

// PayableLedger is the in-memory working set of payable entries. It is not
// safe for concurrent use; the owning Service serializes access.
type PayableLedger struct {
	outstanding []PayableEntry
	historical  []PayableEntry
}

// NewPayableLedger builds a ledger from loaded table rows. Rows are taken
// as-is; partition membership is decided by which slice they arrive in, and
// historical rows are normalized to their paid state.
func NewPayableLedger(outstanding, historical []PayableEntry) *PayableLedger {
	l := &PayableLedger{}
	for _, e := range outstanding {
		if e.ID == "" {
			e.ID = NewEntryID()
		}
		l.outstanding = append(l.outstanding, e)
	}
	for _, e := range historical {
		if e.ID == "" {
			e.ID = NewEntryID()
		}
		e.Status = StatusPaid
		l.historical = append(l.historical, e)
	}
	return l
}

// Add appends a new entry to the outstanding partition and returns its id.
// Descriptions are not unique; two bills may share one.
func (l *PayableLedger) Add(e PayableEntry) (EntryID, error) {
	if e.Description == "" {
		return "", &FieldError{Field: "description", Message: "required"}
	}
	if e.Amount.IsNegative() {
		return "", &FieldError{Field: "amount", Message: "must be >= 0"}
	}
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	e.Status = StatusPending
	e.PaymentDate = Date{}
	e.Synthetic = false
	if e.Origin == "" {
		e.Origin = OriginManual
	}
	l.outstanding = append(l.outstanding, e)
	return e.ID, nil
}

// MarkPaid sets the entry's payment date and moves it from outstanding to
// historical in one step.
func (l *PayableLedger) MarkPaid(id EntryID, paidOn Date) error {
	for i, e := range l.outstanding {
		if e.ID != id {
			continue
		}
		e.Status = StatusPaid
		e.PaymentDate = paidOn
		l.outstanding = append(l.outstanding[:i], l.outstanding[i+1:]...)
		l.historical = append(l.historical, e)
		return nil
	}
	// Paying twice is a distinct failure from a missing id.
	for _, e := range l.historical {
		if e.ID == id {
			return &AlreadyPaidError{ID: id, PaidOn: e.PaymentDate}
		}
	}
	return &NotFoundError{Collection: CollectionOutstanding, ID: string(id)}
}

// Edit updates fields in place in whichever collection currently holds id.
func (l *PayableLedger) Edit(col Collection, id EntryID, update EntryUpdate) error {
	entries, err := l.collection(col)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		e := &entries[i]
		if update.Description != nil {
			if *update.Description == "" {
				return &FieldError{Field: "description", Message: "required"}
			}
			e.Description = *update.Description
		}
		if update.Amount != nil {
			if update.Amount.IsNegative() {
				return &FieldError{Field: "amount", Message: "must be >= 0"}
			}
			e.Amount = *update.Amount
		}
		if update.DueDate != nil {
			e.DueDate = *update.DueDate
		}
		if update.PaymentDate != nil && col == CollectionHistorical {
			e.PaymentDate = *update.PaymentDate
		}
		return nil
	}
	return &NotFoundError{Collection: col, ID: string(id)}
}

// Delete permanently removes the entry from the named collection.
func (l *PayableLedger) Delete(col Collection, id EntryID) error {
	entries, err := l.collection(col)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		switch col {
		case CollectionOutstanding:
			l.outstanding = append(l.outstanding[:i], l.outstanding[i+1:]...)
		case CollectionHistorical:
			l.historical = append(l.historical[:i], l.historical[i+1:]...)
		}
		return nil
	}
	return &NotFoundError{Collection: col, ID: string(id)}
}

// Query returns entries matching the filter, ascending by due date.
// All filters cover concrete entries only; the service layer unions in
// synthetic rows for not-yet-materialized recurring templates on the
// pending and upcoming views.
func (l *PayableLedger) Query(filter Filter, today Date) []PayableEntry {
	var result []PayableEntry
	switch filter {
	case FilterPaid:
		result = append(result, l.historical...)
	case FilterOverdue:
		for _, e := range l.outstanding {
			if e.DueDate.Before(today) {
				result = append(result, e)
			}
		}
	case FilterUpcoming:
		for _, e := range l.outstanding {
			if e.DueDate.AfterOrEqual(today) {
				result = append(result, e)
			}
		}
	default: // FilterPending
		result = append(result, l.outstanding...)
	}
	sortByDueDate(result)
	return result
}

// HasPending reports whether an outstanding entry exists with the exact
// description and due date. This is the idempotency check the recurrence
// engine runs before materializing.
func (l *PayableLedger) HasPending(description string, due Date) bool {
	for _, e := range l.outstanding {
		if e.Description == description && e.DueDate.Equal(due) {
			return true
		}
	}
	return false
}

// Outstanding returns a copy of the outstanding partition.
func (l *PayableLedger) Outstanding() []PayableEntry {
	return append([]PayableEntry(nil), l.outstanding...)
}

// Historical returns a copy of the historical partition.
func (l *PayableLedger) Historical() []PayableEntry {
	return append([]PayableEntry(nil), l.historical...)
}

func (l *PayableLedger) collection(col Collection) ([]PayableEntry, error) {
	switch col {
	case CollectionOutstanding:
		return l.outstanding, nil
	case CollectionHistorical:
		return l.historical, nil
	}
	return nil, &FieldError{Field: "collection", Message: "must be outstanding or historical"}
}

func sortByDueDate(entries []PayableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DueDate.Before(entries[j].DueDate)
	})
}
