/*
Package billing is the core of the bill-tracking engine.

PURPOSE:
  Tracks payable accounts and recurring obligations. The two pieces with
  real invariants live here:

  - The recurrence engine (recurrence.go): decides when a recurring
    template materializes into a concrete payable entry and advances the
    template's next due date.
  - The payable ledger (payables.go): keeps outstanding and historical
    entries as disjoint partitions, moving an entry exactly once on
    payment.

KEY CONCEPTS IN THIS FILE (types.go):
  - PayableEntry: A single bill, outstanding or already paid
  - RecurringTemplate: A rule describing a periodic obligation; not itself
    a payable entry until materialized
  - Status/Origin/Collection: Closed enums, persisted with the labels the
    tables use

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every amount, never float64
  2. Canonical dates: only billing.Date crosses into this package
  3. Explicit persistence: repositories own one table each and every
     mutating operation saves the affected table itself

SEE ALSO:
  - date.go: Date type and recurrence date arithmetic
  - service.go: Orchestration and persistence boundary
*/
package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntryID identifies a payable entry within a session. Tables carry no id
// column; ids are assigned when rows are loaded or entries created.
type EntryID string

type TemplateID string

func NewEntryID() EntryID       { return EntryID(uuid.NewString()) }
func NewTemplateID() TemplateID { return TemplateID(uuid.NewString()) }

// =============================================================================
// PAYABLE ENTRY
// =============================================================================

// Status labels match the persisted tables ("Pendente"/"Paga").
type Status string

const (
	StatusPending Status = "Pendente"
	StatusPaid    Status = "Paga"
)

type Origin string

const (
	OriginManual    Origin = "Manual"
	OriginRecurring Origin = "Recorrente"
)

// Collection names one of the two disjoint partitions of payable entries.
type Collection string

const (
	CollectionOutstanding Collection = "outstanding"
	CollectionHistorical  Collection = "historical"
)

// PayableEntry is a single bill.
//
// INVARIANT: Status == StatusPaid exactly when PaymentDate is set.
type PayableEntry struct {
	ID          EntryID
	Description string
	Amount      decimal.Decimal
	DueDate     Date
	Status      Status
	PaymentDate Date // zero while pending
	Origin      Origin

	// Synthetic marks a display-only row projected from a not-yet-
	// materialized recurring template. Synthetic rows carry no id and
	// cannot be edited or deleted.
	Synthetic bool
}

// Paid reports whether the entry is in its paid state.
func (e PayableEntry) Paid() bool { return e.Status == StatusPaid }

// EntryUpdate carries an in-place edit; nil fields are left untouched.
type EntryUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	DueDate     *Date
	PaymentDate *Date
}

// =============================================================================
// RECURRING TEMPLATE
// =============================================================================

// RecurringTemplate is a rule describing a periodically-recurring
// obligation. It is mutated only by user edits and by materialization,
// which advances NextDue and records LastGenerated. Templates are never
// auto-deleted; deactivation is the soft off-switch.
//
// INVARIANT: NextDue's day-of-month equals min(DueDay, days in NextDue's
// month).
type RecurringTemplate struct {
	ID            TemplateID
	Description   string
	Amount        decimal.Decimal
	Frequency     Frequency
	DueDay        int // 1..31, clamped per month
	NextDue       Date
	LastGenerated Date // zero until first materialization
	Active        bool
}

// MaterializedDescription is the description a template's generated entries
// carry, e.g. "Aluguel (mensal)". The suffix is part of the idempotency key
// for duplicate-generation checks.
func (t RecurringTemplate) MaterializedDescription() string {
	return t.Description + " (" + t.Frequency.Lower() + ")"
}

// TemplateUpdate carries an in-place template edit; nil fields are left
// untouched. Changing DueDay or Frequency does not retroactively move
// NextDue; the new values take effect on the next advancement.
type TemplateUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Frequency   *Frequency
	DueDay      *int
	NextDue     *Date
	Active      *bool
}
