/*
Package worklog tracks the per-worker service ledger: a chronological list
of signed monetary events and their running balance.

PURPOSE:
  A rendered service (a worker operating a machine for a day) debits the
  balance by the daily rate; a purchase order credits it by the order
  value. The running balance on each event must always equal the
  cumulative sum of signed amounts up to that event in date order, ties
  broken by insertion order - including after arbitrary deletions.

KEY CONCEPTS IN THIS FILE (types.go):
  - Event: One ledger row, service or purchase order
  - Kind: Which of the two row shapes an event is
  - Equipment daily-rate defaults used when the caller omits a rate

SEE ALSO:
  - ledger.go: Append/delete operations and the recompute fold
  - service.go: Persistence boundary
*/
package worklog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
)

// =============================================================================
// EVENTS
// =============================================================================

type EventID string

func NewEventID() EventID { return EventID(uuid.NewString()) }

type Kind string

const (
	KindService       Kind = "service"
	KindPurchaseOrder Kind = "purchase_order"
)

// Event is one row of the service ledger.
//
// Amount is signed: negative for services (debit), positive for purchase
// orders (credit). RunningBalance is derived; it is rewritten by every
// recompute and never independently settable.
type Event struct {
	ID   EventID
	Date billing.Date
	Kind Kind

	// Service fields
	Worker    string
	Equipment string

	// Purchase-order fields
	Reference string

	Amount         decimal.Decimal
	RunningBalance decimal.Decimal
}

// =============================================================================
// EQUIPMENT RATE DEFAULTS
// =============================================================================

// Equipment names and daily rates carried over from the shop-floor form.
const (
	EquipmentForklift = "Empilhadeira"
	EquipmentCrane    = "Munck"
)

var defaultRates = map[string]decimal.Decimal{
	EquipmentForklift: decimal.NewFromInt(4000),
	EquipmentCrane:    decimal.NewFromInt(6000),
}

// DefaultDailyRate returns the standard daily rate for known equipment,
// or zero for anything else.
func DefaultDailyRate(equipment string) decimal.Decimal {
	if rate, ok := defaultRates[equipment]; ok {
		return rate
	}
	return decimal.Zero
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a referenced event id does not exist.
	ErrNotFound = errors.New("event not found")
)

// ValidationError reports invalid event input: a missing purchase-order
// reference, a negative amount, a missing worker name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return billing.ErrValidation }
