/*
recurrence.go - Materializing recurring templates into payable entries

PURPOSE:
  The recurrence engine decides, given "now", which active templates are
  due, turns each into exactly one concrete payable entry, and advances the
  template to its next occurrence.

IDEMPOTENCY:
  Materialization may be triggered twice for the same due date: once by the
  startup/scheduled catch-up and again by the explicit "generate now"
  action. Both paths share this single contract: a template is skipped when
  a pending entry with the identical suffixed description and due date
  already exists. The legacy behavior of duplicating this check with
  slightly different logic per trigger was a bug, not a feature.

CATCH-UP SEMANTICS:
  A template that is several periods overdue materializes one entry per
  invocation, not the whole backlog at once; each run advances NextDue by
  one period. Repeated runs (the scheduler ticks) drain the backlog.

SEE ALSO:
  - date.go: NextPeriodDate
  - payables.go: HasPending, the other half of the idempotency check
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// PendingChecker reports whether a pending entry already exists with the
// given description and due date. PayableLedger.HasPending satisfies it.
type PendingChecker func(description string, due Date) bool

// MaterializeDue emits one payable entry for each active template whose
// NextDue has arrived, mutating those templates in place: LastGenerated is
// set to the materialized due date and NextDue advances one period.
//
// Skipped entirely: inactive templates, templates with no NextDue ("not yet
// scheduled"), and templates whose entry for this due date is already
// pending.
func MaterializeDue(templates []*RecurringTemplate, alreadyPending PendingChecker, asOf Date) []PayableEntry {
	var generated []PayableEntry
	for _, t := range templates {
		if !t.Active || t.NextDue.IsZero() || t.NextDue.After(asOf) {
			continue
		}
		desc := t.MaterializedDescription()
		if alreadyPending != nil && alreadyPending(desc, t.NextDue) {
			continue
		}

		generated = append(generated, PayableEntry{
			ID:          NewEntryID(),
			Description: desc,
			Amount:      t.Amount,
			DueDate:     t.NextDue,
			Status:      StatusPending,
			Origin:      OriginRecurring,
		})

		t.LastGenerated = t.NextDue
		t.NextDue = NextPeriodDate(t.NextDue, t.Frequency, t.DueDay)
	}
	return generated
}

// ForecastDueWithin sums the amounts of active templates due on or before
// windowEnd that have not already materialized as pending entries. Used for
// "due this month/week" projections; mutates nothing.
func ForecastDueWithin(templates []*RecurringTemplate, alreadyPending PendingChecker, windowEnd Date) decimal.Decimal {
	total := decimal.Zero
	for _, t := range templates {
		if !t.Active || t.NextDue.IsZero() || t.NextDue.After(windowEnd) {
			continue
		}
		if alreadyPending != nil && alreadyPending(t.MaterializedDescription(), t.NextDue) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// SyntheticPending renders not-yet-materialized active templates as
// display-only pending rows. Synthetic rows carry no id and cannot be
// edited, paid or deleted; they exist so pending queries show the full
// picture of what is owed.
func SyntheticPending(templates []*RecurringTemplate, alreadyPending PendingChecker) []PayableEntry {
	var rows []PayableEntry
	for _, t := range templates {
		if !t.Active || t.NextDue.IsZero() {
			continue
		}
		desc := t.MaterializedDescription()
		if alreadyPending != nil && alreadyPending(desc, t.NextDue) {
			continue
		}
		rows = append(rows, PayableEntry{
			Description: desc,
			Amount:      t.Amount,
			DueDate:     t.NextDue,
			Status:      StatusPending,
			Origin:      OriginRecurring,
			Synthetic:   true,
		})
	}
	return rows
}

// NewTemplate validates and builds a recurring template, computing its
// initial NextDue from today and the target due day.
func NewTemplate(description string, amount decimal.Decimal, freq Frequency, dueDay int, today Date) (*RecurringTemplate, error) {
	if description == "" {
		return nil, &FieldError{Field: "description", Message: "required"}
	}
	if amount.IsNegative() {
		return nil, &FieldError{Field: "amount", Message: "must be >= 0"}
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, &FieldError{Field: "due_day", Message: "must be between 1 and 31"}
	}
	if _, err := ParseFrequency(string(freq)); err != nil {
		return nil, err
	}
	return &RecurringTemplate{
		ID:          NewTemplateID(),
		Description: description,
		Amount:      amount,
		Frequency:   freq,
		DueDay:      dueDay,
		NextDue:     InitialDueDate(today, dueDay),
		Active:      true,
	}, nil
}
