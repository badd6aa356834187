package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contafacil/bill-engine/billing"
)

func pending(desc string, amount int64, due billing.Date) billing.PayableEntry {
	return billing.PayableEntry{
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		DueDate:     due,
	}
}

// =============================================================================
// ADD AND PARTITIONS
// =============================================================================

func TestLedger_AddValidation(t *testing.T) {
	l := billing.NewPayableLedger(nil, nil)

	_, err := l.Add(pending("", 10, billing.NewDate(2025, time.June, 1)))
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = l.Add(pending("Luz", -10, billing.NewDate(2025, time.June, 1)))
	assert.ErrorIs(t, err, billing.ErrValidation)

	id, err := l.Add(pending("Luz", 0, billing.NewDate(2025, time.June, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestLedger_AddNormalizesState(t *testing.T) {
	l := billing.NewPayableLedger(nil, nil)

	// Whatever state the caller hands in, a new entry starts pending.
	e := pending("Luz", 100, billing.NewDate(2025, time.June, 1))
	e.Status = billing.StatusPaid
	e.PaymentDate = billing.NewDate(2025, time.May, 1)
	e.Synthetic = true

	_, err := l.Add(e)
	require.NoError(t, err)

	got := l.Outstanding()
	require.Len(t, got, 1)
	assert.Equal(t, billing.StatusPending, got[0].Status)
	assert.True(t, got[0].PaymentDate.IsZero())
	assert.False(t, got[0].Synthetic)
	assert.Equal(t, billing.OriginManual, got[0].Origin)
}

func TestLedger_LoadAssignsIDsAndNormalizesHistorical(t *testing.T) {
	// Rows loaded from tables carry no ids; historical rows may have stale
	// status labels.
	h := pending("Antiga", 50, billing.NewDate(2025, time.January, 1))
	h.Status = billing.StatusPending

	l := billing.NewPayableLedger(
		[]billing.PayableEntry{pending("Luz", 100, billing.NewDate(2025, time.June, 1))},
		[]billing.PayableEntry{h},
	)

	out, hist := l.Outstanding(), l.Historical()
	require.Len(t, out, 1)
	require.Len(t, hist, 1)
	assert.NotEmpty(t, out[0].ID)
	assert.NotEmpty(t, hist[0].ID)
	assert.Equal(t, billing.StatusPaid, hist[0].Status)
}

// =============================================================================
// MARK PAID
// =============================================================================

func TestLedger_MarkPaid(t *testing.T) {
	// GIVEN one outstanding entry
	l := billing.NewPayableLedger(nil, nil)
	id, err := l.Add(pending("Luz", 100, billing.NewDate(2025, time.June, 1)))
	require.NoError(t, err)

	// WHEN paying it
	paidOn := billing.NewDate(2025, time.June, 3)
	require.NoError(t, l.MarkPaid(id, paidOn))

	// THEN it moved wholesale from outstanding to historical
	assert.Empty(t, l.Outstanding())
	hist := l.Historical()
	require.Len(t, hist, 1)
	assert.Equal(t, id, hist[0].ID)
	assert.Equal(t, billing.StatusPaid, hist[0].Status)
	assert.True(t, hist[0].PaymentDate.Equal(paidOn))

	// AND paying again is a conflict, not a missing id
	err = l.MarkPaid(id, paidOn)
	assert.ErrorIs(t, err, billing.ErrAlreadyPaid)

	// AND an unknown id is not found
	err = l.MarkPaid(billing.NewEntryID(), paidOn)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

// =============================================================================
// EDIT AND DELETE
// =============================================================================

func TestLedger_Edit(t *testing.T) {
	l := billing.NewPayableLedger(nil, nil)
	id, err := l.Add(pending("Luz", 100, billing.NewDate(2025, time.June, 1)))
	require.NoError(t, err)

	newDesc := "Energia"
	newAmount := decimal.NewFromInt(120)
	newDue := billing.NewDate(2025, time.June, 5)
	err = l.Edit(billing.CollectionOutstanding, id, billing.EntryUpdate{
		Description: &newDesc,
		Amount:      &newAmount,
		DueDate:     &newDue,
	})
	require.NoError(t, err)

	got := l.Outstanding()[0]
	assert.Equal(t, "Energia", got.Description)
	assert.True(t, got.Amount.Equal(newAmount))
	assert.True(t, got.DueDate.Equal(newDue))

	// Payment date is only editable on historical entries.
	pd := billing.NewDate(2025, time.June, 2)
	require.NoError(t, l.Edit(billing.CollectionOutstanding, id, billing.EntryUpdate{PaymentDate: &pd}))
	assert.True(t, l.Outstanding()[0].PaymentDate.IsZero())

	require.NoError(t, l.MarkPaid(id, billing.NewDate(2025, time.June, 3)))
	require.NoError(t, l.Edit(billing.CollectionHistorical, id, billing.EntryUpdate{PaymentDate: &pd}))
	assert.True(t, l.Historical()[0].PaymentDate.Equal(pd))

	// Bad values are rejected before anything changes.
	empty := ""
	err = l.Edit(billing.CollectionHistorical, id, billing.EntryUpdate{Description: &empty})
	assert.ErrorIs(t, err, billing.ErrValidation)

	neg := decimal.NewFromInt(-1)
	err = l.Edit(billing.CollectionHistorical, id, billing.EntryUpdate{Amount: &neg})
	assert.ErrorIs(t, err, billing.ErrValidation)

	// Wrong collection or unknown id.
	err = l.Edit(billing.CollectionOutstanding, id, billing.EntryUpdate{})
	assert.ErrorIs(t, err, billing.ErrNotFound)
	err = l.Edit(billing.Collection("archive"), id, billing.EntryUpdate{})
	assert.ErrorIs(t, err, billing.ErrValidation)
}

func TestLedger_Delete(t *testing.T) {
	l := billing.NewPayableLedger(nil, nil)
	id, err := l.Add(pending("Luz", 100, billing.NewDate(2025, time.June, 1)))
	require.NoError(t, err)

	require.NoError(t, l.Delete(billing.CollectionOutstanding, id))
	assert.Empty(t, l.Outstanding())

	err = l.Delete(billing.CollectionOutstanding, id)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestLedger_QueryFiltersAndOrdering(t *testing.T) {
	today := billing.NewDate(2025, time.June, 15)
	l := billing.NewPayableLedger(nil, nil)

	_, err := l.Add(pending("Futura", 10, billing.NewDate(2025, time.June, 20)))
	require.NoError(t, err)
	_, err = l.Add(pending("Atrasada", 20, billing.NewDate(2025, time.June, 1)))
	require.NoError(t, err)
	_, err = l.Add(pending("Hoje", 30, today))
	require.NoError(t, err)
	paidID, err := l.Add(pending("Paga", 40, billing.NewDate(2025, time.May, 1)))
	require.NoError(t, err)
	require.NoError(t, l.MarkPaid(paidID, billing.NewDate(2025, time.May, 2)))

	descs := func(entries []billing.PayableEntry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Description
		}
		return out
	}

	// Pending: all outstanding, ascending by due date.
	assert.Equal(t, []string{"Atrasada", "Hoje", "Futura"}, descs(l.Query(billing.FilterPending, today)))

	// Overdue: strictly before today. Due today is upcoming, not overdue.
	assert.Equal(t, []string{"Atrasada"}, descs(l.Query(billing.FilterOverdue, today)))
	assert.Equal(t, []string{"Hoje", "Futura"}, descs(l.Query(billing.FilterUpcoming, today)))

	assert.Equal(t, []string{"Paga"}, descs(l.Query(billing.FilterPaid, today)))
}

func TestLedger_HasPending(t *testing.T) {
	l := billing.NewPayableLedger(nil, nil)
	due := billing.NewDate(2025, time.June, 10)
	_, err := l.Add(pending("Aluguel (mensal)", 1200, due))
	require.NoError(t, err)

	assert.True(t, l.HasPending("Aluguel (mensal)", due))
	assert.False(t, l.HasPending("Aluguel (mensal)", due.AddDays(1)))
	assert.False(t, l.HasPending("Aluguel", due))
}

func TestParseFilter(t *testing.T) {
	f, err := billing.ParseFilter("overdue")
	require.NoError(t, err)
	assert.Equal(t, billing.FilterOverdue, f)

	_, err = billing.ParseFilter("everything")
	assert.ErrorIs(t, err, billing.ErrValidation)
}
