package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/store/sqlite"
	"github.com/contafacil/bill-engine/worklog"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PayableRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	entries := []billing.PayableEntry{
		{
			ID:          billing.NewEntryID(),
			Description: "Luz",
			Amount:      decimal.RequireFromString("123.45"),
			DueDate:     billing.NewDate(2025, time.June, 10),
			Status:      billing.StatusPending,
			Origin:      billing.OriginManual,
		},
		{
			ID:          billing.NewEntryID(),
			Description: "Aluguel (mensal)",
			Amount:      decimal.NewFromInt(1200),
			DueDate:     billing.NewDate(2025, time.June, 5),
			Status:      billing.StatusPending,
			Origin:      billing.OriginRecurring,
		},
	}
	require.NoError(t, s.SaveOutstanding(ctx, entries))

	loaded, err := s.LoadOutstanding(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Insertion order is preserved, not re-sorted by the store.
	assert.Equal(t, entries[0].ID, loaded[0].ID)
	assert.Equal(t, "Luz", loaded[0].Description)
	assert.True(t, loaded[0].Amount.Equal(entries[0].Amount))
	assert.True(t, loaded[0].DueDate.Equal(entries[0].DueDate))
	assert.True(t, loaded[0].PaymentDate.IsZero())
	assert.Equal(t, billing.OriginRecurring, loaded[1].Origin)

	// Saving again replaces the table instead of appending.
	require.NoError(t, s.SaveOutstanding(ctx, entries[:1]))
	loaded, err = s.LoadOutstanding(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestStore_HistoricalIsSeparateTable(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	paid := billing.PayableEntry{
		ID:          billing.NewEntryID(),
		Description: "Antiga",
		Amount:      decimal.NewFromInt(50),
		DueDate:     billing.NewDate(2025, time.May, 1),
		Status:      billing.StatusPaid,
		PaymentDate: billing.NewDate(2025, time.May, 2),
	}
	require.NoError(t, s.SaveHistorical(ctx, []billing.PayableEntry{paid}))

	out, err := s.LoadOutstanding(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	hist, err := s.LoadHistorical(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, billing.StatusPaid, hist[0].Status)
	assert.True(t, hist[0].PaymentDate.Equal(paid.PaymentDate))
}

func TestStore_TemplateRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tpl := &billing.RecurringTemplate{
		ID:            billing.NewTemplateID(),
		Description:   "Seguro",
		Amount:        decimal.NewFromInt(800),
		Frequency:     billing.FrequencySemiannual,
		DueDay:        15,
		NextDue:       billing.NewDate(2025, time.July, 15),
		LastGenerated: billing.NewDate(2025, time.January, 15),
		Active:        true,
	}
	require.NoError(t, s.SaveTemplates(ctx, []*billing.RecurringTemplate{tpl}))

	loaded, err := s.LoadTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, tpl.ID, got.ID)
	assert.Equal(t, billing.FrequencySemiannual, got.Frequency)
	assert.Equal(t, 15, got.DueDay)
	assert.True(t, got.NextDue.Equal(tpl.NextDue))
	assert.True(t, got.LastGenerated.Equal(tpl.LastGenerated))
	assert.True(t, got.Active)
}

func TestStore_TemplateUnscheduledDatesSurvive(t *testing.T) {
	// Zero dates persist as empty strings and come back zero.
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTemplates(ctx, []*billing.RecurringTemplate{{
		ID:          billing.NewTemplateID(),
		Description: "Nova",
		Amount:      decimal.NewFromInt(100),
		Frequency:   billing.FrequencyMonthly,
		DueDay:      1,
		Active:      true,
	}}))

	loaded, err := s.LoadTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].NextDue.IsZero())
	assert.True(t, loaded[0].LastGenerated.IsZero())
}

func TestStore_EventRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	events := []worklog.Event{
		{
			ID:             worklog.NewEventID(),
			Date:           billing.NewDate(2025, time.June, 1),
			Kind:           worklog.KindService,
			Worker:         "João",
			Equipment:      worklog.EquipmentCrane,
			Amount:         decimal.NewFromInt(-6000),
			RunningBalance: decimal.NewFromInt(-6000),
		},
		{
			ID:             worklog.NewEventID(),
			Date:           billing.NewDate(2025, time.June, 2),
			Kind:           worklog.KindPurchaseOrder,
			Reference:      "PO-7",
			Amount:         decimal.NewFromInt(10000),
			RunningBalance: decimal.NewFromInt(4000),
		},
	}
	require.NoError(t, s.SaveEvents(ctx, events))

	loaded, err := s.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, events[0].ID, loaded[0].ID)
	assert.Equal(t, worklog.KindService, loaded[0].Kind)
	assert.True(t, loaded[0].Amount.Equal(decimal.NewFromInt(-6000)))
	assert.Equal(t, "PO-7", loaded[1].Reference)
	assert.True(t, loaded[1].RunningBalance.Equal(decimal.NewFromInt(4000)))
}
