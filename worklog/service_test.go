package worklog_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contafacil/bill-engine/store/memory"
	"github.com/contafacil/bill-engine/worklog"
)

func TestWorklogService_MutationsPersist(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := worklog.NewService(store, zerolog.Nop())
	require.NoError(t, svc.Load(ctx))

	e1, err := svc.AppendService(ctx, day(1), "João", worklog.EquipmentForklift, decimal.NewFromInt(4000))
	require.NoError(t, err)
	_, err = svc.AppendPurchaseOrder(ctx, day(2), "PO-9", decimal.NewFromInt(5000))
	require.NoError(t, err)

	// The store holds the full recomputed table.
	saved, err := store.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.True(t, saved[1].RunningBalance.Equal(decimal.NewFromInt(1000)))

	removed, err := svc.Delete(ctx, []worklog.EventID{e1.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	saved, err = store.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].RunningBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, svc.Balance().Equal(decimal.NewFromInt(5000)))
}

func TestWorklogService_DeleteNothingSkipsSave(t *testing.T) {
	ctx := context.Background()
	svc := worklog.NewService(memory.New(), zerolog.Nop())
	require.NoError(t, svc.Load(ctx))

	removed, err := svc.Delete(ctx, []worklog.EventID{worklog.NewEventID()})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestWorklogService_ReloadRebuildsBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	svc := worklog.NewService(store, zerolog.Nop())
	require.NoError(t, svc.Load(ctx))
	_, err := svc.AppendService(ctx, day(1), "João", worklog.EquipmentCrane, decimal.NewFromInt(6000))
	require.NoError(t, err)

	svc2 := worklog.NewService(store, zerolog.Nop())
	require.NoError(t, svc2.Load(ctx))
	assert.True(t, svc2.Balance().Equal(decimal.NewFromInt(-6000)))
}
