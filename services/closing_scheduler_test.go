package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
)

func TestClosingSchedulerRunFor(t *testing.T) {
	core, db := setupCore(t)
	ctx := context.Background()

	seedTransaction(t, db, tenantA, 1, 1200, models.PaymentMethodCash, day.Add(10*time.Hour))
	seedTransaction(t, db, tenantB, 2, 800, models.PaymentMethodWave, day.Add(11*time.Hour))
	seedExpense(t, db, tenantB, 1000, models.ExpenseCategoryTransport, day.Add(12*time.Hour))

	scheduler := services.NewClosingScheduler(core.Till, core.Guard, "5 0 * * *")
	closed, err := scheduler.RunFor(ctx, day.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	a, err := core.Till.GetClosing(ctx, tenantA, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), a.NetCash)

	b, err := core.Till.GetClosing(ctx, tenantB, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, int64(-200), b.NetCash)
	assert.True(t, b.Deficit)

	// a quiet day closes nobody
	closed, err = scheduler.RunFor(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestClosingSchedulerRejectsBadSpec(t *testing.T) {
	core, _ := setupCore(t)
	scheduler := services.NewClosingScheduler(core.Till, core.Guard, "every night")
	assert.Error(t, scheduler.Start())
}
