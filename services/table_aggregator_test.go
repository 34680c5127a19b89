package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
)

func TestDeriveTableStatus(t *testing.T) {
	pending := models.Order{Status: models.OrderStatusPending}
	ready := models.Order{Status: models.OrderStatusReady}
	closed := models.Order{Status: models.OrderStatusClosed}

	assert.Equal(t, models.TableStatusFree, services.DeriveTableStatus(nil))
	assert.Equal(t, models.TableStatusFree, services.DeriveTableStatus([]models.Order{closed}))
	assert.Equal(t, models.TableStatusOccupied, services.DeriveTableStatus([]models.Order{pending}))
	assert.Equal(t, models.TableStatusOccupied, services.DeriveTableStatus([]models.Order{pending, closed}))
	assert.Equal(t, models.TableStatusBillRequested, services.DeriveTableStatus([]models.Order{pending, ready}))
	assert.Equal(t, models.TableStatusBillRequested, services.DeriveTableStatus([]models.Order{ready}))
}

func TestTableStatusFollowsOrders(t *testing.T) {
	core, _ := setupCore(t)
	ctx := context.Background()

	table, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "Terrasse 1", Capacity: 4})
	require.NoError(t, err)

	view, err := core.Tables.TableStatus(ctx, tenantA, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, view.Status)
	assert.Empty(t, view.OpenOrders)
	assert.Equal(t, "Terrasse 1", view.DisplayName)
	assert.Equal(t, 4, view.Capacity)

	order, err := core.Orders.CreateOrder(ctx, tenantA, services.CreateOrderInput{TableID: &table.ID, Items: sampleItems()})
	require.NoError(t, err)

	view, err = core.Tables.TableStatus(ctx, tenantA, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, view.Status)
	require.Len(t, view.OpenOrders, 1)
	assert.Equal(t, int64(3500), view.OpenAmount)

	_, err = core.Orders.MarkReady(ctx, tenantA, order.ID)
	require.NoError(t, err)
	view, err = core.Tables.TableStatus(ctx, tenantA, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusBillRequested, view.Status)

	_, err = core.Orders.Finalize(ctx, tenantA, order.ID, models.PaymentMethodCash)
	require.NoError(t, err)
	view, err = core.Tables.TableStatus(ctx, tenantA, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, view.Status)
	assert.Empty(t, view.OpenOrders)
}

func TestSplitBillsOnOneTable(t *testing.T) {
	core, _ := setupCore(t)
	ctx := context.Background()
	tableID := uint(7)

	first, err := core.Orders.CreateOrder(ctx, tenantA, services.CreateOrderInput{TableID: &tableID, Items: sampleItems()})
	require.NoError(t, err)
	second := createReadyOrder(t, core, tenantA, &tableID)

	// table 7 was never registered; the reference alone is enough
	view, err := core.Tables.TableStatus(ctx, tenantA, tableID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusBillRequested, view.Status)
	require.Len(t, view.OpenOrders, 2)
	assert.Equal(t, first.ID, view.OpenOrders[0].ID)
	assert.Equal(t, second.ID, view.OpenOrders[1].ID)
	assert.Equal(t, int64(7000), view.OpenAmount)
	assert.Empty(t, view.DisplayName)

	_, err = core.Orders.Finalize(ctx, tenantA, second.ID, models.PaymentMethodOrangeMoney)
	require.NoError(t, err)
	view, err = core.Tables.TableStatus(ctx, tenantA, tableID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, view.Status)
	require.Len(t, view.OpenOrders, 1)
	assert.Equal(t, first.ID, view.OpenOrders[0].ID)
}

func TestFloorStatus(t *testing.T) {
	core, _ := setupCore(t)
	ctx := context.Background()

	t1, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "T1", Capacity: 2})
	require.NoError(t, err)
	t2, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "T2", Capacity: 6})
	require.NoError(t, err)
	_, err = core.Tables.CreateTable(ctx, tenantB, services.TableInput{DisplayName: "Autre resto"})
	require.NoError(t, err)

	createReadyOrder(t, core, tenantA, &t2.ID)
	_, err = core.Orders.CreateOrder(ctx, tenantA, services.CreateOrderInput{Items: sampleItems()})
	require.NoError(t, err)
	_, err = core.Orders.CreateOrder(ctx, tenantA, services.CreateOrderInput{TableID: uintPtr(999), Items: sampleItems()})
	require.NoError(t, err)

	floor, err := core.Tables.FloorStatus(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, floor.Tables, 3)
	assert.Equal(t, t1.ID, floor.Tables[0].TableID)
	assert.Equal(t, models.TableStatusFree, floor.Tables[0].Status)
	assert.Equal(t, t2.ID, floor.Tables[1].TableID)
	assert.Equal(t, models.TableStatusBillRequested, floor.Tables[1].Status)
	assert.Equal(t, uint(999), floor.Tables[2].TableID)
	assert.Equal(t, models.TableStatusOccupied, floor.Tables[2].Status)
	assert.Len(t, floor.Takeaway, 1)

	other, err := core.Tables.FloorStatus(ctx, tenantB)
	require.NoError(t, err)
	require.Len(t, other.Tables, 1)
	assert.Equal(t, models.TableStatusFree, other.Tables[0].Status)
	assert.Empty(t, other.Takeaway)
}

func TestTableAccessAcrossTenants(t *testing.T) {
	core, _ := setupCore(t)
	ctx := context.Background()

	table, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "VIP"})
	require.NoError(t, err)
	createReadyOrder(t, core, tenantA, &table.ID)

	_, err = core.Tables.TableStatus(ctx, tenantB, table.ID)
	assert.ErrorIs(t, err, services.ErrAccessDenied)

	err = core.Tables.DeleteTable(ctx, tenantB, table.ID)
	assert.ErrorIs(t, err, services.ErrAccessDenied)

	err = core.Tables.DeleteTable(ctx, tenantA, table.ID)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestDeleteFreeTable(t *testing.T) {
	core, _ := setupCore(t)
	ctx := context.Background()

	table, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "Bar"})
	require.NoError(t, err)
	require.NoError(t, core.Tables.DeleteTable(ctx, tenantA, table.ID))

	tables, err := core.Tables.ListTables(ctx, tenantA)
	require.NoError(t, err)
	assert.Empty(t, tables)

	_, err = core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "  "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

// memoryCache is a map-backed TableStatusCache.
type memoryCache struct {
	mu    sync.Mutex
	views map[string]services.TableView
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: make(map[string]services.TableView)}
}

func (c *memoryCache) key(tenantID, tableID uint) string {
	return fmt.Sprintf("%d:%d", tenantID, tableID)
}

func (c *memoryCache) Get(_ context.Context, tenantID, tableID uint) (*services.TableView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[c.key(tenantID, tableID)]
	if !ok {
		return nil, false
	}
	return &v, true
}

func (c *memoryCache) Set(_ context.Context, tenantID, tableID uint, view *services.TableView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[c.key(tenantID, tableID)] = *view
}

func (c *memoryCache) Invalidate(_ context.Context, tenantID, tableID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, c.key(tenantID, tableID))
}

func TestCreateTableRefreshesCachedView(t *testing.T) {
	db := setupTestDB(t)
	core := services.NewCore(db, services.CoreOptions{StoreTimeout: 5 * time.Second, Cache: newMemoryCache()})
	ctx := context.Background()

	// the first registered table gets id 1; an order references it before that
	_, err := core.Orders.CreateOrder(ctx, tenantA, services.CreateOrderInput{TableID: uintPtr(1), Items: sampleItems()})
	require.NoError(t, err)

	view, err := core.Tables.TableStatus(ctx, tenantA, 1)
	require.NoError(t, err)
	assert.Empty(t, view.DisplayName)

	table, err := core.Tables.CreateTable(ctx, tenantA, services.TableInput{DisplayName: "Salon", Capacity: 6})
	require.NoError(t, err)
	require.Equal(t, uint(1), table.ID)

	view, err = core.Tables.TableStatus(ctx, tenantA, 1)
	require.NoError(t, err)
	assert.Equal(t, "Salon", view.DisplayName)
	assert.Equal(t, 6, view.Capacity)
	assert.Equal(t, models.TableStatusOccupied, view.Status)
}
