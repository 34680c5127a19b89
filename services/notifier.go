package services

import "context"

// Events pushed to connected terminals after a change is committed.
const (
	EventOrderCreated     = "order_created"
	EventOrderUpdated     = "order_updated"
	EventOrderReady       = "order_ready"
	EventOrderClosed      = "order_closed"
	EventOrderCancelled   = "order_cancelled"
	EventTableUpdate      = "table_update"
	EventExpenseRecorded  = "expense_recorded"
	EventTillClosed       = "till_closed"
	EventTransactionAdded = "transaction_added"
)

// Notifier fans a committed change out to whoever renders it. Delivery is
// best effort; readers re-query on every event.
type Notifier interface {
	Notify(tenantID uint, event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string, interface{}) {}

// TableStatusCache holds short-lived table projections.
type TableStatusCache interface {
	Get(ctx context.Context, tenantID, tableID uint) (*TableView, bool)
	Set(ctx context.Context, tenantID, tableID uint, view *TableView)
	Invalidate(ctx context.Context, tenantID, tableID uint)
}

type nopCache struct{}

func (nopCache) Get(context.Context, uint, uint) (*TableView, bool) { return nil, false }
func (nopCache) Set(context.Context, uint, uint, *TableView)        {}
func (nopCache) Invalidate(context.Context, uint, uint)             {}
