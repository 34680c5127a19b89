package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/yeremiapane/restaurant-till/models"
)

// TableView is the derived state of one table.
type TableView struct {
	TableID     uint           `json:"table_id"`
	DisplayName string         `json:"display_name,omitempty"`
	Capacity    int            `json:"capacity,omitempty"`
	Status      string         `json:"status"`
	OpenOrders  []models.Order `json:"open_orders"`
	OpenAmount  int64          `json:"open_amount"`
}

// FloorView is every table of a tenant plus the open takeaway orders.
type FloorView struct {
	Tables   []TableView    `json:"tables"`
	Takeaway []models.Order `json:"takeaway"`
}

// TableAggregator computes table status from open orders. Nothing it
// returns is stored.
type TableAggregator struct {
	guard    *TenantGuard
	notifier Notifier
	cache    TableStatusCache
}

func NewTableAggregator(guard *TenantGuard, notifier Notifier, cache TableStatusCache) *TableAggregator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &TableAggregator{guard: guard, notifier: notifier, cache: cache}
}

// DeriveTableStatus is free with no open order, bill_requested as soon as
// one open order is ready, occupied otherwise.
func DeriveTableStatus(orders []models.Order) string {
	status := models.TableStatusFree
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusReady:
			return models.TableStatusBillRequested
		case models.OrderStatusPending:
			status = models.TableStatusOccupied
		}
	}
	return status
}

func newTableView(tableID uint, table *models.Table, orders []models.Order) TableView {
	open := make([]models.Order, 0, len(orders))
	var amount int64
	for _, o := range orders {
		if !o.IsOpen() {
			continue
		}
		open = append(open, o)
		// open totals are display only; saturate instead of failing
		sum, err := addAmount(amount, o.TotalAmount)
		if err != nil {
			sum = math.MaxInt64
		}
		amount = sum
	}
	view := TableView{
		TableID:    tableID,
		Status:     DeriveTableStatus(open),
		OpenOrders: open,
		OpenAmount: amount,
	}
	if table != nil {
		view.DisplayName = table.DisplayName
		view.Capacity = table.Capacity
	}
	return view
}

// TableStatus returns the status and open orders of one table. The table
// row is optional: orders may reference a table the floor plan never
// registered.
func (a *TableAggregator) TableStatus(ctx context.Context, tenantID, tableID uint) (*TableView, error) {
	if tenantID == 0 {
		return nil, ErrMissingTenant
	}
	if view, ok := a.cache.Get(ctx, tenantID, tableID); ok {
		return view, nil
	}

	var view TableView
	err := a.guard.View(ctx, tenantID, func(s *Scope) error {
		var table *models.Table
		var row models.Table
		switch err := s.First(&row, tableID); {
		case err == nil:
			table = &row
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}

		var orders []models.Order
		if err := s.Query().
			Preload("LineItems", s.preload("LineItems")).
			Where("table_id = ? AND status IN ?", tableID, models.OpenOrderStatuses).
			Order("created_at ASC, id ASC").
			Find(&orders).Error; err != nil {
			return err
		}
		view = newTableView(tableID, table, orders)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A mutation committed between the read above and this Set can be
	// overwritten by the older view; the cache TTL bounds how long it lives.
	a.cache.Set(ctx, tenantID, tableID, &view)
	return &view, nil
}

// FloorStatus returns every registered table plus any table referenced
// only by open orders, ordered by table id.
func (a *TableAggregator) FloorStatus(ctx context.Context, tenantID uint) (*FloorView, error) {
	floor := &FloorView{Tables: []TableView{}, Takeaway: []models.Order{}}
	err := a.guard.View(ctx, tenantID, func(s *Scope) error {
		var tables []models.Table
		if err := s.Query().Order("id ASC").Find(&tables).Error; err != nil {
			return err
		}
		var orders []models.Order
		if err := s.Query().
			Preload("LineItems", s.preload("LineItems")).
			Where("status IN ?", models.OpenOrderStatuses).
			Order("created_at ASC, id ASC").
			Find(&orders).Error; err != nil {
			return err
		}

		byTable := make(map[uint][]models.Order)
		for _, o := range orders {
			if o.TableID == nil {
				floor.Takeaway = append(floor.Takeaway, o)
				continue
			}
			byTable[*o.TableID] = append(byTable[*o.TableID], o)
		}

		seen := make(map[uint]bool, len(tables))
		for i := range tables {
			t := &tables[i]
			seen[t.ID] = true
			floor.Tables = append(floor.Tables, newTableView(t.ID, t, byTable[t.ID]))
		}
		for id, list := range byTable {
			if !seen[id] {
				floor.Tables = append(floor.Tables, newTableView(id, nil, list))
			}
		}
		sort.Slice(floor.Tables, func(i, j int) bool {
			return floor.Tables[i].TableID < floor.Tables[j].TableID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return floor, nil
}

type TableInput struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
	Capacity    int    `json:"capacity" binding:"min=0"`
}

// CreateTable registers a seating unit for the floor plan.
func (a *TableAggregator) CreateTable(ctx context.Context, tenantID uint, in TableInput) (*models.Table, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, invalid("display_name", "must not be empty")
	}
	if in.Capacity < 0 {
		return nil, invalid("capacity", "must not be negative")
	}
	table := &models.Table{TenantID: tenantID, DisplayName: name, Capacity: in.Capacity}
	if err := a.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		return s.Insert(table)
	}); err != nil {
		return nil, err
	}
	// a view cached while the id was only known from orders lacks the table
	a.cache.Invalidate(ctx, tenantID, table.ID)
	a.notifier.Notify(tenantID, EventTableUpdate, map[string]interface{}{"table_id": table.ID})
	return table, nil
}

func (a *TableAggregator) ListTables(ctx context.Context, tenantID uint) ([]models.Table, error) {
	var tables []models.Table
	err := a.guard.View(ctx, tenantID, func(s *Scope) error {
		return s.Query().Order("id ASC").Find(&tables).Error
	})
	return tables, err
}

// DeleteTable removes a table with no open order.
func (a *TableAggregator) DeleteTable(ctx context.Context, tenantID, tableID uint) error {
	err := a.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		var table models.Table
		if err := s.First(&table, tableID); err != nil {
			return err
		}
		var open int64
		if err := s.Model(&models.Order{}).
			Where("table_id = ? AND status IN ?", tableID, models.OpenOrderStatuses).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return invalid("table_id", "table still has %d open order(s)", open)
		}
		return s.Query().Where("id = ?", tableID).Delete(&models.Table{}).Error
	})
	if err != nil {
		return err
	}
	a.cache.Invalidate(ctx, tenantID, tableID)
	a.notifier.Notify(tenantID, EventTableUpdate, map[string]interface{}{"table_id": tableID, "deleted": true})
	return nil
}
