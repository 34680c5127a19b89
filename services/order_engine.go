package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/utils"
)

// OrderEngine owns the order lifecycle:
//
//	pending -> ready -> closed
//	pending|ready -> cancelled (row removed, OrderCancellation kept)
//
// Closing an order (Finalize) writes exactly one Transaction.
type OrderEngine struct {
	guard    *TenantGuard
	notifier Notifier
	cache    TableStatusCache
}

func NewOrderEngine(guard *TenantGuard, notifier Notifier, cache TableStatusCache) *OrderEngine {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &OrderEngine{guard: guard, notifier: notifier, cache: cache}
}

type LineItemInput struct {
	Name      string `json:"name" binding:"required,max=150"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderInput struct {
	TableID *uint           `json:"table_id"`
	Items   []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

type OrderFilter struct {
	Status   string
	TableID  *uint
	OpenOnly bool
	Limit    int
}

type FinalizeResult struct {
	Order       *models.Order       `json:"order"`
	Transaction *models.Transaction `json:"transaction"`
}

const maxListOrders = 500

// buildLineItems validates the cart and returns the rows and their total.
func buildLineItems(tenantID uint, inputs []LineItemInput) ([]models.OrderLineItem, int64, error) {
	if len(inputs) == 0 {
		return nil, 0, invalid("items", "at least one line item is required")
	}
	items := make([]models.OrderLineItem, 0, len(inputs))
	var total int64
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, 0, invalid(fmt.Sprintf("items[%d].name", i), "must not be empty")
		}
		if in.UnitPrice < 0 {
			return nil, 0, invalid(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		}
		if in.Quantity <= 0 {
			return nil, 0, invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		line, err := mulAmount(in.UnitPrice, in.Quantity)
		if err != nil {
			return nil, 0, err
		}
		if total, err = addAmount(total, line); err != nil {
			return nil, 0, err
		}
		items = append(items, models.OrderLineItem{
			TenantID:  tenantID,
			Position:  i + 1,
			Name:      name,
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
		})
	}
	return items, total, nil
}

// NormalizePaymentMethod lowercases the method; an empty method is cash.
func NormalizePaymentMethod(method string) (string, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return models.PaymentMethodCash, nil
	}
	if len(method) > 30 {
		return "", invalid("payment_method", "too long")
	}
	for _, r := range method {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return "", invalid("payment_method", "unexpected character %q", r)
		}
	}
	return method, nil
}

func (e *OrderEngine) CreateOrder(ctx context.Context, tenantID uint, in CreateOrderInput) (*models.Order, error) {
	items, total, err := buildLineItems(tenantID, in.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TenantID:    tenantID,
		TableID:     in.TableID,
		Reference:   newReference("ORD"),
		Status:      models.OrderStatusPending,
		TotalAmount: total,
		LineItems:   items,
	}
	if err := e.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		return s.Insert(order)
	}); err != nil {
		return nil, err
	}

	e.committed(ctx, EventOrderCreated, order)
	return order, nil
}

func (e *OrderEngine) GetOrder(ctx context.Context, tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := e.guard.View(ctx, tenantID, func(s *Scope) error {
		return s.First(&order, orderID, "LineItems")
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (e *OrderEngine) ListOrders(ctx context.Context, tenantID uint, filter OrderFilter) ([]models.Order, error) {
	if filter.Limit <= 0 || filter.Limit > maxListOrders {
		filter.Limit = maxListOrders
	}
	var orders []models.Order
	err := e.guard.View(ctx, tenantID, func(s *Scope) error {
		q := s.Query().Preload("LineItems", s.preload("LineItems"))
		switch {
		case filter.Status != "":
			q = q.Where("status = ?", filter.Status)
		case filter.OpenOnly:
			q = q.Where("status IN ?", models.OpenOrderStatuses)
		}
		if filter.TableID != nil {
			q = q.Where("table_id = ?", *filter.TableID)
		}
		return q.Order("created_at ASC, id ASC").Limit(filter.Limit).Find(&orders).Error
	})
	return orders, err
}

// CountByStatus counts the tenant's orders per status. Every lifecycle
// status is present, zero or not.
func (e *OrderEngine) CountByStatus(ctx context.Context, tenantID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := e.guard.View(ctx, tenantID, func(s *Scope) error {
		return s.Model(&models.Order{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{
		models.OrderStatusPending: 0,
		models.OrderStatusReady:   0,
		models.OrderStatusClosed:  0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// MarkReady moves a pending order to ready. Calling it again on a ready
// order is a no-op.
func (e *OrderEngine) MarkReady(ctx context.Context, tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	changed := false
	err := e.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		res := s.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusReady)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0

		if err := s.First(&order, orderID, "LineItems"); err != nil {
			return err
		}
		if !changed && order.Status == models.OrderStatusClosed {
			return fmt.Errorf("%w: order %d is closed", ErrInvalidTransition, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.committed(ctx, EventOrderReady, &order)
	}
	return &order, nil
}

// Finalize closes a ready order and records its payment. The status flip
// is a conditional update on status = ready, so of two concurrent calls
// only one sees a row change; the other gets ErrAlreadyClosed. The unique
// index on transactions.order_id backs this up.
func (e *OrderEngine) Finalize(ctx context.Context, tenantID, orderID uint, paymentMethod string) (*FinalizeResult, error) {
	method, err := NormalizePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}

	var (
		order models.Order
		txn   models.Transaction
	)
	err = e.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		res := s.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusReady).
			Update("status", models.OrderStatusClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Order
			if err := s.First(&current, orderID); err != nil {
				return err
			}
			switch current.Status {
			case models.OrderStatusClosed:
				return ErrAlreadyClosed
			case models.OrderStatusPending:
				return fmt.Errorf("%w: order %d is not ready", ErrInvalidTransition, orderID)
			}
			return ErrStorageConflict
		}

		if err := s.First(&order, orderID, "LineItems"); err != nil {
			return err
		}
		txn = models.Transaction{
			TenantID:      tenantID,
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			PaymentMethod: method,
			Reference:     newReference("TRX"),
		}
		if err := insertTransaction(s, &txn); err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyClosed
			}
			return err
		}
		return nil
	})
	if err != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"order_id":  orderID,
			"error":     err,
		}).Warn("finalize rejected")
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"order_id":       order.ID,
		"transaction_id": txn.ID,
		"amount":         txn.Amount,
		"payment_method": txn.PaymentMethod,
	}).Info("order finalized")
	e.committed(ctx, EventOrderClosed, &order)
	e.notifier.Notify(tenantID, EventTransactionAdded, &txn)
	return &FinalizeResult{Order: &order, Transaction: &txn}, nil
}

// CancelOrder discards an order that was never paid. The row and its line
// items are removed; a snapshot is kept in order_cancellations.
func (e *OrderEngine) CancelOrder(ctx context.Context, tenantID, orderID uint, reason string) (*models.OrderCancellation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "must not be empty")
	}

	var (
		order        models.Order
		cancellation *models.OrderCancellation
	)
	err := e.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		if err := s.First(&order, orderID, "LineItems"); err != nil {
			return err
		}
		if order.Status == models.OrderStatusClosed {
			return fmt.Errorf("%w: order %d is closed", ErrInvalidTransition, orderID)
		}

		res := s.Query().
			Where("id = ? AND status IN ?", orderID, models.OpenOrderStatuses).
			Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// finalized between our read and the delete
			return fmt.Errorf("%w: order %d is closed", ErrInvalidTransition, orderID)
		}
		if err := s.Query().Where("order_id = ?", orderID).Delete(&models.OrderLineItem{}).Error; err != nil {
			return err
		}

		snapshot, err := json.Marshal(order)
		if err != nil {
			return err
		}
		cancellation = &models.OrderCancellation{
			TenantID:    tenantID,
			OrderID:     orderID,
			Reason:      reason,
			Snapshot:    snapshot,
			CancelledAt: time.Now().UTC(),
		}
		return s.Insert(cancellation)
	})
	if err != nil {
		return nil, err
	}

	e.committed(ctx, EventOrderCancelled, &order)
	return cancellation, nil
}

// EditLineItems replaces the cart of a pending order and recomputes its
// total. Ready and closed orders are locked.
func (e *OrderEngine) EditLineItems(ctx context.Context, tenantID, orderID uint, inputs []LineItemInput) (*models.Order, error) {
	items, total, err := buildLineItems(tenantID, inputs)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = e.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		res := s.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("total_amount", total)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Order
			if err := s.First(&current, orderID); err != nil {
				return err
			}
			// MySQL reports zero affected rows when nothing changed
			if current.Status != models.OrderStatusPending {
				return fmt.Errorf("%w: order %d is %s", ErrOrderLocked, orderID, current.Status)
			}
		}

		if err := s.Query().Where("order_id = ?", orderID).Delete(&models.OrderLineItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = orderID
			if err := s.Insert(&items[i]); err != nil {
				return err
			}
		}
		return s.First(&order, orderID, "LineItems")
	})
	if err != nil {
		return nil, err
	}

	e.committed(ctx, EventOrderUpdated, &order)
	return &order, nil
}

// committed runs after a successful commit: drop the cached table view and
// tell connected terminals.
func (e *OrderEngine) committed(ctx context.Context, event string, order *models.Order) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": order.TenantID,
		"order_id":  order.ID,
		"status":    order.Status,
		"event":     event,
	}).Debug("order changed")

	e.notifier.Notify(order.TenantID, event, order)
	if order.TableID != nil {
		e.cache.Invalidate(ctx, order.TenantID, *order.TableID)
		e.notifier.Notify(order.TenantID, EventTableUpdate, map[string]interface{}{
			"table_id": *order.TableID,
		})
	}
}
