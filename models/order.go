package models

import (
	"time"
)

// Status order
const (
	OrderStatusPending = "pending"
	OrderStatusReady   = "ready"
	OrderStatusClosed  = "closed"
)

// OpenOrderStatuses are the statuses a table aggregation looks at.
var OpenOrderStatuses = []string{OrderStatusPending, OrderStatusReady}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;index:idx_orders_tenant_status,priority:1;index:idx_orders_tenant_table,priority:1" json:"tenant_id"`
	TableID     *uint           `gorm:"index:idx_orders_tenant_table,priority:2" json:"table_id"`
	Reference   string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"reference"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_tenant_status,priority:2" json:"status"`
	TotalAmount int64           `gorm:"not null;default:0;check:chk_orders_total,total_amount >= 0" json:"total_amount"`
	LineItems   []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// IsOpen reports whether the order still counts towards its table.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusReady
}

// IsTakeaway is true when no table is attached.
func (o *Order) IsTakeaway() bool {
	return o.TableID == nil
}
