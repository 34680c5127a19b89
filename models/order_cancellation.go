package models

import (
	"time"

	"gorm.io/datatypes"
)

// OrderCancellation is what remains of a discarded order.
type OrderCancellation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TenantID    uint           `gorm:"not null;index" json:"tenant_id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	Reason      string         `gorm:"type:varchar(255);not null" json:"reason"`
	Snapshot    datatypes.JSON `json:"snapshot"`
	CancelledAt time.Time      `gorm:"not null" json:"cancelled_at"`
}
