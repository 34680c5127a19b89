package models

import "time"

// Table status is never stored, see services.TableAggregator.
const (
	TableStatusFree          = "free"
	TableStatusOccupied      = "occupied"
	TableStatusBillRequested = "bill_requested"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	DisplayName string    `gorm:"type:varchar(50);not null" json:"display_name"`
	Capacity    int       `gorm:"not null;default:0" json:"capacity"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
