package models

import (
	"time"

	"gorm.io/datatypes"
)

// DailyClosing is the persisted till close for one business day.
type DailyClosing struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      uint           `gorm:"not null;uniqueIndex:idx_closing_tenant_date,priority:1" json:"tenant_id"`
	BusinessDate  string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_closing_tenant_date,priority:2" json:"business_date"`
	GrossReceipts int64          `gorm:"not null" json:"gross_receipts"`
	TotalExpenses int64          `gorm:"not null" json:"total_expenses"`
	NetCash       int64          `gorm:"not null" json:"net_cash"`
	Deficit       bool           `gorm:"not null;default:false" json:"deficit"`
	ByMethod      datatypes.JSON `json:"by_payment_method"`
	ClosedAt      time.Time      `gorm:"not null" json:"closed_at"`
}
