package models

// OrderLineItem keeps the name and price the menu supplied when the order
// was taken; later menu changes never touch it.
type OrderLineItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TenantID  uint   `gorm:"not null;index" json:"tenant_id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	Position  int    `gorm:"not null" json:"position"`
	Name      string `gorm:"type:varchar(150);not null" json:"name"`
	UnitPrice int64  `gorm:"not null;check:chk_line_items_price,unit_price >= 0" json:"unit_price"`
	Quantity  int64  `gorm:"not null;check:chk_line_items_qty,quantity > 0" json:"quantity"`
}
