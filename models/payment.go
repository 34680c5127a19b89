package models

import (
	"time"
)

// Metode pembayaran yang dikenal kasir
const (
	PaymentMethodCash        = "cash"
	PaymentMethodOrangeMoney = "orange_money"
	PaymentMethodWave        = "wave"
	PaymentMethodMTNMoMo     = "mtn_momo"
	PaymentMethodCard        = "card"
)

// KnownPaymentMethods is the order reports list methods in.
var KnownPaymentMethods = []string{
	PaymentMethodCash,
	PaymentMethodOrangeMoney,
	PaymentMethodWave,
	PaymentMethodMTNMoMo,
	PaymentMethodCard,
}

func IsKnownPaymentMethod(method string) bool {
	for _, m := range KnownPaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Transaction is the money received when an order is finalized. Rows are
// never updated; a correction is a compensating Expense.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"not null;index:idx_transactions_tenant_created,priority:1" json:"tenant_id"`
	OrderID       uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	Amount        int64     `gorm:"not null;check:chk_transactions_amount,amount >= 0" json:"amount"`
	PaymentMethod string    `gorm:"type:varchar(30);not null;default:'cash'" json:"payment_method"`
	Reference     string    `gorm:"type:varchar(40);not null" json:"reference"`
	CreatedAt     time.Time `gorm:"not null;index:idx_transactions_tenant_created,priority:2" json:"created_at"`
}
