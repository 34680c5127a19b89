package models

import "time"

const (
	ExpenseCategoryRent      = "rent"
	ExpenseCategoryEnergy    = "energy"
	ExpenseCategoryTransport = "transport"
	ExpenseCategorySalaries  = "salaries"
	ExpenseCategoryMisc      = "misc"
	// ExpenseCategoryRefund marks compensating entries for a closed order.
	ExpenseCategoryRefund = "refund"
)

var KnownExpenseCategories = []string{
	ExpenseCategoryRent,
	ExpenseCategoryEnergy,
	ExpenseCategoryTransport,
	ExpenseCategorySalaries,
	ExpenseCategoryMisc,
	ExpenseCategoryRefund,
}

const (
	ExpenseKindFixed    = "fixed"
	ExpenseKindVariable = "variable"
)

type Expense struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"not null;index:idx_expenses_tenant_created,priority:1" json:"tenant_id"`
	Label         string    `gorm:"type:varchar(150);not null" json:"label"`
	Amount        int64     `gorm:"not null;check:chk_expenses_amount,amount > 0" json:"amount"`
	Category      string    `gorm:"type:varchar(30);not null;default:'misc'" json:"category"`
	Kind          string    `gorm:"type:varchar(20);not null;default:'variable'" json:"kind"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"not null;index:idx_expenses_tenant_created,priority:2" json:"created_at"`
}
