package services

import (
	"time"

	"gorm.io/gorm"
)

type CoreOptions struct {
	StoreTimeout time.Duration
	Location     *time.Location
	Notifier     Notifier
	Cache        TableStatusCache
}

// Core wires the till components around one database.
type Core struct {
	Guard  *TenantGuard
	Ledger *LedgerStore
	Orders *OrderEngine
	Tables *TableAggregator
	Till   *TillService
}

func NewCore(db *gorm.DB, opts CoreOptions) *Core {
	guard := NewTenantGuard(db, opts.StoreTimeout)
	ledger := NewLedgerStore(guard, opts.Notifier)
	return &Core{
		Guard:  guard,
		Ledger: ledger,
		Orders: NewOrderEngine(guard, opts.Notifier, opts.Cache),
		Tables: NewTableAggregator(guard, opts.Notifier, opts.Cache),
		Till:   NewTillService(guard, ledger, opts.Notifier, opts.Location),
	}
}
