package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/utils"
	"gorm.io/gorm"
)

// LedgerStore keeps Transactions (money in) and Expenses (money out).
// Neither is ever updated or deleted.
type LedgerStore struct {
	guard    *TenantGuard
	notifier Notifier
}

func NewLedgerStore(guard *TenantGuard, notifier Notifier) *LedgerStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &LedgerStore{guard: guard, notifier: notifier}
}

type ExpenseInput struct {
	Label    string `json:"label" binding:"required,max=150"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
}

// MethodTotal is the sum of one payment method in a window.
type MethodTotal struct {
	PaymentMethod string `json:"payment_method"`
	Total         int64  `json:"total"`
	Count         int64  `json:"count"`
}

type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

func (in ExpenseInput) normalize() (ExpenseInput, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))

	if in.Label == "" {
		return in, invalid("label", "must not be empty")
	}
	if in.Amount <= 0 {
		return in, invalid("amount", "must be greater than zero")
	}
	if in.Category == "" {
		in.Category = models.ExpenseCategoryMisc
	}
	if in.Category == models.ExpenseCategoryRefund {
		return in, invalid("category", "refunds are recorded against a transaction")
	}
	known := false
	for _, c := range models.KnownExpenseCategories {
		if c == in.Category {
			known = true
			break
		}
	}
	if !known {
		return in, invalid("category", "unknown category %q", in.Category)
	}
	switch in.Kind {
	case "":
		in.Kind = models.ExpenseKindVariable
	case models.ExpenseKindFixed, models.ExpenseKindVariable:
	default:
		return in, invalid("kind", "must be fixed or variable")
	}
	return in, nil
}

func (l *LedgerStore) RecordExpense(ctx context.Context, tenantID uint, in ExpenseInput) (*models.Expense, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		TenantID: tenantID,
		Label:    in.Label,
		Amount:   in.Amount,
		Category: in.Category,
		Kind:     in.Kind,
	}
	if err := l.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		return s.Insert(expense)
	}); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"expense_id": expense.ID,
		"category":   expense.Category,
		"amount":     expense.Amount,
	}).Info("expense recorded")
	l.notifier.Notify(tenantID, EventExpenseRecorded, expense)
	return expense, nil
}

// RecordRefund books a compensating expense against a transaction. Refunds
// for one transaction never add up to more than what was collected.
func (l *LedgerStore) RecordRefund(ctx context.Context, tenantID, transactionID uint, amount int64, reason string) (*models.Expense, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "must not be empty")
	}
	if amount <= 0 {
		return nil, invalid("amount", "must be greater than zero")
	}

	var refund *models.Expense
	err := l.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		// Refunds for one transaction serialize on its row so the sum
		// below cannot go stale before the insert.
		var txn models.Transaction
		if err := s.FirstForUpdate(&txn, transactionID); err != nil {
			return err
		}

		var refunded int64
		if err := s.Model(&models.Expense{}).
			Where("transaction_id = ?", txn.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&refunded).Error; err != nil {
			return err
		}
		total, err := addAmount(refunded, amount)
		if err != nil {
			return err
		}
		if total > txn.Amount {
			return fmt.Errorf("%w: %d already refunded of %d", ErrRefundExceeded, refunded, txn.Amount)
		}

		id := txn.ID
		refund = &models.Expense{
			TenantID:      tenantID,
			Label:         fmt.Sprintf("Refund %s: %s", txn.Reference, reason),
			Amount:        amount,
			Category:      models.ExpenseCategoryRefund,
			Kind:          models.ExpenseKindVariable,
			TransactionID: &id,
		}
		return s.Insert(refund)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"transaction_id": transactionID,
		"amount":         amount,
	}).Info("refund recorded")
	l.notifier.Notify(tenantID, EventExpenseRecorded, refund)
	return refund, nil
}

// Page bounds a ledger listing. A zero or oversized Limit means
// maxListEntries.
type Page struct {
	Limit  int
	Offset int
}

const (
	maxListEntries = 500
	scanBatch      = 1000
)

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit <= 0 || p.Limit > maxListEntries {
		p.Limit = maxListEntries
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return q.Limit(p.Limit).Offset(p.Offset)
}

func (l *LedgerStore) ListTransactions(ctx context.Context, tenantID uint, from, to time.Time, page Page) ([]models.Transaction, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	var txns []models.Transaction
	err := l.guard.View(ctx, tenantID, func(s *Scope) error {
		return page.apply(inWindow(s.Query(), from, to)).
			Order("created_at ASC, id ASC").
			Find(&txns).Error
	})
	return txns, err
}

func (l *LedgerStore) ListExpenses(ctx context.Context, tenantID uint, from, to time.Time, page Page) ([]models.Expense, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	var expenses []models.Expense
	err := l.guard.View(ctx, tenantID, func(s *Scope) error {
		return page.apply(inWindow(s.Query(), from, to)).
			Order("created_at ASC, id ASC").
			Find(&expenses).Error
	})
	return expenses, err
}

// EachTransaction streams the window in id order, scanBatch rows at a
// time, loading only created_at and amount.
func (l *LedgerStore) EachTransaction(ctx context.Context, tenantID uint, from, to time.Time, fn func(at time.Time, amount int64) error) error {
	if err := checkWindow(from, to); err != nil {
		return err
	}
	return l.guard.View(ctx, tenantID, func(s *Scope) error {
		var batch []models.Transaction
		return inWindow(s.Query(), from, to).
			Select("id", "created_at", "amount").
			FindInBatches(&batch, scanBatch, func(*gorm.DB, int) error {
				for _, txn := range batch {
					if err := fn(txn.CreatedAt, txn.Amount); err != nil {
						return err
					}
				}
				return nil
			}).Error
	})
}

// EachExpense is EachTransaction for expenses.
func (l *LedgerStore) EachExpense(ctx context.Context, tenantID uint, from, to time.Time, fn func(at time.Time, amount int64) error) error {
	if err := checkWindow(from, to); err != nil {
		return err
	}
	return l.guard.View(ctx, tenantID, func(s *Scope) error {
		var batch []models.Expense
		return inWindow(s.Query(), from, to).
			Select("id", "created_at", "amount").
			FindInBatches(&batch, scanBatch, func(*gorm.DB, int) error {
				for _, exp := range batch {
					if err := fn(exp.CreatedAt, exp.Amount); err != nil {
						return err
					}
				}
				return nil
			}).Error
	})
}

// TransactionForOrder returns the ledger entry written when the order was
// finalized, or ErrNotFound while it is still open.
func (l *LedgerStore) TransactionForOrder(ctx context.Context, tenantID, orderID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := l.guard.View(ctx, tenantID, func(s *Scope) error {
		if err := s.Query().Where("order_id = ?", orderID).Take(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if ownErr := s.Owned(&models.Order{}, orderID); ownErr != nil {
					return ownErr
				}
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (l *LedgerStore) SumTransactionsByMethod(ctx context.Context, tenantID uint, from, to time.Time) ([]MethodTotal, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	var rows []MethodTotal
	err := l.guard.View(ctx, tenantID, func(s *Scope) error {
		return inWindow(s.Model(&models.Transaction{}), from, to).
			Select("payment_method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Group("payment_method").
			Order("payment_method").
			Scan(&rows).Error
	})
	return rows, err
}

func (l *LedgerStore) SumExpensesByCategory(ctx context.Context, tenantID uint, from, to time.Time) ([]CategoryTotal, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	var rows []CategoryTotal
	err := l.guard.View(ctx, tenantID, func(s *Scope) error {
		return inWindow(s.Model(&models.Expense{}), from, to).
			Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Group("category").
			Order("category").
			Scan(&rows).Error
	})
	return rows, err
}

// insertTransaction is called by finalize only, inside its transaction.
func insertTransaction(s *Scope, txn *models.Transaction) error {
	if txn.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	return s.Insert(txn)
}

func checkWindow(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return invalid("window", "from and to are required")
	}
	if to.Before(from) {
		return invalid("window", "to must not be before from")
	}
	return nil
}

// inWindow applies the half-open [from, to) filter on created_at.
func inWindow(q *gorm.DB, from, to time.Time) *gorm.DB {
	return q.Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC())
}
