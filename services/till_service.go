package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/utils"
)

// Report periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

const (
	GranularityHour = "hour"
	GranularityDay  = "day"

	maxHistoryDays = 366
)

// Reconciliation is the till position for a [From, To) window.
type Reconciliation struct {
	From               time.Time        `json:"from"`
	To                 time.Time        `json:"to"`
	GrossReceipts      int64            `json:"gross_receipts"`
	TotalExpenses      int64            `json:"total_expenses"`
	NetCash            int64            `json:"net_cash"`
	Deficit            bool             `json:"deficit"`
	CashReceipts       int64            `json:"cash_receipts"`
	CashlessReceipts   int64            `json:"cashless_receipts"`
	TransactionCount   int64            `json:"transaction_count"`
	ExpenseCount       int64            `json:"expense_count"`
	ByPaymentMethod    map[string]int64 `json:"by_payment_method"`
	ExpensesByCategory map[string]int64 `json:"expenses_by_category"`
}

type HistoryBucket struct {
	Start        time.Time `json:"start"`
	Receipts     int64     `json:"receipts"`
	Transactions int64     `json:"transactions"`
	Expenses     int64     `json:"expenses"`
}

type History struct {
	Granularity string          `json:"granularity"`
	Buckets     []HistoryBucket `json:"buckets"`
}

type TillService struct {
	guard    *TenantGuard
	ledger   *LedgerStore
	notifier Notifier
	loc      *time.Location
}

func NewTillService(guard *TenantGuard, ledger *LedgerStore, notifier Notifier, loc *time.Location) *TillService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TillService{guard: guard, ledger: ledger, notifier: notifier, loc: loc}
}

func (t *TillService) Location() *time.Location {
	return t.loc
}

// Reconcile sums the ledger over [from, to). A negative NetCash is legal
// and is flagged with Deficit.
func (t *TillService) Reconcile(ctx context.Context, tenantID uint, from, to time.Time) (*Reconciliation, error) {
	methods, err := t.ledger.SumTransactionsByMethod(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	categories, err := t.ledger.SumExpensesByCategory(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		From:               from,
		To:                 to,
		ByPaymentMethod:    make(map[string]int64, len(models.KnownPaymentMethods)),
		ExpensesByCategory: make(map[string]int64, len(models.KnownExpenseCategories)),
	}
	for _, m := range models.KnownPaymentMethods {
		rec.ByPaymentMethod[m] = 0
	}
	for _, c := range models.KnownExpenseCategories {
		rec.ExpensesByCategory[c] = 0
	}

	for _, m := range methods {
		if rec.GrossReceipts, err = addAmount(rec.GrossReceipts, m.Total); err != nil {
			return nil, err
		}
		if rec.ByPaymentMethod[m.PaymentMethod], err = addAmount(rec.ByPaymentMethod[m.PaymentMethod], m.Total); err != nil {
			return nil, err
		}
		rec.TransactionCount += m.Count
		if m.PaymentMethod == models.PaymentMethodCash {
			rec.CashReceipts += m.Total
		}
	}
	rec.CashlessReceipts = rec.GrossReceipts - rec.CashReceipts

	for _, c := range categories {
		if rec.TotalExpenses, err = addAmount(rec.TotalExpenses, c.Total); err != nil {
			return nil, err
		}
		if rec.ExpensesByCategory[c.Category], err = addAmount(rec.ExpensesByCategory[c.Category], c.Total); err != nil {
			return nil, err
		}
		rec.ExpenseCount += c.Count
	}

	rec.NetCash = rec.GrossReceipts - rec.TotalExpenses
	rec.Deficit = rec.NetCash < 0
	return rec, nil
}

// PeriodWindow turns a report period into a window in loc:
// daily is today, weekly is the last seven days including today, monthly
// is the calendar month.
func PeriodWindow(period string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case "", PeriodDaily:
		return today, today.AddDate(0, 0, 1), nil
	case PeriodWeekly:
		return today.AddDate(0, 0, -6), today.AddDate(0, 0, 1), nil
	case PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, invalid("period", "must be daily, weekly or monthly")
	}
}

// History buckets receipts and expenses per hour for windows up to a day,
// per day otherwise. Empty buckets are included.
func (t *TillService) History(ctx context.Context, tenantID uint, from, to time.Time) (*History, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	if to.Sub(from) > maxHistoryDays*24*time.Hour {
		return nil, invalid("window", "history is limited to %d days", maxHistoryDays)
	}

	granularity := GranularityDay
	if to.Sub(from) <= 24*time.Hour {
		granularity = GranularityHour
	}
	floor := func(ts time.Time) time.Time {
		ts = ts.In(t.loc)
		if granularity == GranularityHour {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, t.loc)
		}
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, t.loc)
	}
	next := func(ts time.Time) time.Time {
		if granularity == GranularityHour {
			return ts.Add(time.Hour)
		}
		return ts.AddDate(0, 0, 1)
	}

	history := &History{Granularity: granularity, Buckets: []HistoryBucket{}}
	index := make(map[int64]int)
	for b := floor(from); b.Before(to); b = next(b) {
		index[b.Unix()] = len(history.Buckets)
		history.Buckets = append(history.Buckets, HistoryBucket{Start: b})
	}

	err := t.ledger.EachTransaction(ctx, tenantID, from, to, func(at time.Time, amount int64) error {
		i, ok := index[floor(at).Unix()]
		if !ok {
			return nil
		}
		b := &history.Buckets[i]
		sum, err := addAmount(b.Receipts, amount)
		if err != nil {
			return err
		}
		b.Receipts = sum
		b.Transactions++
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = t.ledger.EachExpense(ctx, tenantID, from, to, func(at time.Time, amount int64) error {
		i, ok := index[floor(at).Unix()]
		if !ok {
			return nil
		}
		b := &history.Buckets[i]
		sum, err := addAmount(b.Expenses, amount)
		if err != nil {
			return err
		}
		b.Expenses = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// CloseDay reconciles one business day and stores the result. Closing the
// same day again overwrites the stored figures.
func (t *TillService) CloseDay(ctx context.Context, tenantID uint, day time.Time) (*models.DailyClosing, error) {
	day = day.In(t.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.loc)
	end := start.AddDate(0, 0, 1)

	rec, err := t.Reconcile(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	byMethod, err := json.Marshal(rec.ByPaymentMethod)
	if err != nil {
		return nil, err
	}

	closing := &models.DailyClosing{
		TenantID:      tenantID,
		BusinessDate:  start.Format("2006-01-02"),
		GrossReceipts: rec.GrossReceipts,
		TotalExpenses: rec.TotalExpenses,
		NetCash:       rec.NetCash,
		Deficit:       rec.Deficit,
		ByMethod:      byMethod,
		ClosedAt:      time.Now().UTC(),
	}
	err = t.guard.Atomic(ctx, tenantID, func(s *Scope) error {
		if err := s.Upsert(closing,
			[]string{"tenant_id", "business_date"},
			[]string{"gross_receipts", "total_expenses", "net_cash", "deficit", "by_method", "closed_at"},
		); err != nil {
			return err
		}
		return s.Query().Where("business_date = ?", closing.BusinessDate).Take(closing).Error
	})
	if err != nil {
		return nil, err
	}

	entry := utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":     tenantID,
		"business_date": closing.BusinessDate,
		"net_cash":      utils.FormatAmount(closing.NetCash),
	})
	if closing.Deficit {
		entry.Warn("till closed in deficit")
	} else {
		entry.Info("till closed")
	}
	t.notifier.Notify(tenantID, EventTillClosed, closing)
	return closing, nil
}

func (t *TillService) ListClosings(ctx context.Context, tenantID uint, limit int) ([]models.DailyClosing, error) {
	if limit <= 0 || limit > 366 {
		limit = 31
	}
	var closings []models.DailyClosing
	err := t.guard.View(ctx, tenantID, func(s *Scope) error {
		return s.Query().Order("business_date DESC").Limit(limit).Find(&closings).Error
	})
	return closings, err
}

// GetClosing returns the stored close for a business date (YYYY-MM-DD).
func (t *TillService) GetClosing(ctx context.Context, tenantID uint, date string) (*models.DailyClosing, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	var closing models.DailyClosing
	err := t.guard.View(ctx, tenantID, func(s *Scope) error {
		return s.Query().Where("business_date = ?", date).Take(&closing).Error
	})
	if err != nil {
		return nil, err
	}
	return &closing, nil
}
