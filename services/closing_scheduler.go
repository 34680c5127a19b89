package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/utils"
)

// ClosingScheduler closes yesterday's till for every tenant that had
// ledger activity, on a cron schedule.
type ClosingScheduler struct {
	till    *TillService
	guard   *TenantGuard
	cron    *cron.Cron
	spec    string
	mu      sync.Mutex
	running bool
	now     func() time.Time
}

func NewClosingScheduler(till *TillService, guard *TenantGuard, spec string) *ClosingScheduler {
	return &ClosingScheduler{
		till:  till,
		guard: guard,
		cron:  cron.New(cron.WithLocation(till.Location())),
		spec:  spec,
		now:   time.Now,
	}
}

func (s *ClosingScheduler) Start() error {
	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid closing cron %q: %w", s.spec, err)
	}
	if _, err := s.cron.AddFunc(s.spec, s.closeYesterday); err != nil {
		return err
	}
	s.cron.Start()
	utils.InfoLogger.Printf("Closing scheduler started, cron: %s", s.spec)
	return nil
}

// Stop waits for a running job to finish.
func (s *ClosingScheduler) Stop() {
	<-s.cron.Stop().Done()
	utils.InfoLogger.Println("Closing scheduler stopped")
}

func (s *ClosingScheduler) closeYesterday() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		utils.InfoLogger.Println("Closing job still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	yesterday := s.now().In(s.till.Location()).AddDate(0, 0, -1)
	if _, err := s.RunFor(context.Background(), yesterday); err != nil {
		utils.ErrorLogger.WithError(err).Error("daily closing failed")
	}
}

// RunFor closes the given business day for every active tenant and returns
// how many tenants were closed. One tenant failing does not stop the rest.
func (s *ClosingScheduler) RunFor(ctx context.Context, day time.Time) (int, error) {
	loc := s.till.Location()
	day = day.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	tenants, err := s.guard.ActiveTenants(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}

	closed := 0
	var firstErr error
	for _, tenantID := range tenants {
		if _, err := s.till.CloseDay(ctx, tenantID, start); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"tenant_id":     tenantID,
				"business_date": start.Format("2006-01-02"),
			}).WithError(err).Error("closing tenant till failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		closed++
	}
	return closed, firstErr
}
