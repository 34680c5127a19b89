package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/yeremiapane/restaurant-till/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultStoreTimeout = 5 * time.Second

// TenantGuard is the only way services reach the database. Every call is
// bound to one tenant and to a deadline.
type TenantGuard struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTenantGuard(db *gorm.DB, timeout time.Duration) *TenantGuard {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &TenantGuard{db: db, timeout: timeout}
}

// Scope is a tenant-bound handle over a *gorm.DB (plain or transactional).
type Scope struct {
	TenantID uint
	base     *gorm.DB
}

// Query starts a statement already filtered on the tenant.
func (s *Scope) Query() *gorm.DB {
	return s.base.Where("tenant_id = ?", s.TenantID)
}

// Model is Query() bound to a model.
func (s *Scope) Model(value interface{}) *gorm.DB {
	return s.base.Model(value).Where("tenant_id = ?", s.TenantID)
}

// Insert creates value. The caller must have set TenantID on it; the guard
// refuses rows stamped for another tenant.
func (s *Scope) Insert(value tenantOwned) error {
	if value.OwnerTenant() != s.TenantID {
		return ErrAccessDenied
	}
	return s.base.Create(value).Error
}

// Owned explains why a lookup by primary key missed inside the scope:
// the row belongs to another tenant (ErrAccessDenied) or does not exist.
func (s *Scope) Owned(model interface{}, id uint) error {
	var owners []uint
	err := s.base.Session(&gorm.Session{NewDB: true}).
		Model(model).
		Where("id = ?", id).
		Limit(1).
		Pluck("tenant_id", &owners).Error
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return ErrNotFound
	}
	if owners[0] != s.TenantID {
		return ErrAccessDenied
	}
	return nil
}

// First loads one row by id inside the scope, classifying a miss.
func (s *Scope) First(dest interface{}, id uint, preloads ...string) error {
	q := s.Query()
	for _, p := range preloads {
		q = q.Preload(p, s.preload(p))
	}
	err := q.Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if ownErr := s.Owned(dest, id); ownErr != nil {
			return ownErr
		}
		return ErrNotFound
	}
	return err
}

// FirstForUpdate is First with a row lock held until the surrounding
// Atomic commits. Dialects without row locks (sqlite) drop the clause and
// rely on their database-level write lock.
func (s *Scope) FirstForUpdate(dest interface{}, id uint) error {
	err := s.Query().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if ownErr := s.Owned(dest, id); ownErr != nil {
			return ownErr
		}
		return ErrNotFound
	}
	return err
}

// View runs fn with a read scope.
func (g *TenantGuard) View(ctx context.Context, tenantID uint, fn func(s *Scope) error) error {
	if tenantID == 0 {
		return ErrMissingTenant
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	s := &Scope{TenantID: tenantID, base: g.db.WithContext(ctx)}
	return translateStorageError(ctx, fn(s))
}

// Atomic runs fn inside one database transaction. Returning an error from
// fn rolls everything back.
func (g *TenantGuard) Atomic(ctx context.Context, tenantID uint, fn func(s *Scope) error) error {
	if tenantID == 0 {
		return ErrMissingTenant
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Scope{TenantID: tenantID, base: tx})
	})
	return translateStorageError(ctx, err)
}

// tenantOwned is implemented by every model the guard can insert.
type tenantOwned interface {
	OwnerTenant() uint
}

// preload keeps associations inside the tenant too.
func (s *Scope) preload(name string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("tenant_id = ?", s.TenantID)
		if name == "LineItems" {
			db = db.Order("position ASC")
		}
		return db
	}
}

// Upsert inserts value or, when conflictColumns already match a row of the
// same tenant, overwrites updateColumns.
func (s *Scope) Upsert(value tenantOwned, conflictColumns, updateColumns []string) error {
	if value.OwnerTenant() != s.TenantID {
		return ErrAccessDenied
	}
	cols := make([]clause.Column, 0, len(conflictColumns))
	for _, c := range conflictColumns {
		cols = append(cols, clause.Column{Name: c})
	}
	return s.base.Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(value).Error
}

// ActiveTenants lists the tenants with ledger activity in [from, to). It
// is the one read that crosses tenants and it returns ids only; the
// scheduler uses it to know whose till to close.
func (g *TenantGuard) ActiveTenants(ctx context.Context, from, to time.Time) ([]uint, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	seen := make(map[uint]bool)
	var result []uint
	for _, model := range []interface{}{&models.Transaction{}, &models.Expense{}} {
		var ids []uint
		err := g.db.WithContext(ctx).Model(model).
			Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
			Distinct().
			Pluck("tenant_id", &ids).Error
		if err != nil {
			return nil, translateStorageError(ctx, err)
		}
		for _, id := range ids {
			if id != 0 && !seen[id] {
				seen[id] = true
				result = append(result, id)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}
