// Package backend is the data-access surface of the hosted relational store.
// Callers read whole collections and do their own filtering.
package backend

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	TableProfiles         = "profiles"
	TableVenues           = "venues"
	TableVenueImages      = "venue_images"
	TableSuppliers        = "suppliers"
	TableEventPlanners    = "event_planners"
	TableEvents           = "events"
	TableBudgets          = "budgets"
	TableExpenses         = "expenses"
	TableTickets          = "tickets"
	TableCompanyProfiles  = "company_profiles"
	TableSupplierServices = "supplier_services"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrRejected = errors.New("mutation rejected")
)

// Query narrows a Select. The zero value reads every row and column.
type Query struct {
	Columns []string
	Where   map[string]any
	// OrderBy is passed to the store unchanged, e.g. "id desc".
	OrderBy string
	Preload []string
}

type Store interface {
	Select(ctx context.Context, table string, q Query, dest any) error
	Insert(ctx context.Context, table string, record any) error
	Update(ctx context.Context, table string, id uint, changes map[string]any) error
	Delete(ctx context.Context, table string, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Select(ctx context.Context, table string, q Query, dest any) error {
	tx := s.db.WithContext(ctx).Table(table)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	if len(q.Where) > 0 {
		tx = tx.Where(q.Where)
	}
	if q.OrderBy != "" {
		tx = tx.Order(q.OrderBy)
	}
	for _, assoc := range q.Preload {
		tx = tx.Preload(assoc)
	}
	if err := tx.Find(dest).Error; err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (s *GormStore) Insert(ctx context.Context, table string, record any) error {
	if err := s.db.WithContext(ctx).Table(table).Create(record).Error; err != nil {
		return fmt.Errorf("insert %s: %w: %v", table, ErrRejected, err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, table string, id uint, changes map[string]any) error {
	result := s.db.WithContext(ctx).Table(table).Where("id = ? AND deleted_at IS NULL", id).Updates(changes)
	if result.Error != nil {
		return fmt.Errorf("update %s %d: %w: %v", table, id, ErrRejected, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update %s %d: %w", table, id, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes the row, matching the gorm.Model convention of every table.
func (s *GormStore) Delete(ctx context.Context, table string, id uint) error {
	result := s.db.WithContext(ctx).Table(table).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		return fmt.Errorf("delete %s %d: %w: %v", table, id, ErrRejected, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete %s %d: %w", table, id, ErrNotFound)
	}
	return nil
}

// FindByID selects a single row by id.
func FindByID[T any](ctx context.Context, s Store, table string, id uint, preload ...string) (*T, error) {
	var rows []T
	if err := s.Select(ctx, table, Query{Where: map[string]any{"id": id}, Preload: preload}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	return &rows[0], nil
}

// SelectAll reads a whole collection.
func SelectAll[T any](ctx context.Context, s Store, table string, q Query) ([]T, error) {
	var rows []T
	if err := s.Select(ctx, table, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
