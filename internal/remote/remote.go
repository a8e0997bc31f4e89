// Package remote is the user-scoped cloud copy of goals and tabs. It is a
// reflection of the local store, updated only through explicit sync
// operations; nothing keeps the two consistent implicitly. Every read and
// write is filtered by the owning user id, so one user can never touch
// another's rows.
package remote

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnold/streaks-api/internal/models"
)

type Store struct {
	db *gorm.DB
}

// New wraps an open database connection. Production uses the PostgreSQL
// connection from database.Open; tests pass a SQLite one.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the remote tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.User{}, &models.RemoteTab{}, &models.RemoteGoal{})
}

// DB exposes the underlying connection for the auth handlers, which keep
// their user table next to the synced data.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Goals returns every goal owned by userID, sorted by order key.
func (s *Store) Goals(ctx context.Context, userID uuid.UUID) ([]models.RemoteGoal, error) {
	var goals []models.RemoteGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order").
		Find(&goals).Error
	return goals, err
}

// Tabs returns every tab owned by userID, sorted by order key.
func (s *Store) Tabs(ctx context.Context, userID uuid.UUID) ([]models.RemoteTab, error) {
	var tabs []models.RemoteTab
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order").
		Find(&tabs).Error
	return tabs, err
}

// UpsertGoal inserts or fully replaces the goal row keyed by id. The
// existing row must belong to the same user; a colliding id owned by
// someone else is left untouched and the write is dropped.
func (s *Store) UpsertGoal(ctx context.Context, g models.RemoteGoal) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "goals", Name: "user_id"}, Value: g.UserID},
		}},
		UpdateAll: true,
	}).Create(&g).Error
}

// UpsertTab inserts or fully replaces the tab row keyed by id, with the
// same ownership guard as UpsertGoal.
func (s *Store) UpsertTab(ctx context.Context, t models.RemoteTab) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "tabs", Name: "user_id"}, Value: t.UserID},
		}},
		UpdateAll: true,
	}).Create(&t).Error
}

// DeleteGoal removes one of the user's goals. Absent rows are a no-op.
func (s *Store) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.RemoteGoal{}).Error
}

// DeleteTab removes one of the user's tabs. Absent rows are a no-op.
func (s *Store) DeleteTab(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.RemoteTab{}).Error
}
