// Package store is the durable local home of goals and tabs. It owns
// schema migration, ordering, and the per-scope gates that keep
// read-modify-write operations from losing updates. One Store is opened
// per process and passed by reference to whatever needs it.
package store

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/streaks-api/internal/database"
	"github.com/arnold/streaks-api/internal/models"
)

type Store struct {
	db    *gorm.DB
	gates *gateMap
}

// Open opens (or creates) the local database at path and runs any pending
// schema migrations before returning. The returned Store must be closed
// by the caller.
func Open(path string) (*Store, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, storageErr("open", err)
	}

	s := &Store{db: db, gates: newGateMap()}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storageErr("close", err)
	}
	return storageErr("close", sqlDB.Close())
}

// GetAllGoals returns every goal in insertion order. Callers sort by the
// Order field themselves.
func (s *Store) GetAllGoals() ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Find(&goals).Error; err != nil {
		return nil, storageErr("get all goals", err)
	}
	return goals, nil
}

// GetGoalsByTab returns the goals belonging to one tab, in insertion order.
func (s *Store) GetGoalsByTab(tabID uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Where("tab_id = ?", tabID).Find(&goals).Error; err != nil {
		return nil, storageErr("get goals by tab", err)
	}
	return goals, nil
}

func (s *Store) GetGoal(id uuid.UUID) (models.Goal, error) {
	var goal models.Goal
	err := s.db.First(&goal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Goal{}, ErrNotFound
	}
	if err != nil {
		return models.Goal{}, storageErr("get goal", err)
	}
	return goal, nil
}

func (s *Store) AddGoal(g models.Goal) error {
	var existing models.Goal
	if err := s.db.First(&existing, "id = ?", g.ID).Error; err == nil {
		return ErrDuplicateKey
	}
	g.Progress = dedupe(g.Progress)
	return storageErr("add goal", s.db.Create(&g).Error)
}

// UpdateGoal replaces the stored record wholesale.
func (s *Store) UpdateGoal(g models.Goal) error {
	if _, err := s.GetGoal(g.ID); err != nil {
		return err
	}
	g.Progress = dedupe(g.Progress)
	return storageErr("update goal", s.db.Save(&g).Error)
}

// DeleteGoal removes a goal. Deleting an absent goal is a no-op.
func (s *Store) DeleteGoal(id uuid.UUID) error {
	return storageErr("delete goal", s.db.Delete(&models.Goal{}, "id = ?", id).Error)
}

// UpdateGoalProgress replaces the entire progress set for a goal. Toggling
// a single day is done by reading the current set, adding or removing the
// date, and writing the whole set back; the per-goal gate serializes
// concurrent toggles so they don't overwrite each other.
func (s *Store) UpdateGoalProgress(id uuid.UUID, dates []string) error {
	scope := "goal:" + id.String()
	s.gates.lock(scope)
	defer s.gates.unlock(scope)

	goal, err := s.GetGoal(id)
	if err != nil {
		return err
	}
	goal.Progress = dedupe(dates)
	return storageErr("update progress", s.db.Save(&goal).Error)
}

// ToggleGoalProgress flips one date in or out of the goal's progress set.
// The read-modify-write runs entirely under the per-goal gate; it returns
// the goal as it was before and after the toggle so callers can diff
// completion state.
func (s *Store) ToggleGoalProgress(id uuid.UUID, date string) (before, after models.Goal, err error) {
	scope := "goal:" + id.String()
	s.gates.lock(scope)
	defer s.gates.unlock(scope)

	goal, err := s.GetGoal(id)
	if err != nil {
		return models.Goal{}, models.Goal{}, err
	}
	before = goal
	next := make([]string, 0, len(goal.Progress)+1)
	if goal.HasProgress(date) {
		for _, d := range goal.Progress {
			if d != date {
				next = append(next, d)
			}
		}
	} else {
		next = append(append(next, goal.Progress...), date)
	}

	after = goal
	after.Progress = dedupe(next)
	if err := s.db.Save(&after).Error; err != nil {
		return models.Goal{}, models.Goal{}, storageErr("toggle progress", err)
	}
	return before, after, nil
}

// UpdateGoalNote upserts the note for one date without disturbing the
// others. An empty text removes the entry.
func (s *Store) UpdateGoalNote(id uuid.UUID, date, text string) error {
	scope := "goal:" + id.String()
	s.gates.lock(scope)
	defer s.gates.unlock(scope)

	goal, err := s.GetGoal(id)
	if err != nil {
		return err
	}
	if goal.Notes == nil {
		goal.Notes = make(map[string]string)
	}
	if text == "" {
		delete(goal.Notes, date)
	} else {
		goal.Notes[date] = text
	}
	return storageErr("update note", s.db.Save(&goal).Error)
}

// ClearAllGoals removes every goal.
func (s *Store) ClearAllGoals() error {
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Goal{}).Error
	return storageErr("clear goals", err)
}

// ReplaceAllGoals atomically swaps the full goal set for another, used by
// CSV import and pull-overwrite sync.
func (s *Store) ReplaceAllGoals(goals []models.Goal) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Goal{}).Error; err != nil {
			return err
		}
		for i := range goals {
			goals[i].Progress = dedupe(goals[i].Progress)
			if err := tx.Create(&goals[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("replace goals", err)
}

// GetAllTabs returns every tab in insertion order.
func (s *Store) GetAllTabs() ([]models.Tab, error) {
	var tabs []models.Tab
	if err := s.db.Find(&tabs).Error; err != nil {
		return nil, storageErr("get all tabs", err)
	}
	return tabs, nil
}

func (s *Store) GetTab(id uuid.UUID) (models.Tab, error) {
	var tab models.Tab
	err := s.db.First(&tab, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tab{}, ErrNotFound
	}
	if err != nil {
		return models.Tab{}, storageErr("get tab", err)
	}
	return tab, nil
}

func (s *Store) AddTab(t models.Tab) error {
	var existing models.Tab
	if err := s.db.First(&existing, "id = ?", t.ID).Error; err == nil {
		return ErrDuplicateKey
	}
	return storageErr("add tab", s.db.Create(&t).Error)
}

func (s *Store) UpdateTab(t models.Tab) error {
	if _, err := s.GetTab(t.ID); err != nil {
		return err
	}
	return storageErr("update tab", s.db.Save(&t).Error)
}

// DeleteTab removes a tab and reassigns its goals to targetTabID in one
// transaction, so no goal is ever left pointing at a missing tab. Deleting
// the last remaining tab fails with ErrLastTab. Deleting an absent tab is
// a no-op.
func (s *Store) DeleteTab(id, targetTabID uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var tab models.Tab
		if err := tx.First(&tab, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Tab{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastTab
		}

		var target models.Tab
		if err := tx.First(&target, "id = ?", targetTabID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.Goal{}).Where("tab_id = ?", id).
			Update("tab_id", targetTabID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tab{}, "id = ?", id).Error
	})
	return storageErr("delete tab", err)
}

// ClearAllTabs removes every tab. Only sync's pull-overwrite uses this,
// immediately before reinserting a full remote set.
func (s *Store) ClearAllTabs() error {
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Tab{}).Error
	return storageErr("clear tabs", err)
}

// FirstTabByOrder returns the tab with the lowest order value.
func (s *Store) FirstTabByOrder() (models.Tab, error) {
	tabs, err := s.GetAllTabs()
	if err != nil {
		return models.Tab{}, err
	}
	if len(tabs) == 0 {
		return models.Tab{}, ErrNotFound
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })
	return tabs[0], nil
}

// dedupe keeps the first occurrence of each date, preserving order.
// Progress is semantically a set; duplicates must not accumulate.
func dedupe(dates []string) []string {
	if dates == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
