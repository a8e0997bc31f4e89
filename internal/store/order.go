package store

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/streaks-api/internal/models"
)

// Move directions accepted by MoveGoal and MoveTab.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// reorderStep is the spacing used when renumbering after a move. Gaps
// leave room for later insertions without another full renumber.
const reorderStep = 10

// NextGoalOrder returns an order key placing a new goal after every goal
// in the tab.
func (s *Store) NextGoalOrder(tabID uuid.UUID) (float64, error) {
	goals, err := s.GetGoalsByTab(tabID)
	if err != nil {
		return 0, err
	}
	highest := -1.0
	for _, g := range goals {
		if g.Order > highest {
			highest = g.Order
		}
	}
	return highest + 1, nil
}

// FrontGoalOrder returns an order key placing a new goal before every goal
// in the tab.
func (s *Store) FrontGoalOrder(tabID uuid.UUID) (float64, error) {
	goals, err := s.GetGoalsByTab(tabID)
	if err != nil {
		return 0, err
	}
	if len(goals) == 0 {
		return 0, nil
	}
	lowest := goals[0].Order
	for _, g := range goals[1:] {
		if g.Order < lowest {
			lowest = g.Order
		}
	}
	return lowest - reorderStep, nil
}

// NextTabOrder returns an order key placing a new tab after every
// existing tab.
func (s *Store) NextTabOrder() (float64, error) {
	tabs, err := s.GetAllTabs()
	if err != nil {
		return 0, err
	}
	highest := -1.0
	for _, t := range tabs {
		if t.Order > highest {
			highest = t.Order
		}
	}
	return highest + 1, nil
}

// MoveGoal moves a goal one position up or down within its tab. The goal
// swaps places with its neighbor in order-sorted position and the whole
// tab's list is renumbered to index*10, so repeated moves never collide
// order keys. Moving past the first or last position is a no-op. The
// per-tab gate keeps two overlapping moves from renumbering over each
// other.
func (s *Store) MoveGoal(id uuid.UUID, direction string) error {
	goal, err := s.GetGoal(id)
	if err != nil {
		return err
	}

	scope := "tab:" + goal.TabID.String()
	s.gates.lock(scope)
	defer s.gates.unlock(scope)

	goals, err := s.GetGoalsByTab(goal.TabID)
	if err != nil {
		return err
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Order < goals[j].Order })

	idx := -1
	for i := range goals {
		if goals[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	target := idx
	switch direction {
	case MoveUp:
		target = idx - 1
	case MoveDown:
		target = idx + 1
	}
	if target < 0 || target >= len(goals) || target == idx {
		return nil
	}

	goals[idx], goals[target] = goals[target], goals[idx]

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range goals {
			goals[i].Order = float64(i * reorderStep)
			if err := tx.Model(&models.Goal{}).Where("id = ?", goals[i].ID).
				Update("sort_order", goals[i].Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("move goal", err)
}

// MoveTab moves a tab one position up or down, renumbering the whole tab
// list the same way MoveGoal does.
func (s *Store) MoveTab(id uuid.UUID, direction string) error {
	s.gates.lock("tabs")
	defer s.gates.unlock("tabs")

	tabs, err := s.GetAllTabs()
	if err != nil {
		return err
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })

	idx := -1
	for i := range tabs {
		if tabs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	target := idx
	switch direction {
	case MoveUp:
		target = idx - 1
	case MoveDown:
		target = idx + 1
	}
	if target < 0 || target >= len(tabs) || target == idx {
		return nil
	}

	tabs[idx], tabs[target] = tabs[target], tabs[idx]

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range tabs {
			tabs[i].Order = float64(i * reorderStep)
			if err := tx.Model(&models.Tab{}).Where("id = ?", tabs[i].ID).
				Update("sort_order", tabs[i].Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("move tab", err)
}
