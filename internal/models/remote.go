package models

import (
	"time"

	"github.com/google/uuid"
)

// RemoteGoal is the wire shape of a Goal in the remote database. Every row
// is owned by a user; all remote reads and writes filter on UserID.
type RemoteGoal struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID         `json:"userId" gorm:"type:uuid;index;not null"`
	Title     string            `json:"title" gorm:"not null"`
	StartDate time.Time         `json:"startDate" gorm:"not null"`
	EndDate   time.Time         `json:"endDate" gorm:"not null"`
	Color     string            `json:"color"`
	Progress  []string          `json:"progress" gorm:"serializer:json"`
	Order     float64           `json:"order" gorm:"column:sort_order"`
	Notes     map[string]string `json:"notes" gorm:"serializer:json"`
	TabID     uuid.UUID         `json:"tabId" gorm:"type:uuid"`
	Frequency *Frequency        `json:"frequency,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (RemoteGoal) TableName() string { return "goals" }

// RemoteTab is the wire shape of a Tab in the remote database.
type RemoteTab struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Order     float64   `json:"order" gorm:"column:sort_order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (RemoteTab) TableName() string { return "tabs" }

// GoalToRemote stamps a local goal with its owner for the remote store.
func GoalToRemote(g Goal, userID uuid.UUID) RemoteGoal {
	return RemoteGoal{
		ID:        g.ID,
		UserID:    userID,
		Title:     g.Title,
		StartDate: g.StartDate,
		EndDate:   g.EndDate,
		Color:     g.Color,
		Progress:  g.Progress,
		Order:     g.Order,
		Notes:     g.Notes,
		TabID:     g.TabID,
		Frequency: g.Frequency,
	}
}

// RemoteToGoal strips the owner and timestamps off a remote goal row.
func RemoteToGoal(r RemoteGoal) Goal {
	return Goal{
		ID:        r.ID,
		Title:     r.Title,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Color:     r.Color,
		Progress:  r.Progress,
		Order:     r.Order,
		Notes:     r.Notes,
		TabID:     r.TabID,
		Frequency: r.Frequency,
	}
}

func TabToRemote(t Tab, userID uuid.UUID) RemoteTab {
	return RemoteTab{
		ID:     t.ID,
		UserID: userID,
		Name:   t.Name,
		Order:  t.Order,
	}
}

func RemoteToTab(r RemoteTab) Tab {
	return Tab{
		ID:    r.ID,
		Name:  r.Name,
		Order: r.Order,
	}
}
