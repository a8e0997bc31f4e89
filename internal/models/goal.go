package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Frequency is an alternate completion target: Count occurrences per Period
// instead of one per day. Goals without a frequency require every day in
// their range to be marked.
type Frequency struct {
	Count  int    `json:"count"`
	Period string `json:"period"` // day, week, month
}

const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

func (f *Frequency) Valid() bool {
	if f == nil {
		return true
	}
	if f.Count < 1 {
		return false
	}
	return f.Period == PeriodDay || f.Period == PeriodWeek || f.Period == PeriodMonth
}

type Goal struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string            `json:"title" gorm:"not null"`
	StartDate time.Time         `json:"startDate" gorm:"not null"`
	EndDate   time.Time         `json:"endDate" gorm:"not null"`
	Color     string            `json:"color"`
	Progress  []string          `json:"progress" gorm:"serializer:json"` // YYYY-MM-DD, kept as a set
	Order     float64           `json:"order" gorm:"column:sort_order"`
	Notes     map[string]string `json:"notes" gorm:"serializer:json"` // YYYY-MM-DD -> note text
	TabID     uuid.UUID         `json:"tabId" gorm:"type:uuid;index"`
	Frequency *Frequency        `json:"frequency,omitempty" gorm:"serializer:json"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// HasProgress reports whether the given YYYY-MM-DD date is marked done.
func (g *Goal) HasProgress(date string) bool {
	for _, d := range g.Progress {
		if d == date {
			return true
		}
	}
	return false
}

// Goal DTOs
type CreateGoalRequest struct {
	Title     string     `json:"title" validate:"required"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Color     string     `json:"color"`
	TabID     uuid.UUID  `json:"tabId"`
	Frequency *Frequency `json:"frequency"`
	AtFront   bool       `json:"atFront"` // insert before existing goals instead of appending
}

type UpdateGoalRequest struct {
	Title     *string    `json:"title"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Color     *string    `json:"color"`
	TabID     *uuid.UUID `json:"tabId"`
	Frequency *Frequency `json:"frequency"`
}

type UpdateProgressRequest struct {
	Dates []string `json:"dates"`
}

type ToggleProgressRequest struct {
	Date string `json:"date" validate:"required"`
}

type UpdateNoteRequest struct {
	Text string `json:"text"`
}

type MoveRequest struct {
	Direction string `json:"direction" validate:"required"` // up or down
}
