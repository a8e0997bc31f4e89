package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tab struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name  string    `json:"name" gorm:"not null"`
	Order float64   `json:"order" gorm:"column:sort_order"`
}

func (t *Tab) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Tab DTOs
type CreateTabRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateTabRequest struct {
	Name *string `json:"name"`
}

type DeleteTabRequest struct {
	// Tab to receive the deleted tab's goals. Defaults to the first
	// remaining tab by order.
	TargetTabID *uuid.UUID `json:"targetTabId"`
}
