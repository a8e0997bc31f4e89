package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/streaks-api/internal/models"
)

// schemaVersion is the current local schema generation. The record shape
// grew over time: v2 added order, v3 notes, v4 tabs, v5 frequency. Old
// databases are upgraded step by step; each step is recorded so reruns
// are no-ops.
const schemaVersion = 5

// DefaultTabName is the name given to the tab created when migrating a
// database from before tabs existed, and when importing goals into an
// empty store.
const DefaultTabName = "Tab1"

type schemaInfo struct {
	ID      int `gorm:"primaryKey"`
	Version int
}

func (schemaInfo) TableName() string { return "schema_info" }

// migrate brings the database up to schemaVersion. It runs inside Open,
// before any read or write is served, and is safe to re-run.
func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&models.Goal{}, &models.Tab{}, &schemaInfo{}); err != nil {
		return storageErr("migrate", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var info schemaInfo
		if err := tx.FirstOrCreate(&info, schemaInfo{ID: 1}).Error; err != nil {
			return err
		}

		if info.Version < 2 {
			if err := backfillOrder(tx); err != nil {
				return err
			}
		}
		if info.Version < 3 {
			if err := backfillNotes(tx); err != nil {
				return err
			}
		}
		if info.Version < 4 {
			if err := backfillTabs(tx); err != nil {
				return err
			}
		}
		// v5 added the optional frequency field; existing goals keep a
		// nil frequency, so there is nothing to backfill.

		if info.Version != schemaVersion {
			info.Version = schemaVersion
			return tx.Save(&info).Error
		}
		return nil
	})
	return storageErr("migrate", err)
}

// backfillOrder assigns each pre-v2 goal its scan index as the order key.
func backfillOrder(tx *gorm.DB) error {
	var goals []models.Goal
	if err := tx.Find(&goals).Error; err != nil {
		return err
	}
	for i := range goals {
		goals[i].Order = float64(i)
		if err := tx.Save(&goals[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// backfillNotes gives pre-v3 goals an empty notes mapping.
func backfillNotes(tx *gorm.DB) error {
	var goals []models.Goal
	if err := tx.Find(&goals).Error; err != nil {
		return err
	}
	for i := range goals {
		if goals[i].Notes == nil {
			goals[i].Notes = map[string]string{}
			if err := tx.Save(&goals[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// backfillTabs creates the default tab and adopts any goal that predates
// tabs. A goal must never exist without a tab.
func backfillTabs(tx *gorm.DB) error {
	var goalCount int64
	if err := tx.Model(&models.Goal{}).Count(&goalCount).Error; err != nil {
		return err
	}
	var tabCount int64
	if err := tx.Model(&models.Tab{}).Count(&tabCount).Error; err != nil {
		return err
	}
	if goalCount == 0 && tabCount > 0 {
		return nil
	}

	var defaultTab models.Tab
	if tabCount == 0 {
		if goalCount == 0 {
			return nil
		}
		defaultTab = models.Tab{ID: uuid.New(), Name: DefaultTabName, Order: 0}
		if err := tx.Create(&defaultTab).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Order("sort_order").First(&defaultTab).Error; err != nil {
			return err
		}
	}

	return tx.Model(&models.Goal{}).Where("tab_id = ?", uuid.Nil).
		Update("tab_id", defaultTab.ID).Error
}
