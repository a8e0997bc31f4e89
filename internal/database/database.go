package database

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to a database by URL. URLs starting with postgres use the
// PostgreSQL driver, anything else is treated as a SQLite file path. The
// connection is returned rather than stored globally; callers own its
// lifecycle.
func Open(url string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if strings.HasPrefix(url, "postgres") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}
