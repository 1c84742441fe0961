package database

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLitePrefix selects the embedded SQLite driver, e.g.
// "sqlite:file:nexora.db" or "sqlite::memory:".
const SQLitePrefix = "sqlite:"

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// IsSQLite reports whether the DSN selects the SQLite driver.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, SQLitePrefix)
}

// NewGormDBFromDSN opens Postgres by default and SQLite for DSNs that
// carry SQLitePrefix.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	dialector := postgres.Open(dsn)
	maxOpen := 100
	if IsSQLite(dsn) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, SQLitePrefix))
		// One writer at a time; in-memory databases also vanish when
		// their last connection closes.
		maxOpen = 1
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, maxOpen); err != nil {
		return nil, err
	}

	return db, nil
}
