package database

import (
	"fmt"

	"github.com/magnate-systems/picking-api/internal/config"
	"github.com/magnate-systems/picking-api/internal/logging"
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db *gorm.DB

	// degraded is true when the primary store was unreachable at startup
	// and the service fell back to the local SQLite file.
	degraded bool
)

// Connect opens the primary store selected by cfg.DBDriver. If the primary
// is unreachable the service starts in an explicit degraded mode against a
// local SQLite file; same schema, logged loudly, surfaced in health checks.
func Connect(cfg *config.Config) error {
	log := logging.GetLogger()

	primary, err := openPrimary(cfg)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"driver": cfg.DBDriver,
			"host":   cfg.DBHost,
			"error":  err.Error(),
		}).Warn("Primary store unreachable, starting in degraded mode on SQLite")

		fallback, ferr := gorm.Open(sqlite.Open(cfg.FallbackDBPath), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if ferr != nil {
			return fmt.Errorf("failed to open fallback database: %w", ferr)
		}
		db = fallback
		degraded = true
		return nil
	}

	db = primary
	degraded = false
	log.WithField("driver", cfg.DBDriver).Info("Database connection established")
	return nil
}

func openPrimary(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Migrate creates or updates the schema for every model.
func Migrate() error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Session{},
		&models.Line{},
		&models.Photo{},
		&models.Event{},
		&models.Exception{},
		&models.SystemConfig{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return AddUniqueGuards(db)
}

// GetDB returns the active database handle.
func GetDB() *gorm.DB {
	return db
}

// SetDB sets the database instance (used for testing)
func SetDB(d *gorm.DB) {
	db = d
}

// Degraded reports whether the service is running on the SQLite fallback.
func Degraded() bool {
	return degraded
}
