package database

import (
	"log"
	"os"
	"time"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/go-faster/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect initializes and returns a GORM database connection
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), cfg.Server.GinMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}

	return db, nil
}

// newGormLogger logs SQL in debug mode and only errors in release mode.
// Record-not-found is routine (resolver lookups, failed logins) and never logged.
func newGormLogger(w logger.Writer, ginMode string) logger.Interface {
	level := logger.Info
	if ginMode == "release" {
		level = logger.Error
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  ginMode != "release",
	})
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.URL), nil
	case "postgres":
		return postgres.Open(cfg.URL), nil
	case "sqlite":
		return sqlite.Open(cfg.URL), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every application table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return backfillNameKeys(db)
}

// backfillNameKeys fills name_key on rows written before the column existed.
// The key is computed in Go because SQL LOWER does not fold non-ASCII
// letters on every driver.
func backfillNameKeys(db *gorm.DB) error {
	if err := backfill[models.Doctor](db, func(d *models.Doctor) (uint, string) { return d.ID, d.Name }); err != nil {
		return errors.Wrap(err, "backfill doctor name keys")
	}
	if err := backfill[models.Patient](db, func(p *models.Patient) (uint, string) { return p.ID, p.Name }); err != nil {
		return errors.Wrap(err, "backfill patient name keys")
	}
	if err := backfill[models.ProcedureType](db, func(pt *models.ProcedureType) (uint, string) { return pt.ID, pt.Name }); err != nil {
		return errors.Wrap(err, "backfill procedure type name keys")
	}
	return nil
}

func backfill[T any](db *gorm.DB, key func(*T) (uint, string)) error {
	var rows []T
	if err := db.Where("name_key IS NULL OR name_key = ''").Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		id, name := key(&rows[i])
		err := db.Model(new(T)).Where("id = ?", id).UpdateColumn("name_key", models.NameKey(name)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
