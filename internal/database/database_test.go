package database

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/models"
)

func openTestDB(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			URL:          filepath.Join(t.TempDir(), "seed.db") + "?_pragma=foreign_keys(1)",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Server: config.ServerConfig{GinMode: "release"},
	}
}

func TestSeedMenus_Idempotent(t *testing.T) {
	db, err := Connect(openTestDB(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	created, err := SeedMenus(db)
	require.NoError(t, err)
	assert.Equal(t, 13, created)

	again, err := SeedMenus(db)
	require.NoError(t, err)
	assert.Zero(t, again)

	var items []models.MenuItem
	require.NoError(t, db.Order("id").Find(&items).Error)
	require.Len(t, items, 13)

	roots := 0
	for _, item := range items {
		if item.ParentID == nil {
			roots++
		}
		assert.True(t, item.IsActive)
		assert.NotEmpty(t, item.Roles)
	}
	assert.Equal(t, 6, roots)
}

func TestConnect_UnknownDriver(t *testing.T) {
	cfg := openTestDB(t)
	cfg.Database.Driver = "oracle"

	_, err := Connect(cfg)
	assert.Error(t, err)
}


func TestMigrate_BackfillsNameKeys(t *testing.T) {
	db, err := Connect(openTestDB(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	doctor := &models.Doctor{Name: "JOSÉ ÁVILA", Specialty: "Surgery", Active: true}
	require.NoError(t, db.Create(doctor).Error)
	assert.Equal(t, "josé ávila", doctor.NameKey)
	require.NoError(t, db.Model(doctor).UpdateColumn("name_key", "").Error)

	require.NoError(t, Migrate(db))

	var stored models.Doctor
	require.NoError(t, db.First(&stored, doctor.ID).Error)
	assert.Equal(t, "josé ávila", stored.NameKey)
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	db, err := Connect(openTestDB(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var buf bytes.Buffer
	quiet := db.Session(&gorm.Session{Logger: newGormLogger(log.New(&buf, "", 0), "release")})

	err = quiet.First(&models.Doctor{}, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	var n int
	require.Error(t, quiet.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error)
	assert.Contains(t, buf.String(), "no_such_table")
}
