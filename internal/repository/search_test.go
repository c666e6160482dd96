package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medcontrol-backend/internal/models"
)

func newSearchDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "search.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Doctor{}, &models.ProcedureType{}))
	return db
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%cardio%", containsPattern("  Cardio "))
	assert.Equal(t, "%50!%!_a!!%", containsPattern("50%_a!"))
}

func TestListDoctors_SearchTreatsWildcardsLiterally(t *testing.T) {
	repo := NewDoctorRepo(newSearchDB(t))
	ctx := context.Background()
	for _, name := range []string{"Dr. 100% Care", "Dr. Ana_Maria", "Dr. AnaXMaria", "Dr. Smith"} {
		require.NoError(t, repo.CreateDoctor(ctx, &models.Doctor{Name: name, Specialty: "General", Active: true}))
	}

	names := func(search string) []string {
		t.Helper()
		doctors, err := repo.ListDoctors(ctx, ListFilter{Search: search, Limit: 10})
		require.NoError(t, err)
		out := make([]string, 0, len(doctors))
		for _, d := range doctors {
			out = append(out, d.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Dr. 100% Care"}, names("%"))
	assert.Equal(t, []string{"Dr. Ana_Maria"}, names("ana_"))
	assert.Len(t, names("dr."), 4)
}

func TestProcedureTypeRepository_MatchesAccentedNames(t *testing.T) {
	repo := NewProcedureTypeRepo(newSearchDB(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateProcedureType(ctx, &models.ProcedureType{Name: "ECOGRAFÍA", Active: true}))
	require.NoError(t, repo.CreateProcedureType(ctx, &models.ProcedureType{Name: "Biopsy", Active: true}))

	found, err := repo.FindProcedureTypeByName(ctx, " ecografía ")
	require.NoError(t, err)
	assert.Equal(t, "ECOGRAFÍA", found.Name)

	taken, err := repo.NameTaken(ctx, "Ecografía", 0)
	require.NoError(t, err)
	assert.True(t, taken)
}
