package repositories_test

import (
	"context"
	"testing"
	"time"

	"homeward/internal/database"
	"homeward/internal/models"
	"homeward/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()

	// Named shared-cache database so the pool's connections see one schema
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(
		&models.User{},
		&models.Applicant{},
		&models.HousingSearch{},
		&models.Property{},
		&models.PropertyMatch{},
		&models.Reminder{},
		&models.Showing{},
	)
	require.NoError(t, err)

	return database.DB{SQL: gormDB}
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createApplicant(t *testing.T, repo repositories.Repository, email string) *models.Applicant {
	t.Helper()

	applicant, err := repo.Applicant.Create(context.Background(), &models.Applicant{
		HusbandLastName: "Stern",
		Email:           email,
	})
	require.NoError(t, err)
	return applicant
}

func TestHousingSearchVersionConflict(t *testing.T) {
	repo := repositories.New(newTestDB(t))
	ctx := context.Background()

	applicant := createApplicant(t, repo, "stern@example.org")
	search, err := repo.HousingSearch.Create(ctx, &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StageSearching,
		IsActive:    true,
	})
	require.NoError(t, err)

	// Two actors load the same row
	first, err := repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)
	second, err := repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)

	actor := uuid.New()
	now := time.Now().UTC()

	_, err = first.ApplyTransition(models.StagePaused, models.TransitionPayload{Reason: "away"}, actor, now)
	require.NoError(t, err)
	require.NoError(t, repo.HousingSearch.UpdateWithVersion(ctx, first))
	assert.Equal(t, 2, first.Version)

	// The stale copy loses the race
	_, err = second.ApplyTransition(models.StagePaused, models.TransitionPayload{}, actor, now)
	require.NoError(t, err)
	err = repo.HousingSearch.UpdateWithVersion(ctx, second)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	// Version was not bumped on the failed write
	assert.Equal(t, 1, second.Version)

	reloaded, err := repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StagePaused, reloaded.Stage)
	assert.Equal(t, "away", reloaded.PauseReason)
	assert.Equal(t, 2, reloaded.Version)
}

func TestListActiveSearchingFiltersStageAndActivity(t *testing.T) {
	repo := repositories.New(newTestDB(t))
	ctx := context.Background()

	applicant := createApplicant(t, repo, "katz@example.org")

	searching, err := repo.HousingSearch.Create(ctx, &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StageSearching,
		IsActive:    true,
	})
	require.NoError(t, err)

	_, err = repo.HousingSearch.Create(ctx, &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StagePaused,
		IsActive:    true,
	})
	require.NoError(t, err)

	_, err = repo.HousingSearch.Create(ctx, &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StageSearching,
		IsActive:    false,
	})
	require.NoError(t, err)

	active, err := repo.HousingSearch.ListActiveSearching(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, searching.ID, active[0].ID)
}

func TestPropertyMatchPairUniqueness(t *testing.T) {
	repo := repositories.New(newTestDB(t))
	ctx := context.Background()

	applicant := createApplicant(t, repo, "roth@example.org")
	search, err := repo.HousingSearch.Create(ctx, &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StageSearching,
		IsActive:    true,
	})
	require.NoError(t, err)

	property, err := repo.Property.Create(ctx, &models.Property{
		Address: "12 Winthrop Rd",
		City:    "Union",
		Price:   mustDecimal("450000"),
	})
	require.NoError(t, err)

	_, err = repo.PropertyMatch.Create(ctx, &models.PropertyMatch{
		HousingSearchID: search.ID,
		PropertyID:      property.ID,
		MatchScore:      82,
	})
	require.NoError(t, err)

	// The pair index rejects a second row for the same search and property
	_, err = repo.PropertyMatch.Create(ctx, &models.PropertyMatch{
		HousingSearchID: search.ID,
		PropertyID:      property.ID,
		MatchScore:      90,
	})
	assert.Error(t, err)

	match, err := repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 82, match.MatchScore)

	missing, err := repo.PropertyMatch.GetByPair(ctx, search.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
