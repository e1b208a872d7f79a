package services_test

import (
	"context"
	"testing"
	"time"

	"homeward/internal/database"
	"homeward/internal/events"
	"homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type matchingFixture struct {
	db      database.DB
	repo    repositories.Repository
	service *services.MatchingService
	bus     *events.EventBus
}

func newMatchingFixture(t *testing.T) *matchingFixture {
	t.Helper()

	// Named shared-cache database so the pool's connections see one schema
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(
		&models.Applicant{},
		&models.HousingSearch{},
		&models.Property{},
		&models.PropertyMatch{},
		&models.Reminder{},
	)
	require.NoError(t, err)

	db := database.DB{SQL: gormDB}
	repo := repositories.New(db)
	bus := events.New(nil)
	service := services.NewMatchingService(repo, services.NewTransactionService(db), bus)

	return &matchingFixture{db: db, repo: repo, service: service, bus: bus}
}

func (f *matchingFixture) createSearch(
	t *testing.T,
	budget string,
	minBedrooms *int,
) *models.HousingSearch {
	t.Helper()
	ctx := context.Background()

	applicant, err := f.repo.Applicant.Create(ctx, &models.Applicant{
		HusbandLastName: "Friedman",
		Email:           uuid.NewString() + "@example.org",
	})
	require.NoError(t, err)

	search := &models.HousingSearch{
		ApplicantID: applicant.ID,
		Stage:       models.StageSearching,
		IsActive:    true,
		MinBedrooms: minBedrooms,
	}
	if budget != "" {
		b := decimal.RequireFromString(budget)
		search.Budget = &b
	}
	search, err = f.repo.HousingSearch.Create(ctx, search)
	require.NoError(t, err)
	return search
}

func (f *matchingFixture) createProperty(t *testing.T, city, price string, bedrooms int) *models.Property {
	t.Helper()

	property, err := f.repo.Property.Create(context.Background(), &models.Property{
		Address:   "15 Colonial Ave",
		City:      city,
		Price:     decimal.RequireFromString(price),
		Bedrooms:  bedrooms,
		Bathrooms: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	return property
}

func intp(v int) *int { return &v }

// A budget-only search scores 66 against an in-budget Union listing: within
// budget (30) plus the unset-preference baselines (6+5+5) plus primary
// location (20). That clears the re-evaluation bar but not the new-listing bar.
func TestNewListingThresholdIsStricter(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", nil)
	property := f.createProperty(t, "Union", "450000", 4)

	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))

	match, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	assert.Nil(t, match, "score 66 must not auto-match from a new listing")

	require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

	match, err = f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, match, "score 66 clears the re-evaluation threshold")
	assert.Equal(t, 66, match.MatchScore)
	assert.True(t, match.IsAutoMatched)
	assert.Equal(t, models.MatchIdentified, match.Status)
	assert.NotEmpty(t, match.MatchDetails)
}

func TestNewListingMatchesAndRemindsOnce(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	// 30 budget + 20 bedrooms + 5 bathrooms baseline + 20 location + 5 features = 80
	search := f.createSearch(t, "500000", intp(3))
	property := f.createProperty(t, "Union", "450000", 4)

	var announced []events.MatchCreatedPayload
	f.bus.Subscribe(events.EventMatchCreated, func(ctx context.Context, event events.Event) error {
		var payload events.MatchCreatedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		announced = append(announced, payload)
		return nil
	})

	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))
	// A replayed event must not duplicate the match
	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))

	matches, err := f.repo.PropertyMatch.ListBySearch(ctx, search.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 80, matches[0].MatchScore)

	require.Len(t, announced, 1)
	assert.Equal(t, search.ID, announced[0].SearchID)
	assert.Equal(t, property.ID, announced[0].PropertyID)
	assert.Equal(t, 80, announced[0].Score)

	reminders, err := f.repo.Reminder.ListByEntity(ctx, models.EntityPropertyMatch, matches[0].ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Title, "Friedman")
	assert.Contains(t, reminders[0].Notes, "15 Colonial Ave")
	assert.Contains(t, reminders[0].Notes, "80")
	assert.Equal(t, models.PriorityHigh, reminders[0].Priority)
	assert.WithinDuration(t,
		time.Now().UTC().AddDate(0, 0, 1), reminders[0].DueDate, time.Minute,
		"follow-up is due the next day",
	)
}

func TestReminderFailureDoesNotRollBackMatches(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	property := f.createProperty(t, "Union", "450000", 4)

	// Every reminder insert fails from here on
	require.NoError(t, f.db.SQL.Migrator().DropTable(&models.Reminder{}))

	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))

	match, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, match, "match persists even when its reminder cannot be filed")
	assert.Equal(t, 80, match.MatchScore)
}

func TestReEvaluationPrunesOnlyUnengagedAutoMatches(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	property := f.createProperty(t, "Union", "450000", 4)

	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))
	match, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, 80, match.MatchScore)

	// Tighten preferences until the listing scores 30: >20% over budget (0),
	// two bedrooms short (0), baselines 5+5, location 20
	tighten := func() {
		current, err := f.repo.HousingSearch.GetByID(ctx, search.ID)
		require.NoError(t, err)
		budget := decimal.RequireFromString("300000")
		current.Budget = &budget
		current.MinBedrooms = intp(6)
		require.NoError(t, f.repo.HousingSearch.Update(ctx, current))
	}

	t.Run("unengaged auto-match is removed", func(t *testing.T) {
		tighten()
		require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

		gone, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("engaged match survives and is re-scored", func(t *testing.T) {
		// Recreate the pairing and engage the applicant
		recreated, err := f.repo.PropertyMatch.Create(ctx, &models.PropertyMatch{
			HousingSearchID: search.ID,
			PropertyID:      property.ID,
			MatchScore:      80,
			IsAutoMatched:   true,
			Status:          models.MatchShowingRequested,
		})
		require.NoError(t, err)

		require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

		kept, err := f.repo.PropertyMatch.GetByID(ctx, recreated.ID)
		require.NoError(t, err)
		assert.Equal(t, 30, kept.MatchScore)
		assert.Equal(t, models.MatchShowingRequested, kept.Status)
	})
}

// Pruning keys on engagement alone; a staff-created pairing the applicant
// never engaged with goes the same way as a stale auto-match.
func TestReEvaluationPrunesUnengagedManualMatches(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "300000", intp(6))
	property := f.createProperty(t, "Union", "450000", 4)

	staff := uuid.New()
	_, err := f.repo.PropertyMatch.Create(ctx, &models.PropertyMatch{
		HousingSearchID: search.ID,
		PropertyID:      property.ID,
		MatchScore:      30,
		IsAutoMatched:   false,
		CreatedBy:       &staff,
		Status:          models.MatchIdentified,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

	gone, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	t.Run("engaged manual match survives", func(t *testing.T) {
		_, err := f.repo.PropertyMatch.Create(ctx, &models.PropertyMatch{
			HousingSearchID: search.ID,
			PropertyID:      property.ID,
			MatchScore:      30,
			IsAutoMatched:   false,
			CreatedBy:       &staff,
			Status:          models.MatchShowingRequested,
		})
		require.NoError(t, err)

		require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

		kept, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
		require.NoError(t, err)
		require.NotNil(t, kept)
		assert.Equal(t, 30, kept.MatchScore)
	})
}

func TestStageChangeTriggersEvaluationOnlyIntoSearching(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	property := f.createProperty(t, "Union", "450000", 4)

	// Leaving Searching does nothing
	err := f.service.HandleStageChanged(ctx, events.StageChangedPayload{
		SearchID: search.ID,
		OldStage: models.StageSearching,
		NewStage: models.StagePaused,
	})
	require.NoError(t, err)
	match, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	assert.Nil(t, match)

	// Entering Searching evaluates the inventory at the lower threshold
	err = f.service.HandleStageChanged(ctx, events.StageChangedPayload{
		SearchID: search.ID,
		OldStage: models.StageUnderContract,
		NewStage: models.StageSearching,
	})
	require.NoError(t, err)
	match, err = f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 80, match.MatchScore)
}

// Entering Searching discovers new pairings but never re-scores or prunes
// the matches already on file; only a preferences change does that.
func TestStageChangeLeavesExistingMatchesAlone(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	stale := f.createProperty(t, "Union", "450000", 4)

	require.NoError(t, f.service.HandlePropertyCreated(ctx, stale.ID))
	existing, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, stale.ID)
	require.NoError(t, err)
	require.NotNil(t, existing)
	require.Equal(t, 80, existing.MatchScore)

	// Tighten preferences so the stale pairing would now score 30; no
	// preferences event is published
	current, err := f.repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)
	budget := decimal.RequireFromString("300000")
	current.Budget = &budget
	current.MinBedrooms = intp(6)
	require.NoError(t, f.repo.HousingSearch.Update(ctx, current))

	// 30 budget + 20 bedrooms + 5 baseline + 20 location + 5 baseline = 80
	fresh := f.createProperty(t, "Roselle Park", "280000", 6)

	err = f.service.HandleStageChanged(ctx, events.StageChangedPayload{
		SearchID: search.ID,
		OldStage: models.StageUnderContract,
		NewStage: models.StageSearching,
	})
	require.NoError(t, err)

	kept, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, stale.ID)
	require.NoError(t, err)
	require.NotNil(t, kept, "stage change must not prune existing matches")
	assert.Equal(t, 80, kept.MatchScore, "stage change must not re-score existing matches")

	discovered, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, discovered)
	assert.Equal(t, 80, discovered.MatchScore)
}

// The factor mix can shift while the total holds steady; the stored breakdown
// has to follow the current preferences either way.
func TestReEvaluationRefreshesDetailsWhenScoreUnchanged(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	property, err := f.repo.Property.Create(ctx, &models.Property{
		Address:   "8 Stuyvesant Ave",
		City:      "Union",
		Price:     decimal.RequireFromString("450000"),
		Bedrooms:  4,
		Bathrooms: decimal.NewFromInt(2),
		Features:  datatypes.NewJSONSlice([]string{"garage"}),
	})
	require.NoError(t, err)

	// 30 budget + 20 bedrooms + 5 baseline + 20 location + 5 baseline = 80
	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))
	before, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, before)
	require.Equal(t, 80, before.MatchScore)

	// 30 budget + 10 one-short + 5 baseline + 20 location + 15 features = 80
	current, err := f.repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)
	current.MinBedrooms = intp(5)
	current.RequiredFeatures = datatypes.NewJSONSlice([]string{"garage"})
	require.NoError(t, f.repo.HousingSearch.Update(ctx, current))

	require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))

	after, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, 80, after.MatchScore)
	assert.NotEqual(t, string(before.MatchDetails), string(after.MatchDetails))
	assert.Contains(t, string(after.MatchDetails), "required features present")
}

func TestInactivePropertyAndSearchAreSkipped(t *testing.T) {
	f := newMatchingFixture(t)
	ctx := context.Background()

	search := f.createSearch(t, "500000", intp(3))
	property := f.createProperty(t, "Union", "450000", 4)

	property.Status = models.PropertySold
	require.NoError(t, f.repo.Property.Update(ctx, property))

	require.NoError(t, f.service.HandlePropertyCreated(ctx, property.ID))
	match, err := f.repo.PropertyMatch.GetByPair(ctx, search.ID, property.ID)
	require.NoError(t, err)
	assert.Nil(t, match)

	// A paused search is not re-evaluated either
	loaded, err := f.repo.HousingSearch.GetByID(ctx, search.ID)
	require.NoError(t, err)
	loaded.Stage = models.StagePaused
	require.NoError(t, f.repo.HousingSearch.Update(ctx, loaded))

	require.NoError(t, f.service.HandlePreferencesUpdated(ctx, search.ID))
	matches, err := f.repo.PropertyMatch.ListBySearch(ctx, search.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
