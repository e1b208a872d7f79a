package services

import (
	"context"
	"fmt"
	"time"

	"homeward/internal/events"
	"homeward/internal/matching"
	"homeward/internal/models"
	"homeward/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const (
	// NewListingMatchThreshold gates auto-matches fanned out from a single
	// new listing; the higher bar keeps a hot listing from flooding every
	// open search with mediocre pairings.
	NewListingMatchThreshold = 70

	// AutoMatchThreshold gates auto-matches created while evaluating one
	// search against the whole inventory.
	AutoMatchThreshold = 50

	// ReminderScoreThreshold is the score at or above which a follow-up
	// reminder is filed alongside the match.
	ReminderScoreThreshold = 70
)

// MatchingService drives the event-driven match pipeline: new listings fan
// out to open searches, stage changes into Searching discover new pairings,
// and preference changes run a full re-evaluation.
type MatchingService struct {
	applicantRepo repositories.ApplicantRepository
	searchRepo    repositories.HousingSearchRepository
	propertyRepo  repositories.PropertyRepository
	matchRepo     repositories.PropertyMatchRepository
	reminderRepo  repositories.ReminderRepository
	transaction   *TransactionService
	eventBus      *events.EventBus
	log           logger.Logger
}

// createdMatch pairs a persisted match with the records its follow-up
// reminder and announcement need after the batch commits.
type createdMatch struct {
	match    *models.PropertyMatch
	search   *models.HousingSearch
	property *models.Property
}

func NewMatchingService(
	repo repositories.Repository,
	transaction *TransactionService,
	eventBus *events.EventBus,
) *MatchingService {
	return &MatchingService{
		applicantRepo: repo.Applicant,
		searchRepo:    repo.HousingSearch,
		propertyRepo:  repo.Property,
		matchRepo:     repo.PropertyMatch,
		reminderRepo:  repo.Reminder,
		transaction:   transaction,
		eventBus:      eventBus,
		log:           logger.New("MatchingService"),
	}
}

// RegisterEventHandlers subscribes the pipeline to the domain events that
// trigger it.
func (s *MatchingService) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventPropertyCreated, func(ctx context.Context, event events.Event) error {
		var payload events.PropertyCreatedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		return s.HandlePropertyCreated(ctx, payload.PropertyID)
	})

	bus.Subscribe(events.EventStageChanged, func(ctx context.Context, event events.Event) error {
		var payload events.StageChangedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		return s.HandleStageChanged(ctx, payload)
	})

	bus.Subscribe(events.EventPreferencesUpdated, func(ctx context.Context, event events.Event) error {
		var payload events.PreferencesUpdatedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		return s.HandlePreferencesUpdated(ctx, payload.SearchID)
	})
}

// HandlePropertyCreated scores a new active listing against every search in
// the Searching stage and auto-matches the strong fits. The matches persist
// in one transaction; reminders and announcements follow after commit.
func (s *MatchingService) HandlePropertyCreated(ctx context.Context, propertyID uuid.UUID) error {
	log := s.log.Function("HandlePropertyCreated")

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return log.Err("failed to load property", err, "propertyID", propertyID)
	}
	if property.Status != models.PropertyActive {
		log.Info("skipping inactive property", "propertyID", propertyID, "status", property.Status)
		return nil
	}

	searches, err := s.searchRepo.ListActiveSearching(ctx)
	if err != nil {
		return log.Err("failed to list searching records", err)
	}

	var created []createdMatch
	err = s.transaction.Execute(ctx, func(txCtx context.Context) error {
		for i := range searches {
			match, err := s.evaluatePair(txCtx, &searches[i], property, NewListingMatchThreshold)
			if err != nil {
				return err
			}
			if match != nil {
				created = append(created, createdMatch{
					match:    match,
					search:   &searches[i],
					property: property,
				})
			}
		}
		return nil
	})
	if err != nil {
		return log.Err("failed to persist matches for new listing", err, "propertyID", propertyID)
	}

	log.Info("evaluated new listing",
		"propertyID", propertyID,
		"searches", len(searches),
		"matches", len(created),
	)

	s.fileMatchReminders(ctx, created)
	s.announceMatches(ctx, created)
	return nil
}

// HandleStageChanged discovers new pairings for a search entering the
// Searching stage, including re-entry after a contract falls through.
// Existing matches are left alone; only a preferences change re-scores them.
func (s *MatchingService) HandleStageChanged(ctx context.Context, payload events.StageChangedPayload) error {
	if payload.NewStage != models.StageSearching {
		return nil
	}
	return s.DiscoverMatches(ctx, payload.SearchID)
}

// HandlePreferencesUpdated runs the full two-phase re-evaluation after match
// criteria change on a search.
func (s *MatchingService) HandlePreferencesUpdated(ctx context.Context, searchID uuid.UUID) error {
	return s.EvaluateSearch(ctx, searchID)
}

// DiscoverMatches scans the active inventory for properties not yet matched
// to the search and auto-matches the ones that clear the threshold.
func (s *MatchingService) DiscoverMatches(ctx context.Context, searchID uuid.UUID) error {
	log := s.log.Function("DiscoverMatches")

	search, properties, existing, err := s.loadEvaluationInputs(ctx, searchID)
	if err != nil || search == nil {
		return err
	}

	matchedProperties := make(map[uuid.UUID]struct{}, len(existing))
	for i := range existing {
		matchedProperties[existing[i].PropertyID] = struct{}{}
	}

	var created []createdMatch
	err = s.transaction.Execute(ctx, func(txCtx context.Context) error {
		created, err = s.discoverPairs(txCtx, search, properties, matchedProperties)
		return err
	})
	if err != nil {
		return log.Err("failed to discover matches", err, "searchID", searchID)
	}

	log.Info("discovered matches for search",
		"searchID", searchID,
		"newMatches", len(created),
	)

	s.fileMatchReminders(ctx, created)
	s.announceMatches(ctx, created)
	return nil
}

// EvaluateSearch re-scores a search's existing matches against its current
// preferences, prunes below-threshold matches the applicant never engaged
// with, and then scans the active inventory for new pairings. The whole
// re-evaluation commits atomically.
func (s *MatchingService) EvaluateSearch(ctx context.Context, searchID uuid.UUID) error {
	log := s.log.Function("EvaluateSearch")

	search, properties, existing, err := s.loadEvaluationInputs(ctx, searchID)
	if err != nil || search == nil {
		return err
	}

	prefs := search.MatchPreferences()
	matchedProperties := make(map[uuid.UUID]struct{}, len(existing))

	var created []createdMatch
	err = s.transaction.Execute(ctx, func(txCtx context.Context) error {
		// Phase one: re-score what is already matched
		for i := range existing {
			match := &existing[i]
			matchedProperties[match.PropertyID] = struct{}{}

			property := match.Property
			if property == nil {
				loaded, err := s.propertyRepo.GetByID(txCtx, match.PropertyID)
				if err != nil {
					return err
				}
				property = loaded
			}

			score, breakdown := matching.Score(property.ToListing(), prefs)
			if score < AutoMatchThreshold && !match.Engaged() {
				if err := s.matchRepo.Delete(txCtx, match.ID); err != nil {
					return err
				}
				continue
			}

			details, err := breakdown.Marshal()
			if err != nil {
				return err
			}
			// The factor mix can shift while the total stays put, so the
			// breakdown is compared too
			if score != match.MatchScore || string(details) != string(match.MatchDetails) {
				match.MatchScore = score
				match.MatchDetails = details
				if err := s.matchRepo.Update(txCtx, match); err != nil {
					return err
				}
			}
		}

		// Phase two: scan the inventory for pairings that did not exist yet
		created, err = s.discoverPairs(txCtx, search, properties, matchedProperties)
		return err
	})
	if err != nil {
		return log.Err("failed to re-evaluate search", err, "searchID", searchID)
	}

	log.Info("re-evaluated search",
		"searchID", searchID,
		"existingMatches", len(existing),
		"newMatches", len(created),
	)

	s.fileMatchReminders(ctx, created)
	s.announceMatches(ctx, created)
	return nil
}

// loadEvaluationInputs gathers the search, the active inventory, and the
// search's existing matches. A nil search with a nil error means the search
// is not eligible for matching.
func (s *MatchingService) loadEvaluationInputs(
	ctx context.Context,
	searchID uuid.UUID,
) (*models.HousingSearch, []models.Property, []models.PropertyMatch, error) {
	log := s.log.Function("loadEvaluationInputs")

	search, err := s.searchRepo.GetByID(ctx, searchID)
	if err != nil {
		return nil, nil, nil, log.Err("failed to load housing search", err, "searchID", searchID)
	}
	if !search.IsActive || search.Stage != models.StageSearching {
		log.Info("search not eligible for matching",
			"searchID", searchID, "stage", search.Stage, "isActive", search.IsActive)
		return nil, nil, nil, nil
	}

	properties, err := s.propertyRepo.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, log.Err("failed to list active properties", err)
	}

	existing, err := s.matchRepo.ListBySearch(ctx, searchID)
	if err != nil {
		return nil, nil, nil, log.Err("failed to list existing matches", err, "searchID", searchID)
	}

	return search, properties, existing, nil
}

// discoverPairs evaluates every property not already matched to the search
func (s *MatchingService) discoverPairs(
	ctx context.Context,
	search *models.HousingSearch,
	properties []models.Property,
	matched map[uuid.UUID]struct{},
) ([]createdMatch, error) {
	var created []createdMatch
	for i := range properties {
		property := &properties[i]
		if _, seen := matched[property.ID]; seen {
			continue
		}
		match, err := s.evaluatePair(ctx, search, property, AutoMatchThreshold)
		if err != nil {
			return nil, err
		}
		if match != nil {
			created = append(created, createdMatch{
				match:    match,
				search:   search,
				property: property,
			})
		}
	}
	return created, nil
}

// evaluatePair scores one search/property pairing and persists an auto-match
// when the score clears the threshold and no match exists for the pair yet.
func (s *MatchingService) evaluatePair(
	ctx context.Context,
	search *models.HousingSearch,
	property *models.Property,
	threshold int,
) (*models.PropertyMatch, error) {
	log := s.log.Function("evaluatePair")

	score, breakdown := matching.Score(property.ToListing(), search.MatchPreferences())
	if score < threshold {
		return nil, nil
	}

	existing, err := s.matchRepo.GetByPair(ctx, search.ID, property.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	details, err := breakdown.Marshal()
	if err != nil {
		return nil, err
	}

	match := &models.PropertyMatch{
		HousingSearchID: search.ID,
		PropertyID:      property.ID,
		MatchScore:      score,
		MatchDetails:    details,
		Status:          models.MatchIdentified,
		IsAutoMatched:   true,
	}
	if _, err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	log.Debug("auto-matched listing",
		"searchID", search.ID, "propertyID", property.ID, "score", score)
	return match, nil
}

// fileMatchReminders creates next-day follow-up reminders for strong matches
// once the batch has committed. Reminder failures are logged and never touch
// the persisted matches.
func (s *MatchingService) fileMatchReminders(ctx context.Context, created []createdMatch) {
	log := s.log.Function("fileMatchReminders")

	for _, c := range created {
		if c.match.MatchScore < ReminderScoreThreshold {
			continue
		}
		if err := s.createMatchReminder(ctx, c.search, c.property, c.match); err != nil {
			log.Er("failed to create match reminder", err,
				"matchID", c.match.ID, "searchID", c.search.ID)
		}
	}
}

func (s *MatchingService) createMatchReminder(
	ctx context.Context,
	search *models.HousingSearch,
	property *models.Property,
	match *models.PropertyMatch,
) error {
	surname := "family"
	if search.Applicant != nil {
		if name := search.Applicant.FamilySurname(); name != "" {
			surname = name
		}
	} else if applicant, err := s.applicantRepo.GetByID(ctx, search.ApplicantID); err == nil {
		if name := applicant.FamilySurname(); name != "" {
			surname = name
		}
	}

	reminder := &models.Reminder{
		Title:      fmt.Sprintf("Follow up with %s about %s", surname, property.Address),
		DueDate:    time.Now().UTC().AddDate(0, 0, 1),
		EntityType: models.EntityPropertyMatch,
		EntityID:   match.ID,
		Priority:   models.PriorityHigh,
		Notes: fmt.Sprintf(
			"%s matched at score %d for the %s family",
			property.Address, match.MatchScore, surname,
		),
	}
	_, err := s.reminderRepo.Create(ctx, reminder)
	return err
}

// announceMatches publishes creation events after the transaction committed
func (s *MatchingService) announceMatches(ctx context.Context, created []createdMatch) {
	log := s.log.Function("announceMatches")

	for _, c := range created {
		err := s.eventBus.Publish(ctx, events.EventMatchCreated, events.MatchCreatedPayload{
			SearchID:   c.match.HousingSearchID,
			PropertyID: c.match.PropertyID,
			Score:      c.match.MatchScore,
			AutoMatch:  c.match.IsAutoMatched,
		})
		if err != nil {
			log.Warn("failed to announce match", "matchID", c.match.ID, "error", err)
		}
	}
}
