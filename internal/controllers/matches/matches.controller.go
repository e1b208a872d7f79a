package matchController

import (
	"context"
	"errors"

	"homeward/internal/events"
	"homeward/internal/logger"
	"homeward/internal/matching"
	. "homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("property match not found")
	ErrConflict = errors.New("match already exists for this search and property")
)

type MatchController struct {
	matchRepo    repositories.PropertyMatchRepository
	searchRepo   repositories.HousingSearchRepository
	propertyRepo repositories.PropertyRepository
	eventBus     *events.EventBus
	log          logger.Logger
}

type CreateMatchRequest struct {
	HousingSearchID uuid.UUID `json:"housingSearchId" validate:"required"`
	PropertyID      uuid.UUID `json:"propertyId"      validate:"required"`
	Notes           string    `json:"notes"`
}

type UpdateMatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type MatchControllerInterface interface {
	Create(ctx context.Context, actor *User, request *CreateMatchRequest) (*PropertyMatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PropertyMatch, error)
	ListBySearch(ctx context.Context, searchID uuid.UUID) ([]PropertyMatch, error)
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		request *UpdateMatchStatusRequest,
	) (*PropertyMatch, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
) MatchControllerInterface {
	return &MatchController{
		matchRepo:    repos.PropertyMatch,
		searchRepo:   repos.HousingSearch,
		propertyRepo: repos.Property,
		eventBus:     eventBus,
		log:          logger.New("matchController"),
	}
}

// Create records a staff-curated pairing. The score is computed the same way
// as for auto-matches, but no threshold applies; staff judgment wins.
func (c *MatchController) Create(
	ctx context.Context,
	actor *User,
	request *CreateMatchRequest,
) (*PropertyMatch, error) {
	log := c.log.Function("Create")

	if request.HousingSearchID == uuid.Nil || request.PropertyID == uuid.Nil {
		return nil, ErrValidation
	}

	search, err := c.searchRepo.GetByID(ctx, request.HousingSearchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	property, err := c.propertyRepo.GetByID(ctx, request.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	existing, err := c.matchRepo.GetByPair(ctx, search.ID, property.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	score, breakdown := matching.Score(property.ToListing(), search.MatchPreferences())
	details, err := breakdown.Marshal()
	if err != nil {
		return nil, err
	}

	match := &PropertyMatch{
		HousingSearchID: search.ID,
		PropertyID:      property.ID,
		MatchScore:      score,
		MatchDetails:    details,
		Status:          MatchIdentified,
		IsAutoMatched:   false,
		CreatedBy:       &actor.ID,
		Notes:           request.Notes,
	}

	created, err := c.matchRepo.Create(ctx, match)
	if err != nil {
		return nil, log.Err(
			"failed to create match", err,
			"searchID", search.ID, "propertyID", property.ID,
		)
	}

	log.Info("Manual match created",
		"matchID", created.ID, "score", score, "actor", actor.ID)

	if err := c.eventBus.Publish(ctx, events.EventMatchCreated, events.MatchCreatedPayload{
		SearchID:   created.HousingSearchID,
		PropertyID: created.PropertyID,
		Score:      created.MatchScore,
		AutoMatch:  false,
	}); err != nil {
		log.Warn("match handlers reported errors", "matchID", created.ID, "error", err)
	}

	return created, nil
}

func (c *MatchController) GetByID(ctx context.Context, id uuid.UUID) (*PropertyMatch, error) {
	match, err := c.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return match, nil
}

func (c *MatchController) ListBySearch(
	ctx context.Context,
	searchID uuid.UUID,
) ([]PropertyMatch, error) {
	return c.matchRepo.ListBySearch(ctx, searchID)
}

func (c *MatchController) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	request *UpdateMatchStatusRequest,
) (*PropertyMatch, error) {
	log := c.log.Function("UpdateStatus")

	target, err := ParseMatchStatus(request.Status)
	if err != nil {
		return nil, err
	}

	match, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := match.AdvanceStatus(target); err != nil {
		return nil, err
	}
	if request.Notes != "" {
		match.Notes = request.Notes
	}

	if err := c.matchRepo.Update(ctx, match); err != nil {
		return nil, log.Err("failed to update match status", err, "matchID", id)
	}

	log.Info("Match status updated", "matchID", id, "status", target)
	return match, nil
}
