package searchController

import (
	"context"
	"errors"
	"time"

	"homeward/internal/events"
	"homeward/internal/logger"
	. "homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("housing search not found")
	ErrConflict = errors.New("housing search was modified concurrently")
)

type SearchController struct {
	searchRepo         repositories.HousingSearchRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	log                logger.Logger
}

type TransitionRequest struct {
	TargetStage         string           `json:"targetStage"                   validate:"required"`
	PropertyID          *uuid.UUID       `json:"propertyId,omitempty"`
	ContractPrice       *decimal.Decimal `json:"contractPrice,omitempty"`
	ContractDate        *time.Time       `json:"contractDate,omitempty"`
	ExpectedClosingDate *time.Time       `json:"expectedClosingDate,omitempty"`
	ActualClosingDate   *time.Time       `json:"actualClosingDate,omitempty"`
	MoveInDate          *time.Time       `json:"moveInDate,omitempty"`
	Reason              string           `json:"reason,omitempty"`
}

type AgreementRequest struct {
	Type        string     `json:"type"        validate:"required"`
	DocumentURL string     `json:"documentUrl" validate:"required"`
	SignedAt    *time.Time `json:"signedAt,omitempty"`
}

type PreferencesRequest struct {
	Budget           *decimal.Decimal `json:"budget,omitempty"`
	MinBedrooms      *int             `json:"minBedrooms,omitempty"`
	MinBathrooms     *decimal.Decimal `json:"minBathrooms,omitempty"`
	RequiredFeatures *[]string        `json:"requiredFeatures,omitempty"`
	MoveTimeline     *string          `json:"moveTimeline,omitempty"`
	VenuePreference  *VenuePreference `json:"venuePreference,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

type SearchControllerInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*HousingSearch, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]HousingSearch, error)
	Transition(
		ctx context.Context,
		id uuid.UUID,
		actor *User,
		request *TransitionRequest,
	) (*HousingSearch, error)
	RecordAgreement(
		ctx context.Context,
		id uuid.UUID,
		actor *User,
		request *AgreementRequest,
	) (*HousingSearch, error)
	UpdatePreferences(
		ctx context.Context,
		id uuid.UUID,
		actor *User,
		request *PreferencesRequest,
	) (*HousingSearch, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
) SearchControllerInterface {
	return &SearchController{
		searchRepo:         repos.HousingSearch,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		log:                logger.New("searchController"),
	}
}

func (c *SearchController) GetByID(ctx context.Context, id uuid.UUID) (*HousingSearch, error) {
	search, err := c.searchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return search, nil
}

func (c *SearchController) ListByApplicant(
	ctx context.Context,
	applicantID uuid.UUID,
) ([]HousingSearch, error) {
	return c.searchRepo.ListByApplicant(ctx, applicantID)
}

// Transition applies a stage change and announces it after commit so the
// match pipeline sees the persisted state.
func (c *SearchController) Transition(
	ctx context.Context,
	id uuid.UUID,
	actor *User,
	request *TransitionRequest,
) (*HousingSearch, error) {
	log := c.log.Function("Transition")

	target, err := ParseStage(request.TargetStage)
	if err != nil {
		return nil, err
	}

	search, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := TransitionPayload{
		PropertyID:          request.PropertyID,
		ContractPrice:       request.ContractPrice,
		ContractDate:        request.ContractDate,
		ExpectedClosingDate: request.ExpectedClosingDate,
		ActualClosingDate:   request.ActualClosingDate,
		MoveInDate:          request.MoveInDate,
		Reason:              request.Reason,
	}

	oldStage, err := search.ApplyTransition(target, payload, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := c.persistVersioned(ctx, search); err != nil {
		return nil, log.Err("failed to persist stage transition", err, "searchID", id)
	}

	log.Info("Stage transition applied",
		"searchID", id, "from", oldStage, "to", search.Stage, "actor", actor.ID)

	if err := c.eventBus.Publish(ctx, events.EventStageChanged, events.StageChangedPayload{
		SearchID: search.ID,
		OldStage: oldStage,
		NewStage: search.Stage,
	}); err != nil {
		log.Warn("stage change handlers reported errors", "searchID", id, "error", err)
	}

	return search, nil
}

func (c *SearchController) RecordAgreement(
	ctx context.Context,
	id uuid.UUID,
	actor *User,
	request *AgreementRequest,
) (*HousingSearch, error) {
	log := c.log.Function("RecordAgreement")

	search, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	signedAt := time.Now().UTC()
	if request.SignedAt != nil {
		signedAt = *request.SignedAt
	}

	if err := search.RecordAgreementSigned(AgreementType(request.Type), request.DocumentURL, signedAt); err != nil {
		return nil, err
	}

	if err := c.persistVersioned(ctx, search); err != nil {
		return nil, log.Err("failed to persist agreement", err, "searchID", id)
	}

	log.Info("Agreement recorded", "searchID", id, "type", request.Type, "actor", actor.ID)
	return search, nil
}

// UpdatePreferences edits match criteria and kicks off the re-evaluation
func (c *SearchController) UpdatePreferences(
	ctx context.Context,
	id uuid.UUID,
	actor *User,
	request *PreferencesRequest,
) (*HousingSearch, error) {
	log := c.log.Function("UpdatePreferences")

	search, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Budget != nil {
		if !request.Budget.IsPositive() {
			return nil, ErrValidation
		}
		search.Budget = request.Budget
	}
	if request.MinBedrooms != nil {
		if *request.MinBedrooms < 0 {
			return nil, ErrValidation
		}
		search.MinBedrooms = request.MinBedrooms
	}
	if request.MinBathrooms != nil {
		if request.MinBathrooms.IsNegative() {
			return nil, ErrValidation
		}
		search.MinBathrooms = request.MinBathrooms
	}
	if request.RequiredFeatures != nil {
		search.RequiredFeatures = *request.RequiredFeatures
	}
	if request.MoveTimeline != nil {
		timeline := MoveTimeline(*request.MoveTimeline)
		search.MoveTimeline = &timeline
	}
	if request.VenuePreference != nil {
		venue := datatypes.NewJSONType(*request.VenuePreference)
		search.VenuePreference = &venue
	}
	if request.Notes != nil {
		search.Notes = *request.Notes
	}

	if err := c.persistVersioned(ctx, search); err != nil {
		return nil, log.Err("failed to persist preferences", err, "searchID", id)
	}

	log.Info("Preferences updated", "searchID", id, "actor", actor.ID)

	if err := c.eventBus.Publish(ctx, events.EventPreferencesUpdated, events.PreferencesUpdatedPayload{
		SearchID: search.ID,
	}); err != nil {
		log.Warn("preference handlers reported errors", "searchID", id, "error", err)
	}

	return search, nil
}

func (c *SearchController) persistVersioned(ctx context.Context, search *HousingSearch) error {
	err := c.searchRepo.UpdateWithVersion(ctx, search)
	if errors.Is(err, repositories.ErrVersionConflict) {
		return ErrConflict
	}
	return err
}
