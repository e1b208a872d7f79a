package showingController

import (
	"context"
	"errors"
	"time"

	"homeward/internal/logger"
	. "homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("showing not found")

type ShowingController struct {
	showingRepo repositories.ShowingRepository
	matchRepo   repositories.PropertyMatchRepository
	transaction *services.TransactionService
	log         logger.Logger
}

type CreateShowingRequest struct {
	PropertyMatchID uuid.UUID `json:"propertyMatchId" validate:"required"`
	ScheduledAt     time.Time `json:"scheduledAt"     validate:"required"`
	Notes           string    `json:"notes"`
}

type UpdateShowingStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type ShowingControllerInterface interface {
	Create(ctx context.Context, actor *User, request *CreateShowingRequest) (*Showing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Showing, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Showing, error)
	ListUpcoming(ctx context.Context) ([]Showing, error)
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		request *UpdateShowingStatusRequest,
	) (*Showing, error)
}

func New(repos repositories.Repository, services services.Service) ShowingControllerInterface {
	return &ShowingController{
		showingRepo: repos.Showing,
		matchRepo:   repos.PropertyMatch,
		transaction: services.Transaction,
		log:         logger.New("showingController"),
	}
}

// Create books a showing and moves the underlying match to ShowingRequested
// when it is still at the initial status.
func (c *ShowingController) Create(
	ctx context.Context,
	actor *User,
	request *CreateShowingRequest,
) (*Showing, error) {
	log := c.log.Function("Create")

	if request.PropertyMatchID == uuid.Nil || request.ScheduledAt.IsZero() {
		return nil, ErrValidation
	}

	match, err := c.matchRepo.GetByID(ctx, request.PropertyMatchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	showing := &Showing{
		PropertyMatchID: match.ID,
		ScheduledAt:     request.ScheduledAt,
		Status:          ShowingRequested,
		Notes:           request.Notes,
		CreatedBy:       &actor.ID,
	}

	err = c.transaction.Execute(ctx, func(txCtx context.Context) error {
		if _, err := c.showingRepo.Create(txCtx, showing); err != nil {
			return err
		}
		if match.Status == MatchIdentified {
			if err := match.AdvanceStatus(MatchShowingRequested); err != nil {
				return err
			}
			if err := c.matchRepo.Update(txCtx, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, log.Err("failed to create showing", err, "matchID", match.ID)
	}

	log.Info("Showing scheduled",
		"showingID", showing.ID, "matchID", match.ID, "scheduledAt", request.ScheduledAt)
	return showing, nil
}

func (c *ShowingController) GetByID(ctx context.Context, id uuid.UUID) (*Showing, error) {
	showing, err := c.showingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return showing, nil
}

func (c *ShowingController) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Showing, error) {
	return c.showingRepo.ListByMatch(ctx, matchID)
}

func (c *ShowingController) ListUpcoming(ctx context.Context) ([]Showing, error) {
	return c.showingRepo.ListUpcoming(ctx, time.Now().UTC())
}

func (c *ShowingController) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	request *UpdateShowingStatusRequest,
) (*Showing, error) {
	log := c.log.Function("UpdateStatus")

	status, err := ParseShowingStatus(request.Status)
	if err != nil {
		return nil, err
	}

	showing, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Completed and Cancelled are terminal
	if showing.Status == ShowingCompleted || showing.Status == ShowingCancelled {
		return nil, ErrValidation
	}

	showing.Status = status
	if request.Notes != "" {
		showing.Notes = request.Notes
	}

	if err := c.showingRepo.Update(ctx, showing); err != nil {
		return nil, log.Err("failed to update showing", err, "showingID", id)
	}

	return showing, nil
}
