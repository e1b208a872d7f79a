package reminderController

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

var ErrNotFound = errors.New("reminder not found")

type ReminderController struct {
	reminderRepo    repositories.ReminderRepository
	reminderService *services.ReminderService
	log             logger.Logger
}

type CreateReminderRequest struct {
	Title      string    `json:"title"      validate:"required"`
	DueDate    time.Time `json:"dueDate"    validate:"required"`
	EntityType string    `json:"entityType" validate:"required"`
	EntityID   uuid.UUID `json:"entityId"   validate:"required"`
	Priority   string    `json:"priority"`
	Notes      string    `json:"notes"`
}

type ReminderControllerInterface interface {
	Create(ctx context.Context, actor *User, request *CreateReminderRequest) (*Reminder, error)
	ListOpen(ctx context.Context) ([]Reminder, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]Reminder, error)
	Complete(ctx context.Context, id uuid.UUID, actor *User) (*Reminder, error)
}

func New(repos repositories.Repository, services services.Service) ReminderControllerInterface {
	return &ReminderController{
		reminderRepo:    repos.Reminder,
		reminderService: services.Reminder,
		log:             logger.New("reminderController"),
	}
}

var validEntityTypes = map[EntityType]struct{}{
	EntityApplicant:     {},
	EntityHousingSearch: {},
	EntityProperty:      {},
	EntityPropertyMatch: {},
	EntityShowing:       {},
}

func (c *ReminderController) Create(
	ctx context.Context,
	actor *User,
	request *CreateReminderRequest,
) (*Reminder, error) {
	log := c.log.Function("Create")

	if request.Title == "" || request.DueDate.IsZero() || request.EntityID == uuid.Nil {
		return nil, ErrValidation
	}
	entityType := EntityType(request.EntityType)
	if _, ok := validEntityTypes[entityType]; !ok {
		return nil, ErrValidation
	}

	priority := PriorityNormal
	if request.Priority != "" {
		switch ReminderPriority(request.Priority) {
		case PriorityLow, PriorityNormal, PriorityHigh:
			priority = ReminderPriority(request.Priority)
		default:
			return nil, ErrValidation
		}
	}

	reminder := &Reminder{
		Title:      request.Title,
		DueDate:    request.DueDate,
		EntityType: entityType,
		EntityID:   request.EntityID,
		Priority:   priority,
		Notes:      request.Notes,
		CreatedBy:  &actor.ID,
	}

	created, err := c.reminderService.Create(ctx, reminder)
	if err != nil {
		return nil, log.Err("failed to create reminder", err, "title", request.Title)
	}

	return created, nil
}

func (c *ReminderController) ListOpen(ctx context.Context) ([]Reminder, error) {
	return c.reminderRepo.ListOpen(ctx)
}

func (c *ReminderController) ListByEntity(
	ctx context.Context,
	entityType string,
	entityID uuid.UUID,
) ([]Reminder, error) {
	parsed := EntityType(entityType)
	if _, ok := validEntityTypes[parsed]; !ok {
		return nil, ErrValidation
	}
	return c.reminderRepo.ListByEntity(ctx, parsed, entityID)
}

func (c *ReminderController) Complete(
	ctx context.Context,
	id uuid.UUID,
	actor *User,
) (*Reminder, error) {
	reminder, err := c.reminderService.Complete(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reminder, nil
}
