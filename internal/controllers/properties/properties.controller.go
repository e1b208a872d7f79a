package propertyController

import (
	"context"
	"errors"

	"homeward/internal/events"
	"homeward/internal/logger"
	. "homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("property not found")

type PropertyController struct {
	propertyRepo       repositories.PropertyRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	log                logger.Logger
}

type CreatePropertyRequest struct {
	Address     string           `json:"address"     validate:"required"`
	City        string           `json:"city"        validate:"required"`
	State       string           `json:"state"`
	Zip         string           `json:"zip"`
	Price       decimal.Decimal  `json:"price"       validate:"required"`
	Bedrooms    int              `json:"bedrooms"`
	Bathrooms   decimal.Decimal  `json:"bathrooms"`
	SquareFeet  *int             `json:"squareFeet,omitempty"`
	LotAcres    *decimal.Decimal `json:"lotAcres,omitempty"`
	YearBuilt   *int             `json:"yearBuilt,omitempty"`
	AnnualTaxes *decimal.Decimal `json:"annualTaxes,omitempty"`
	Features    []string         `json:"features,omitempty"`
	Photos      []string         `json:"photos,omitempty"`
	Notes       string           `json:"notes"`
}

type UpdatePropertyRequest struct {
	Price       *decimal.Decimal `json:"price,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Features    *[]string        `json:"features,omitempty"`
	Photos      *[]string        `json:"photos,omitempty"`
	AnnualTaxes *decimal.Decimal `json:"annualTaxes,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

type PropertyControllerInterface interface {
	Create(ctx context.Context, actor *User, request *CreatePropertyRequest) (*Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	List(ctx context.Context, status string) ([]Property, error)
	Update(ctx context.Context, id uuid.UUID, request *UpdatePropertyRequest) (*Property, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
) PropertyControllerInterface {
	return &PropertyController{
		propertyRepo:       repos.Property,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		log:                logger.New("propertyController"),
	}
}

// Create persists a listing and announces it so open searches get scored
// against it immediately.
func (c *PropertyController) Create(
	ctx context.Context,
	actor *User,
	request *CreatePropertyRequest,
) (*Property, error) {
	log := c.log.Function("Create")

	if request.Address == "" || request.City == "" || !request.Price.IsPositive() {
		return nil, ErrValidation
	}

	property := &Property{
		Address:     request.Address,
		City:        request.City,
		State:       request.State,
		Zip:         request.Zip,
		Price:       request.Price,
		Bedrooms:    request.Bedrooms,
		Bathrooms:   request.Bathrooms,
		SquareFeet:  request.SquareFeet,
		LotAcres:    request.LotAcres,
		YearBuilt:   request.YearBuilt,
		AnnualTaxes: request.AnnualTaxes,
		Features:    request.Features,
		Photos:      request.Photos,
		Status:      PropertyActive,
		ListedBy:    &actor.ID,
		Notes:       request.Notes,
	}

	created, err := c.propertyRepo.Create(ctx, property)
	if err != nil {
		return nil, log.Err("failed to create property", err, "address", request.Address)
	}

	log.Info("Property created", "propertyID", created.ID, "city", created.City)

	if err := c.eventBus.Publish(ctx, events.EventPropertyCreated, events.PropertyCreatedPayload{
		PropertyID: created.ID,
	}); err != nil {
		log.Warn("new listing handlers reported errors", "propertyID", created.ID, "error", err)
	}

	return created, nil
}

func (c *PropertyController) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	property, err := c.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return property, nil
}

func (c *PropertyController) List(ctx context.Context, status string) ([]Property, error) {
	if status == "" {
		return c.propertyRepo.List(ctx, nil)
	}

	parsed, err := ParsePropertyStatus(status)
	if err != nil {
		return nil, err
	}
	return c.propertyRepo.List(ctx, &parsed)
}

func (c *PropertyController) Update(
	ctx context.Context,
	id uuid.UUID,
	request *UpdatePropertyRequest,
) (*Property, error) {
	log := c.log.Function("Update")

	property, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Price != nil {
		if !request.Price.IsPositive() {
			return nil, ErrValidation
		}
		property.Price = *request.Price
	}
	if request.Status != nil {
		parsed, err := ParsePropertyStatus(*request.Status)
		if err != nil {
			return nil, err
		}
		property.Status = parsed
	}
	if request.Features != nil {
		property.Features = *request.Features
	}
	if request.Photos != nil {
		property.Photos = *request.Photos
	}
	if request.AnnualTaxes != nil {
		property.AnnualTaxes = request.AnnualTaxes
	}
	if request.Notes != nil {
		property.Notes = *request.Notes
	}

	if err := c.propertyRepo.Update(ctx, property); err != nil {
		return nil, log.Err("failed to update property", err, "propertyID", id)
	}

	return property, nil
}
