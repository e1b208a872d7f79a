package repositories

import (
	"context"
	"errors"

	contextutil "homeward/internal/context"
	"homeward/internal/database"
	"homeward/internal/logger"
	. "homeward/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyMatchRepository interface {
	Create(ctx context.Context, match *PropertyMatch) (*PropertyMatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PropertyMatch, error)
	GetByPair(ctx context.Context, searchID, propertyID uuid.UUID) (*PropertyMatch, error)
	ListBySearch(ctx context.Context, searchID uuid.UUID) ([]PropertyMatch, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]PropertyMatch, error)
	Update(ctx context.Context, match *PropertyMatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyMatchRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPropertyMatchRepository(db database.DB) PropertyMatchRepository {
	return &propertyMatchRepository{
		db:  db,
		log: logger.New("propertyMatchRepository"),
	}
}

func (r *propertyMatchRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *propertyMatchRepository) Create(
	ctx context.Context,
	match *PropertyMatch,
) (*PropertyMatch, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(match).Error; err != nil {
		return nil, log.Err(
			"failed to create property match", err,
			"searchID", match.HousingSearchID,
			"propertyID", match.PropertyID,
		)
	}

	return match, nil
}

func (r *propertyMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*PropertyMatch, error) {
	log := r.log.Function("GetByID")

	var match PropertyMatch
	err := r.getDB(ctx).Preload("Property").First(&match, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get property match by ID", err, "id", id)
	}

	return &match, nil
}

// GetByPair looks up the unique match for a search/property combination.
// Returns nil without error when no match exists.
func (r *propertyMatchRepository) GetByPair(
	ctx context.Context,
	searchID, propertyID uuid.UUID,
) (*PropertyMatch, error) {
	log := r.log.Function("GetByPair")

	var match PropertyMatch
	err := r.getDB(ctx).
		First(&match, "housing_search_id = ? AND property_id = ?", searchID, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err(
			"failed to get property match by pair", err,
			"searchID", searchID, "propertyID", propertyID,
		)
	}

	return &match, nil
}

func (r *propertyMatchRepository) ListBySearch(
	ctx context.Context,
	searchID uuid.UUID,
) ([]PropertyMatch, error) {
	log := r.log.Function("ListBySearch")

	var matches []PropertyMatch
	err := r.getDB(ctx).
		Preload("Property").
		Where("housing_search_id = ?", searchID).
		Order("match_score DESC").
		Find(&matches).Error
	if err != nil {
		return nil, log.Err("failed to list matches for search", err, "searchID", searchID)
	}

	return matches, nil
}

func (r *propertyMatchRepository) ListByProperty(
	ctx context.Context,
	propertyID uuid.UUID,
) ([]PropertyMatch, error) {
	log := r.log.Function("ListByProperty")

	var matches []PropertyMatch
	err := r.getDB(ctx).
		Where("property_id = ?", propertyID).
		Order("match_score DESC").
		Find(&matches).Error
	if err != nil {
		return nil, log.Err("failed to list matches for property", err, "propertyID", propertyID)
	}

	return matches, nil
}

func (r *propertyMatchRepository) Update(ctx context.Context, match *PropertyMatch) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Omit(clause.Associations).Save(match).Error; err != nil {
		return log.Err("failed to update property match", err, "id", match.ID)
	}

	return nil
}

func (r *propertyMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&PropertyMatch{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete property match", err, "id", id)
	}

	return nil
}
