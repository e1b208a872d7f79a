package repositories

import (
	"context"
	"errors"
	"time"

	contextutil "homeward/internal/context"
	"homeward/internal/database"
	"homeward/internal/logger"
	. "homeward/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ACTIVE_PROPERTIES_CACHE_KEY    = "properties:active"
	ACTIVE_PROPERTIES_CACHE_EXPIRY = 5 * time.Minute
)

type PropertyRepository interface {
	Create(ctx context.Context, property *Property) (*Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	List(ctx context.Context, status *PropertyStatus) ([]Property, error)
	ListActive(ctx context.Context) ([]Property, error)
	Update(ctx context.Context, property *Property) error
	InvalidateActiveCache(ctx context.Context)
}

type propertyRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPropertyRepository(db database.DB) PropertyRepository {
	return &propertyRepository{
		db:  db,
		log: logger.New("propertyRepository"),
	}
}

func (r *propertyRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *propertyRepository) Create(ctx context.Context, property *Property) (*Property, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(property).Error; err != nil {
		return nil, log.Err("failed to create property", err, "address", property.Address)
	}

	r.InvalidateActiveCache(ctx)
	return property, nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	log := r.log.Function("GetByID")

	var property Property
	if err := r.getDB(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get property by ID", err, "id", id)
	}

	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, status *PropertyStatus) ([]Property, error) {
	log := r.log.Function("List")

	query := r.getDB(ctx).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var properties []Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, log.Err("failed to list properties", err)
	}

	return properties, nil
}

// ListActive returns active listings, served from the cache when warm. The
// match pipeline hits this on every preference edit, so the short TTL matters.
func (r *propertyRepository) ListActive(ctx context.Context) ([]Property, error) {
	log := r.log.Function("ListActive")

	var cached []Property
	found, err := database.NewCacheBuilder(r.db.Cache.General, ACTIVE_PROPERTIES_CACHE_KEY).
		WithContext(ctx).
		Get(&cached)
	if err == nil && found {
		return cached, nil
	}
	if err != nil {
		log.Warn("failed to read active property cache", "error", err)
	}

	var properties []Property
	err = r.getDB(ctx).
		Where("status = ?", PropertyActive).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, log.Err("failed to list active properties", err)
	}

	if err := database.NewCacheBuilder(r.db.Cache.General, ACTIVE_PROPERTIES_CACHE_KEY).
		WithStruct(properties).
		WithTTL(ACTIVE_PROPERTIES_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache active properties", "error", err)
	}

	return properties, nil
}

func (r *propertyRepository) Update(ctx context.Context, property *Property) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(property).Error; err != nil {
		return log.Err("failed to update property", err, "id", property.ID)
	}

	r.InvalidateActiveCache(ctx)
	return nil
}

func (r *propertyRepository) InvalidateActiveCache(ctx context.Context) {
	err := database.NewCacheBuilder(r.db.Cache.General, ACTIVE_PROPERTIES_CACHE_KEY).
		WithContext(ctx).
		Delete()
	if err != nil {
		r.log.Function("InvalidateActiveCache").
			Warn("failed to invalidate active property cache", "error", err)
	}
}
