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
	"gorm.io/gorm/clause"
)

type ShowingRepository interface {
	Create(ctx context.Context, showing *Showing) (*Showing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Showing, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Showing, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]Showing, error)
	Update(ctx context.Context, showing *Showing) error
}

type showingRepository struct {
	db  database.DB
	log logger.Logger
}

func NewShowingRepository(db database.DB) ShowingRepository {
	return &showingRepository{
		db:  db,
		log: logger.New("showingRepository"),
	}
}

func (r *showingRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *showingRepository) Create(ctx context.Context, showing *Showing) (*Showing, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(showing).Error; err != nil {
		return nil, log.Err("failed to create showing", err, "matchID", showing.PropertyMatchID)
	}

	return showing, nil
}

func (r *showingRepository) GetByID(ctx context.Context, id uuid.UUID) (*Showing, error) {
	log := r.log.Function("GetByID")

	var showing Showing
	err := r.getDB(ctx).Preload("PropertyMatch").First(&showing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get showing by ID", err, "id", id)
	}

	return &showing, nil
}

func (r *showingRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]Showing, error) {
	log := r.log.Function("ListByMatch")

	var showings []Showing
	err := r.getDB(ctx).
		Where("property_match_id = ?", matchID).
		Order("scheduled_at ASC").
		Find(&showings).Error
	if err != nil {
		return nil, log.Err("failed to list showings for match", err, "matchID", matchID)
	}

	return showings, nil
}

func (r *showingRepository) ListUpcoming(ctx context.Context, from time.Time) ([]Showing, error) {
	log := r.log.Function("ListUpcoming")

	var showings []Showing
	err := r.getDB(ctx).
		Where("scheduled_at >= ? AND status IN ?", from, []ShowingStatus{ShowingRequested, ShowingConfirmed}).
		Order("scheduled_at ASC").
		Find(&showings).Error
	if err != nil {
		return nil, log.Err("failed to list upcoming showings", err)
	}

	return showings, nil
}

func (r *showingRepository) Update(ctx context.Context, showing *Showing) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Omit(clause.Associations).Save(showing).Error; err != nil {
		return log.Err("failed to update showing", err, "id", showing.ID)
	}

	return nil
}
