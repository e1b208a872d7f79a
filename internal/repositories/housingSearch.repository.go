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

// ErrVersionConflict signals a lost-update race on an optimistic write
var ErrVersionConflict = errors.New("record was modified concurrently")

type HousingSearchRepository interface {
	Create(ctx context.Context, search *HousingSearch) (*HousingSearch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*HousingSearch, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]HousingSearch, error)
	ListActiveSearching(ctx context.Context) ([]HousingSearch, error)
	Update(ctx context.Context, search *HousingSearch) error
	UpdateWithVersion(ctx context.Context, search *HousingSearch) error
}

type housingSearchRepository struct {
	db  database.DB
	log logger.Logger
}

func NewHousingSearchRepository(db database.DB) HousingSearchRepository {
	return &housingSearchRepository{
		db:  db,
		log: logger.New("housingSearchRepository"),
	}
}

func (r *housingSearchRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *housingSearchRepository) Create(
	ctx context.Context,
	search *HousingSearch,
) (*HousingSearch, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(search).Error; err != nil {
		return nil, log.Err("failed to create housing search", err, "applicantID", search.ApplicantID)
	}

	return search, nil
}

func (r *housingSearchRepository) GetByID(ctx context.Context, id uuid.UUID) (*HousingSearch, error) {
	log := r.log.Function("GetByID")

	var search HousingSearch
	err := r.getDB(ctx).Preload("Applicant").First(&search, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get housing search by ID", err, "id", id)
	}

	return &search, nil
}

func (r *housingSearchRepository) ListByApplicant(
	ctx context.Context,
	applicantID uuid.UUID,
) ([]HousingSearch, error) {
	log := r.log.Function("ListByApplicant")

	var searches []HousingSearch
	err := r.getDB(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&searches).Error
	if err != nil {
		return nil, log.Err("failed to list housing searches", err, "applicantID", applicantID)
	}

	return searches, nil
}

// ListActiveSearching returns every active search currently in the Searching
// stage, the population the match pipeline evaluates new listings against.
func (r *housingSearchRepository) ListActiveSearching(ctx context.Context) ([]HousingSearch, error) {
	log := r.log.Function("ListActiveSearching")

	var searches []HousingSearch
	err := r.getDB(ctx).
		Where("is_active = ? AND stage = ?", true, StageSearching).
		Find(&searches).Error
	if err != nil {
		return nil, log.Err("failed to list active searching records", err)
	}

	return searches, nil
}

func (r *housingSearchRepository) Update(ctx context.Context, search *HousingSearch) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Omit(clause.Associations).Save(search).Error; err != nil {
		return log.Err("failed to update housing search", err, "id", search.ID)
	}

	return nil
}

// UpdateWithVersion writes the search only if nobody else has bumped the
// version since it was read. The in-memory version is incremented on success.
func (r *housingSearchRepository) UpdateWithVersion(
	ctx context.Context,
	search *HousingSearch,
) error {
	log := r.log.Function("UpdateWithVersion")

	currentVersion := search.Version
	search.Version = currentVersion + 1

	result := r.getDB(ctx).
		Model(&HousingSearch{}).
		Where("id = ? AND version = ?", search.ID, currentVersion).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(search)
	if result.Error != nil {
		search.Version = currentVersion
		return log.Err("failed to update housing search", result.Error, "id", search.ID)
	}
	if result.RowsAffected == 0 {
		search.Version = currentVersion
		return ErrVersionConflict
	}

	return nil
}
