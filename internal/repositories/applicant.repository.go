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

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *Applicant) (*Applicant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error)
	GetByEmail(ctx context.Context, email string) (*Applicant, error)
	List(ctx context.Context, status *ApplicantStatus) ([]Applicant, error)
	Update(ctx context.Context, applicant *Applicant) error
}

type applicantRepository struct {
	db  database.DB
	log logger.Logger
}

func NewApplicantRepository(db database.DB) ApplicantRepository {
	return &applicantRepository{
		db:  db,
		log: logger.New("applicantRepository"),
	}
}

func (r *applicantRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *applicantRepository) Create(ctx context.Context, applicant *Applicant) (*Applicant, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(applicant).Error; err != nil {
		return nil, log.Err("failed to create applicant", err, "email", applicant.Email)
	}

	return applicant, nil
}

func (r *applicantRepository) GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error) {
	log := r.log.Function("GetByID")

	var applicant Applicant
	if err := r.getDB(ctx).Preload("Searches").First(&applicant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get applicant by ID", err, "id", id)
	}

	return &applicant, nil
}

func (r *applicantRepository) GetByEmail(ctx context.Context, email string) (*Applicant, error) {
	log := r.log.Function("GetByEmail")

	var applicant Applicant
	if err := r.getDB(ctx).First(&applicant, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get applicant by email", err, "email", email)
	}

	return &applicant, nil
}

func (r *applicantRepository) List(ctx context.Context, status *ApplicantStatus) ([]Applicant, error) {
	log := r.log.Function("List")

	query := r.getDB(ctx).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var applicants []Applicant
	if err := query.Find(&applicants).Error; err != nil {
		return nil, log.Err("failed to list applicants", err)
	}

	return applicants, nil
}

func (r *applicantRepository) Update(ctx context.Context, applicant *Applicant) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Omit(clause.Associations).Save(applicant).Error; err != nil {
		return log.Err("failed to update applicant", err, "id", applicant.ID)
	}

	return nil
}
