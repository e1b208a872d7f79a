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

type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) (*Reminder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	ListOpen(ctx context.Context) ([]Reminder, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]Reminder, error)
	ListByEntity(ctx context.Context, entityType EntityType, entityID uuid.UUID) ([]Reminder, error)
	Update(ctx context.Context, reminder *Reminder) error
}

type reminderRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReminderRepository(db database.DB) ReminderRepository {
	return &reminderRepository{
		db:  db,
		log: logger.New("reminderRepository"),
	}
}

func (r *reminderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *reminderRepository) Create(ctx context.Context, reminder *Reminder) (*Reminder, error) {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(reminder).Error; err != nil {
		return nil, log.Err("failed to create reminder", err, "title", reminder.Title)
	}

	return reminder, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	log := r.log.Function("GetByID")

	var reminder Reminder
	if err := r.getDB(ctx).First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get reminder by ID", err, "id", id)
	}

	return &reminder, nil
}

func (r *reminderRepository) ListOpen(ctx context.Context) ([]Reminder, error) {
	log := r.log.Function("ListOpen")

	var reminders []Reminder
	err := r.getDB(ctx).
		Where("completed_at IS NULL").
		Order("due_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, log.Err("failed to list open reminders", err)
	}

	return reminders, nil
}

func (r *reminderRepository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]Reminder, error) {
	log := r.log.Function("ListDueBefore")

	var reminders []Reminder
	err := r.getDB(ctx).
		Where("completed_at IS NULL AND due_date <= ?", cutoff).
		Order("due_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, log.Err("failed to list due reminders", err, "cutoff", cutoff)
	}

	return reminders, nil
}

func (r *reminderRepository) ListByEntity(
	ctx context.Context,
	entityType EntityType,
	entityID uuid.UUID,
) ([]Reminder, error) {
	log := r.log.Function("ListByEntity")

	var reminders []Reminder
	err := r.getDB(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("due_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, log.Err(
			"failed to list reminders by entity", err,
			"entityType", entityType, "entityID", entityID,
		)
	}

	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *Reminder) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(reminder).Error; err != nil {
		return log.Err("failed to update reminder", err, "id", reminder.ID)
	}

	return nil
}
