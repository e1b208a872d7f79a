package services

import (
	"context"
	"time"

	"homeward/internal/models"
	"homeward/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type ReminderService struct {
	reminderRepo repositories.ReminderRepository
	log          logger.Logger
}

func NewReminderService(repo repositories.Repository) *ReminderService {
	return &ReminderService{
		reminderRepo: repo.Reminder,
		log:          logger.New("ReminderService"),
	}
}

func (s *ReminderService) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	log := s.log.Function("Create")

	created, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		return nil, log.Err("failed to create reminder", err, "title", reminder.Title)
	}

	return created, nil
}

// Complete marks a reminder done; completing twice is a no-op
func (s *ReminderService) Complete(ctx context.Context, id, actorID uuid.UUID) (*models.Reminder, error) {
	log := s.log.Function("Complete")

	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.CompletedAt != nil {
		return reminder, nil
	}

	now := time.Now().UTC()
	reminder.CompletedAt = &now
	reminder.CompletedBy = &actorID
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, log.Err("failed to complete reminder", err, "id", id)
	}

	return reminder, nil
}

// Overdue returns open reminders whose due date has passed
func (s *ReminderService) Overdue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	return s.reminderRepo.ListDueBefore(ctx, now)
}

// DueWithin returns open reminders due inside the given window
func (s *ReminderService) DueWithin(ctx context.Context, window time.Duration) ([]models.Reminder, error) {
	return s.reminderRepo.ListDueBefore(ctx, time.Now().UTC().Add(window))
}
