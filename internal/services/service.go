package services

import (
	"homeward/config"
	"homeward/internal/database"
	"homeward/internal/events"
	"homeward/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Scheduler   *SchedulerService
	Matching    *MatchingService
	Reminder    *ReminderService
}

func New(db database.DB, config config.Config, eventBus *events.EventBus) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)

	schedulerService := NewSchedulerService()
	matchingService := NewMatchingService(repos, transactionService, eventBus)
	reminderService := NewReminderService(repos)

	// The match pipeline listens for listing and search changes
	matchingService.RegisterEventHandlers(eventBus)

	return Service{
		Transaction: transactionService,
		Scheduler:   schedulerService,
		Matching:    matchingService,
		Reminder:    reminderService,
	}, nil
}
