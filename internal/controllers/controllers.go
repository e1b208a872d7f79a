package controllers

import (
	"homeward/internal/events"
	"homeward/internal/repositories"
	"homeward/internal/services"

	applicantController "homeward/internal/controllers/applicants"
	matchController "homeward/internal/controllers/matches"
	propertyController "homeward/internal/controllers/properties"
	reminderController "homeward/internal/controllers/reminders"
	searchController "homeward/internal/controllers/searches"
	showingController "homeward/internal/controllers/showings"
)

type Controllers struct {
	Applicant applicantController.ApplicantControllerInterface
	Search    searchController.SearchControllerInterface
	Property  propertyController.PropertyControllerInterface
	Match     matchController.MatchControllerInterface
	Reminder  reminderController.ReminderControllerInterface
	Showing   showingController.ShowingControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
) Controllers {
	return Controllers{
		Applicant: applicantController.New(repos, services, eventBus),
		Search:    searchController.New(repos, services, eventBus),
		Property:  propertyController.New(repos, services, eventBus),
		Match:     matchController.New(repos, services, eventBus),
		Reminder:  reminderController.New(repos, services),
		Showing:   showingController.New(repos, services),
	}
}
