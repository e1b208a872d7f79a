package repositories

import (
	"homeward/internal/database"
)

type Repository struct {
	User          UserRepository
	Applicant     ApplicantRepository
	HousingSearch HousingSearchRepository
	Property      PropertyRepository
	PropertyMatch PropertyMatchRepository
	Reminder      ReminderRepository
	Showing       ShowingRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:          NewUserRepository(db),
		Applicant:     NewApplicantRepository(db),
		HousingSearch: NewHousingSearchRepository(db),
		Property:      NewPropertyRepository(db), // Property repo caches the active list
		PropertyMatch: NewPropertyMatchRepository(db),
		Reminder:      NewReminderRepository(db),
		Showing:       NewShowingRepository(db),
	}
}
