package jobs

import (
	"context"
	"time"

	"homeward/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// ReminderDigestJob logs a morning summary of overdue and soon-due reminders
// so staff see the follow-up backlog at the start of the day.
type ReminderDigestJob struct {
	reminders *services.ReminderService
	log       logger.Logger
	schedule  services.Schedule
}

func NewReminderDigestJob(
	reminders *services.ReminderService,
	schedule services.Schedule,
) *ReminderDigestJob {
	return &ReminderDigestJob{
		reminders: reminders,
		log:       logger.New("reminderDigestJob"),
		schedule:  schedule,
	}
}

func (j *ReminderDigestJob) Name() string {
	return "MorningReminderDigest"
}

func (j *ReminderDigestJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	overdue, err := j.reminders.Overdue(ctx, time.Now().UTC())
	if err != nil {
		return log.Err("failed to list overdue reminders", err)
	}

	dueToday, err := j.reminders.DueWithin(ctx, 24*time.Hour)
	if err != nil {
		return log.Err("failed to list due reminders", err)
	}

	for _, reminder := range overdue {
		log.Warn(
			"Overdue reminder",
			"reminderID", reminder.ID,
			"title", reminder.Title,
			"dueDate", reminder.DueDate,
			"priority", reminder.Priority,
		)
	}

	log.Info("Reminder digest", "overdue", len(overdue), "dueNext24h", len(dueToday))
	return nil
}

func (j *ReminderDigestJob) Schedule() services.Schedule {
	return j.schedule
}
