package jobs

import (
	"context"

	"homeward/internal/repositories"
	"homeward/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// RematchSweepJob re-scores every active search against the current listing
// pool. Events cover the common paths, the sweep catches anything they missed
// (manual database edits, handlers that failed mid-batch).
type RematchSweepJob struct {
	matching   *services.MatchingService
	searchRepo repositories.HousingSearchRepository
	log        logger.Logger
	schedule   services.Schedule
}

func NewRematchSweepJob(
	matching *services.MatchingService,
	searchRepo repositories.HousingSearchRepository,
	schedule services.Schedule,
) *RematchSweepJob {
	return &RematchSweepJob{
		matching:   matching,
		searchRepo: searchRepo,
		log:        logger.New("rematchSweepJob"),
		schedule:   schedule,
	}
}

func (j *RematchSweepJob) Name() string {
	return "NightlyRematchSweep"
}

func (j *RematchSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	searches, err := j.searchRepo.ListActiveSearching(ctx)
	if err != nil {
		return log.Err("failed to list active searches", err)
	}

	log.Info("Starting rematch sweep", "searchCount", len(searches))

	failed := 0
	for _, search := range searches {
		if err := j.matching.EvaluateSearch(ctx, search.ID); err != nil {
			log.Er("failed to evaluate search", err, "searchID", search.ID)
			failed++
		}
	}

	log.Info("Rematch sweep completed", "searchCount", len(searches), "failed", failed)
	return nil
}

func (j *RematchSweepJob) Schedule() services.Schedule {
	return j.schedule
}
