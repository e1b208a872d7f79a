package app

import (
	"context"

	"homeward/config"
	"homeward/internal/controllers"
	"homeward/internal/database"
	"homeward/internal/events"
	"homeward/internal/handlers/middleware"
	"homeward/internal/jobs"
	"homeward/internal/logger"
	"homeward/internal/repositories"
	"homeward/internal/services"
	"homeward/internal/websockets"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	repos := repositories.New(db)

	appServices, err := services.New(db, config, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket, err := websockets.New(db, eventBus, config, repos.User)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config, repos)
	appControllers := controllers.New(appServices, repos, eventBus)

	if config.SchedulerEnabled {
		rematchJob := jobs.NewRematchSweepJob(
			appServices.Matching,
			repos.HousingSearch,
			services.Nightly,
		)
		if err := appServices.Scheduler.AddJob(rematchJob); err != nil {
			return &App{}, log.Err("failed to register rematch sweep job", err)
		}

		digestJob := jobs.NewReminderDigestJob(appServices.Reminder, services.Morning)
		if err := appServices.Scheduler.AddJob(digestJob); err != nil {
			return &App{}, log.Err("failed to register reminder digest job", err)
		}

		log.Info("Registered scheduled jobs", "jobCount", appServices.Scheduler.GetJobCount())
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware,
		Websocket:    websocket,
		EventBus:     eventBus,
		Services:     appServices,
		Repositories: repos,
		Controllers:  appControllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Matching,
		a.Services.Reminder,
		a.Controllers.Applicant,
		a.Controllers.Search,
		a.Controllers.Property,
		a.Controllers.Match,
		a.Controllers.Reminder,
		a.Controllers.Showing,
		a.Repositories.User,
		a.Repositories.Applicant,
		a.Repositories.HousingSearch,
		a.Repositories.Property,
		a.Repositories.PropertyMatch,
		a.Repositories.Reminder,
		a.Repositories.Showing,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
