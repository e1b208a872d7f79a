package handlers

import (
	"errors"

	"homeward/internal/app"
	reminderController "homeward/internal/controllers/reminders"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReminderHandler struct {
	Handler
	reminderController reminderController.ReminderControllerInterface
}

func NewReminderHandler(app app.App, router fiber.Router) *ReminderHandler {
	log := logger.New("handlers").File("reminder_handler")
	return &ReminderHandler{
		reminderController: app.Controllers.Reminder,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReminderHandler) Register() {
	reminders := h.router.Group("/reminders", h.middleware.RequireAuth())
	reminders.Post("/", h.create)
	reminders.Get("/", h.listOpen)
	reminders.Post("/:id/complete", h.complete)
}

func (h *ReminderHandler) create(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	var request reminderController.CreateReminderRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	reminder, err := h.reminderController.Create(c.UserContext(), user, &request)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create reminder",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reminder": reminder})
}

func (h *ReminderHandler) listOpen(c *fiber.Ctx) error {
	// Optional entity filter: /reminders?entityType=HousingSearch&entityId=...
	entityType := c.Query("entityType")
	if entityType != "" {
		entityID, err := uuid.Parse(c.Query("entityId"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity ID"})
		}
		reminders, err := h.reminderController.ListByEntity(c.UserContext(), entityType, entityID)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity type"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list reminders",
			})
		}
		return c.JSON(fiber.Map{"reminders": reminders})
	}

	reminders, err := h.reminderController.ListOpen(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list reminders",
		})
	}

	return c.JSON(fiber.Map{"reminders": reminders})
}

func (h *ReminderHandler) complete(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reminder ID"})
	}

	reminder, err := h.reminderController.Complete(c.UserContext(), id, user)
	if err != nil {
		if errors.Is(err, reminderController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reminder not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete reminder",
		})
	}

	return c.JSON(fiber.Map{"reminder": reminder})
}
