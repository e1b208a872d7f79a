package handlers

import (
	"errors"

	"homeward/internal/app"
	showingController "homeward/internal/controllers/showings"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ShowingHandler struct {
	Handler
	showingController showingController.ShowingControllerInterface
}

func NewShowingHandler(app app.App, router fiber.Router) *ShowingHandler {
	log := logger.New("handlers").File("showing_handler")
	return &ShowingHandler{
		showingController: app.Controllers.Showing,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ShowingHandler) Register() {
	showings := h.router.Group("/showings", h.middleware.RequireAuth())
	showings.Post("/", h.create)
	showings.Get("/upcoming", h.listUpcoming)
	showings.Get("/:id", h.getByID)
	showings.Put("/:id/status", h.updateStatus)

	h.router.Get("/matches/:id/showings", h.middleware.RequireAuth(), h.listByMatch)
}

func (h *ShowingHandler) create(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	var request showingController.CreateShowingRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	showing, err := h.showingController.Create(c.UserContext(), user, &request)
	if err != nil {
		switch {
		case errors.Is(err, showingController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create showing",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"showing": showing})
}

func (h *ShowingHandler) listUpcoming(c *fiber.Ctx) error {
	showings, err := h.showingController.ListUpcoming(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list showings",
		})
	}

	return c.JSON(fiber.Map{"showings": showings})
}

func (h *ShowingHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid showing ID"})
	}

	showing, err := h.showingController.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, showingController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Showing not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get showing",
		})
	}

	return c.JSON(fiber.Map{"showing": showing})
}

func (h *ShowingHandler) listByMatch(c *fiber.Ctx) error {
	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	showings, err := h.showingController.ListByMatch(c.UserContext(), matchID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list showings",
		})
	}

	return c.JSON(fiber.Map{"showings": showings})
}

func (h *ShowingHandler) updateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid showing ID"})
	}

	var request showingController.UpdateShowingStatusRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	showing, err := h.showingController.UpdateStatus(c.UserContext(), id, &request)
	if err != nil {
		switch {
		case errors.Is(err, showingController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Showing not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update showing",
			})
		}
	}

	return c.JSON(fiber.Map{"showing": showing})
}
