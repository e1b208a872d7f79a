package handlers

import (
	"errors"

	"homeward/internal/app"
	matchController "homeward/internal/controllers/matches"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MatchHandler struct {
	Handler
	matchController matchController.MatchControllerInterface
}

func NewMatchHandler(app app.App, router fiber.Router) *MatchHandler {
	log := logger.New("handlers").File("match_handler")
	return &MatchHandler{
		matchController: app.Controllers.Match,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MatchHandler) Register() {
	matches := h.router.Group("/matches", h.middleware.RequireAuth())
	matches.Post("/", h.create)
	matches.Get("/:id", h.getByID)
	matches.Put("/:id/status", h.updateStatus)

	// Scored pairings for one search, best first
	h.router.Get("/searches/:id/matches", h.middleware.RequireAuth(), h.listBySearch)
}

func (h *MatchHandler) create(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	var request matchController.CreateMatchRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	match, err := h.matchController.Create(c.UserContext(), user, &request)
	if err != nil {
		switch {
		case errors.Is(err, matchController.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Match already exists for this search and property",
			})
		case errors.Is(err, matchController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Search or property not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create match",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"match": match})
}

func (h *MatchHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	match, err := h.matchController.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, matchController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get match",
		})
	}

	return c.JSON(fiber.Map{"match": match})
}

func (h *MatchHandler) listBySearch(c *fiber.Ctx) error {
	searchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search ID"})
	}

	matches, err := h.matchController.ListBySearch(c.UserContext(), searchID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list matches",
		})
	}

	return c.JSON(fiber.Map{"matches": matches})
}

func (h *MatchHandler) updateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	var request matchController.UpdateMatchStatusRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	match, err := h.matchController.UpdateStatus(c.UserContext(), id, &request)
	if err != nil {
		switch {
		case errors.Is(err, matchController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update match status",
			})
		}
	}

	return c.JSON(fiber.Map{"match": match})
}
