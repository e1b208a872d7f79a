package handlers

import (
	"errors"

	"homeward/internal/app"
	searchController "homeward/internal/controllers/searches"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SearchHandler struct {
	Handler
	searchController searchController.SearchControllerInterface
}

func NewSearchHandler(app app.App, router fiber.Router) *SearchHandler {
	log := logger.New("handlers").File("search_handler")
	return &SearchHandler{
		searchController: app.Controllers.Search,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SearchHandler) Register() {
	searches := h.router.Group("/searches", h.middleware.RequireAuth())
	searches.Get("/:id", h.getByID)
	searches.Post("/:id/transition", h.transition)
	searches.Post("/:id/agreements", h.recordAgreement)
	searches.Put("/:id/preferences", h.updatePreferences)
}

func (h *SearchHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search ID"})
	}

	search, err := h.searchController.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, searchController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Housing search not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get housing search",
		})
	}

	return c.JSON(fiber.Map{"search": search})
}

func (h *SearchHandler) transition(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search ID"})
	}

	var request searchController.TransitionRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	search, err := h.searchController.Transition(c.UserContext(), id, user, &request)
	if err != nil {
		return h.searchError(c, err, "Failed to apply stage transition")
	}

	return c.JSON(fiber.Map{"search": search})
}

func (h *SearchHandler) recordAgreement(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search ID"})
	}

	var request searchController.AgreementRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	search, err := h.searchController.RecordAgreement(c.UserContext(), id, user, &request)
	if err != nil {
		return h.searchError(c, err, "Failed to record agreement")
	}

	return c.JSON(fiber.Map{"search": search})
}

func (h *SearchHandler) updatePreferences(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search ID"})
	}

	var request searchController.PreferencesRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	search, err := h.searchController.UpdatePreferences(c.UserContext(), id, user, &request)
	if err != nil {
		return h.searchError(c, err, "Failed to update preferences")
	}

	return c.JSON(fiber.Map{"search": search})
}

func (h *SearchHandler) searchError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, searchController.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Housing search not found"})
	case errors.Is(err, searchController.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Search was modified concurrently, reload and retry",
		})
	case errors.Is(err, models.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}
