package handlers

import (
	"errors"

	"homeward/internal/app"
	propertyController "homeward/internal/controllers/properties"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PropertyHandler struct {
	Handler
	propertyController propertyController.PropertyControllerInterface
}

func NewPropertyHandler(app app.App, router fiber.Router) *PropertyHandler {
	log := logger.New("handlers").File("property_handler")
	return &PropertyHandler{
		propertyController: app.Controllers.Property,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PropertyHandler) Register() {
	properties := h.router.Group("/properties", h.middleware.RequireAuth())
	properties.Post("/", h.create)
	properties.Get("/", h.list)
	properties.Get("/:id", h.getByID)
	properties.Put("/:id", h.update)
}

func (h *PropertyHandler) create(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	var request propertyController.CreatePropertyRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := h.propertyController.Create(c.UserContext(), user, &request)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create property",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"property": property})
}

func (h *PropertyHandler) list(c *fiber.Ctx) error {
	properties, err := h.propertyController.List(c.UserContext(), c.Query("status"))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list properties",
		})
	}

	return c.JSON(fiber.Map{"properties": properties})
}

func (h *PropertyHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid property ID"})
	}

	property, err := h.propertyController.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, propertyController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get property",
		})
	}

	return c.JSON(fiber.Map{"property": property})
}

func (h *PropertyHandler) update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid property ID"})
	}

	var request propertyController.UpdatePropertyRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := h.propertyController.Update(c.UserContext(), id, &request)
	if err != nil {
		switch {
		case errors.Is(err, propertyController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update property",
			})
		}
	}

	return c.JSON(fiber.Map{"property": property})
}
