package handlers

import (
	"errors"

	"homeward/internal/app"
	applicantController "homeward/internal/controllers/applicants"
	"homeward/internal/handlers/middleware"
	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApplicantHandler struct {
	Handler
	applicantController applicantController.ApplicantControllerInterface
}

func NewApplicantHandler(app app.App, router fiber.Router) *ApplicantHandler {
	log := logger.New("handlers").File("applicant_handler")
	return &ApplicantHandler{
		applicantController: app.Controllers.Applicant,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApplicantHandler) Register() {
	applicants := h.router.Group("/applicants", h.middleware.RequireAuth())
	applicants.Post("/", h.create)
	applicants.Get("/", h.list)
	applicants.Get("/:id", h.getByID)
	applicants.Put("/:id", h.update)

	// Board decisions are an admin action
	applicants.Post("/:id/board-decision", h.middleware.RequireAdmin(), h.setBoardDecision)
}

func (h *ApplicantHandler) create(c *fiber.Ctx) error {
	var request applicantController.CreateApplicantRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	applicant, err := h.applicantController.Create(c.UserContext(), &request)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, applicantController.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "An applicant with this email already exists",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create applicant",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"applicant": applicant})
}

func (h *ApplicantHandler) list(c *fiber.Ctx) error {
	applicants, err := h.applicantController.List(c.UserContext(), c.Query("status"))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list applicants",
		})
	}

	return c.JSON(fiber.Map{"applicants": applicants})
}

func (h *ApplicantHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID"})
	}

	applicant, err := h.applicantController.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, applicantController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Applicant not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get applicant",
		})
	}

	return c.JSON(fiber.Map{"applicant": applicant})
}

func (h *ApplicantHandler) update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID"})
	}

	var request applicantController.UpdateApplicantRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	applicant, err := h.applicantController.Update(c.UserContext(), id, &request)
	if err != nil {
		if errors.Is(err, applicantController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Applicant not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update applicant",
		})
	}

	return c.JSON(fiber.Map{"applicant": applicant})
}

func (h *ApplicantHandler) setBoardDecision(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID"})
	}

	var request applicantController.BoardDecisionRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	applicant, err := h.applicantController.SetBoardDecision(c.UserContext(), id, user, &request)
	if err != nil {
		switch {
		case errors.Is(err, applicantController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Applicant not found"})
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to record board decision",
			})
		}
	}

	return c.JSON(fiber.Map{"applicant": applicant})
}
