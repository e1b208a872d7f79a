package applicantController

import (
	"context"
	"errors"
	"time"

	"homeward/internal/events"
	"homeward/internal/logger"
	. "homeward/internal/models"
	"homeward/internal/repositories"
	"homeward/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("applicant not found")
	ErrConflict = errors.New("applicant email already registered")
)

type ApplicantController struct {
	applicantRepo      repositories.ApplicantRepository
	searchRepo         repositories.HousingSearchRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	log                logger.Logger
}

type CreateApplicantRequest struct {
	HusbandFirstName string  `json:"husbandFirstName"`
	HusbandLastName  string  `json:"husbandLastName"`
	WifeFirstName    string  `json:"wifeFirstName"`
	WifeLastName     string  `json:"wifeLastName"`
	Email            string  `json:"email"            validate:"required"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zip              string  `json:"zip"`
	Children         []Child `json:"children,omitempty"`
	Notes            string  `json:"notes"`
}

type UpdateApplicantRequest struct {
	HusbandFirstName *string  `json:"husbandFirstName,omitempty"`
	HusbandLastName  *string  `json:"husbandLastName,omitempty"`
	WifeFirstName    *string  `json:"wifeFirstName,omitempty"`
	WifeLastName     *string  `json:"wifeLastName,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	Address          *string  `json:"address,omitempty"`
	City             *string  `json:"city,omitempty"`
	State            *string  `json:"state,omitempty"`
	Zip              *string  `json:"zip,omitempty"`
	Children         *[]Child `json:"children,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

type BoardDecisionRequest struct {
	Decision string `json:"decision" validate:"required"`
}

type ApplicantControllerInterface interface {
	Create(ctx context.Context, request *CreateApplicantRequest) (*Applicant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error)
	List(ctx context.Context, status string) ([]Applicant, error)
	Update(ctx context.Context, id uuid.UUID, request *UpdateApplicantRequest) (*Applicant, error)
	SetBoardDecision(
		ctx context.Context,
		id uuid.UUID,
		actor *User,
		request *BoardDecisionRequest,
	) (*Applicant, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
) ApplicantControllerInterface {
	return &ApplicantController{
		applicantRepo:      repos.Applicant,
		searchRepo:         repos.HousingSearch,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		log:                logger.New("applicantController"),
	}
}

func (c *ApplicantController) Create(
	ctx context.Context,
	request *CreateApplicantRequest,
) (*Applicant, error) {
	log := c.log.Function("Create")

	if request.Email == "" {
		return nil, ErrValidation
	}

	if existing, err := c.applicantRepo.GetByEmail(ctx, request.Email); err == nil && existing != nil {
		return nil, ErrConflict
	}

	applicant := &Applicant{
		HusbandFirstName: request.HusbandFirstName,
		HusbandLastName:  request.HusbandLastName,
		WifeFirstName:    request.WifeFirstName,
		WifeLastName:     request.WifeLastName,
		Email:            request.Email,
		Phone:            request.Phone,
		Address:          request.Address,
		City:             request.City,
		State:            request.State,
		Zip:              request.Zip,
		Children:         request.Children,
		Notes:            request.Notes,
		Status:           ApplicantSubmitted,
		BoardReview:      BoardReviewPending,
	}

	created, err := c.applicantRepo.Create(ctx, applicant)
	if err != nil {
		return nil, log.Err("failed to create applicant", err, "email", request.Email)
	}

	log.Info("Applicant created", "applicantID", created.ID)
	return created, nil
}

func (c *ApplicantController) GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error) {
	applicant, err := c.applicantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return applicant, nil
}

func (c *ApplicantController) List(ctx context.Context, status string) ([]Applicant, error) {
	var filter *ApplicantStatus
	if status != "" {
		parsed := ApplicantStatus(status)
		switch parsed {
		case ApplicantSubmitted, ApplicantApproved, ApplicantRejected:
			filter = &parsed
		default:
			return nil, ErrValidation
		}
	}
	return c.applicantRepo.List(ctx, filter)
}

func (c *ApplicantController) Update(
	ctx context.Context,
	id uuid.UUID,
	request *UpdateApplicantRequest,
) (*Applicant, error) {
	log := c.log.Function("Update")

	applicant, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&applicant.HusbandFirstName, request.HusbandFirstName)
	applyString(&applicant.HusbandLastName, request.HusbandLastName)
	applyString(&applicant.WifeFirstName, request.WifeFirstName)
	applyString(&applicant.WifeLastName, request.WifeLastName)
	applyString(&applicant.Phone, request.Phone)
	applyString(&applicant.Address, request.Address)
	applyString(&applicant.City, request.City)
	applyString(&applicant.State, request.State)
	applyString(&applicant.Zip, request.Zip)
	applyString(&applicant.Notes, request.Notes)
	if request.Children != nil {
		applicant.Children = *request.Children
	}

	if err := c.applicantRepo.Update(ctx, applicant); err != nil {
		return nil, log.Err("failed to update applicant", err, "applicantID", id)
	}

	return applicant, nil
}

// SetBoardDecision records the board's outcome. An approval opens the
// applicant's housing search; both records persist in one transaction.
func (c *ApplicantController) SetBoardDecision(
	ctx context.Context,
	id uuid.UUID,
	actor *User,
	request *BoardDecisionRequest,
) (*Applicant, error) {
	log := c.log.Function("SetBoardDecision")

	decision, err := ParseBoardReviewStatus(request.Decision)
	if err != nil {
		return nil, err
	}

	applicant, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	search, err := applicant.SetBoardDecision(decision, actor.ID, now)
	if err != nil {
		return nil, err
	}
	if decision == BoardReviewRejected {
		if err := applicant.Reject(); err != nil {
			return nil, err
		}
	}

	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := c.applicantRepo.Update(txCtx, applicant); err != nil {
			return err
		}
		if search != nil {
			if _, err := c.searchRepo.Create(txCtx, search); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, log.Err("failed to persist board decision", err, "applicantID", id)
	}

	log.Info("Board decision recorded",
		"applicantID", id, "decision", decision, "searchOpened", search != nil)
	return applicant, nil
}
