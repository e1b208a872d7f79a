package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BoardReviewStatus string

const (
	BoardReviewPending  BoardReviewStatus = "Pending"
	BoardReviewApproved BoardReviewStatus = "Approved"
	BoardReviewRejected BoardReviewStatus = "Rejected"
	BoardReviewDeferred BoardReviewStatus = "Deferred"
)

func ParseBoardReviewStatus(raw string) (BoardReviewStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return BoardReviewPending, nil
	case "approved":
		return BoardReviewApproved, nil
	case "rejected":
		return BoardReviewRejected, nil
	case "deferred":
		return BoardReviewDeferred, nil
	}
	return "", fmt.Errorf("%w: unknown board review status %q", ErrValidation, raw)
}

// ApplicantStatus is the applicant-level lifecycle before and outside any
// housing search. Approved applicants live through their searches instead.
type ApplicantStatus string

const (
	ApplicantSubmitted ApplicantStatus = "Submitted"
	ApplicantApproved  ApplicantStatus = "Approved"
	ApplicantRejected  ApplicantStatus = "Rejected"
)

type Child struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	School    string     `json:"school,omitempty"`
}

type Applicant struct {
	BaseUUIDModel
	HusbandFirstName string                      `gorm:"type:text"                      json:"husbandFirstName"`
	HusbandLastName  string                      `gorm:"type:text"                      json:"husbandLastName"`
	WifeFirstName    string                      `gorm:"type:text"                      json:"wifeFirstName"`
	WifeLastName     string                      `gorm:"type:text"                      json:"wifeLastName"`
	Email            string                      `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Phone            string                      `gorm:"type:text"                      json:"phone"`
	Address          string                      `gorm:"type:text"                      json:"address"`
	City             string                      `gorm:"type:text"                      json:"city"`
	State            string                      `gorm:"type:text"                      json:"state"`
	Zip              string                      `gorm:"type:text"                      json:"zip"`
	Children         datatypes.JSONSlice[Child]  `                                      json:"children"`
	Status           ApplicantStatus             `gorm:"type:text;not null;default:'Submitted'" json:"status"`
	BoardReview      BoardReviewStatus           `gorm:"type:text;not null;default:'Pending'"   json:"boardReview"`
	BoardReviewedAt  *time.Time                  `                                      json:"boardReviewedAt,omitempty"`
	BoardReviewedBy  *uuid.UUID                  `gorm:"type:uuid"                      json:"boardReviewedBy,omitempty"`
	Notes            string                      `gorm:"type:text"                      json:"notes"`
	Searches         []HousingSearch             `gorm:"foreignKey:ApplicantID"         json:"searches,omitempty"`
}

func (a *Applicant) BeforeCreate(tx *gorm.DB) error {
	if err := a.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if a.Email == "" {
		return gorm.ErrInvalidValue
	}
	if a.Status == "" {
		a.Status = ApplicantSubmitted
	}
	if a.BoardReview == "" {
		a.BoardReview = BoardReviewPending
	}
	return nil
}

// ActiveHousingSearch returns the applicant's single active search, if any
func (a *Applicant) ActiveHousingSearch() *HousingSearch {
	for i := range a.Searches {
		if a.Searches[i].IsActive {
			return &a.Searches[i]
		}
	}
	return nil
}

// FamilySurname is used in reminder titles and dashboard labels
func (a *Applicant) FamilySurname() string {
	if a.HusbandLastName != "" {
		return a.HusbandLastName
	}
	return a.WifeLastName
}

// SetBoardDecision records the board's review outcome. Only applicants still
// in the Submitted status may receive a decision; an Approved decision opens
// a housing search in AwaitingAgreements exactly once and is returned for
// persistence by the caller.
func (a *Applicant) SetBoardDecision(
	decision BoardReviewStatus,
	actorID uuid.UUID,
	now time.Time,
) (*HousingSearch, error) {
	if decision == BoardReviewPending {
		return nil, fmt.Errorf("%w: board decision cannot be set back to pending", ErrValidation)
	}
	if a.Status != ApplicantSubmitted {
		return nil, fmt.Errorf(
			"%w: board decision already settled for applicant in status %s",
			ErrValidation, a.Status,
		)
	}

	a.BoardReview = decision
	a.BoardReviewedAt = &now
	a.BoardReviewedBy = &actorID

	if decision != BoardReviewApproved {
		return nil, nil
	}

	a.Status = ApplicantApproved
	search := &HousingSearch{
		ApplicantID:      a.ID,
		Stage:            StageAwaitingAgreements,
		StageChangedDate: now,
		StageChangedBy:   &actorID,
		IsActive:         true,
	}
	return search, nil
}

// Reject moves a Submitted applicant to the terminal Rejected status. The
// board must already have recorded a Rejected decision.
func (a *Applicant) Reject() error {
	if a.Status != ApplicantSubmitted {
		return fmt.Errorf(
			"%w: cannot reject applicant in status %s",
			ErrValidation, a.Status,
		)
	}
	if a.BoardReview != BoardReviewRejected {
		return fmt.Errorf(
			"%w: board decision is %s, applicant can only be rejected after a rejected review",
			ErrValidation, a.BoardReview,
		)
	}
	a.Status = ApplicantRejected
	return nil
}
