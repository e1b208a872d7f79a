package models

import (
	"fmt"
	"strings"
	"time"

	"homeward/internal/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stage is the housing-search lifecycle phase. Values are stored canonically;
// ParseStage accepts any casing.
type Stage string

const (
	StageAwaitingAgreements Stage = "AwaitingAgreements"
	StageSearching          Stage = "Searching"
	StageUnderContract      Stage = "UnderContract"
	StageClosed             Stage = "Closed"
	StageMovedIn            Stage = "MovedIn"
	StagePaused             Stage = "Paused"
)

func ParseStage(raw string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "awaitingagreements":
		return StageAwaitingAgreements, nil
	case "searching":
		return StageSearching, nil
	case "undercontract":
		return StageUnderContract, nil
	case "closed":
		return StageClosed, nil
	case "movedin":
		return StageMovedIn, nil
	case "paused":
		return StagePaused, nil
	}
	return "", fmt.Errorf("%w: unknown stage %q", ErrValidation, raw)
}

type MoveTimeline string

const (
	TimelineImmediate     MoveTimeline = "Immediate"
	TimelineWithinSixMo   MoveTimeline = "WithinSixMonths"
	TimelineWithinYear    MoveTimeline = "WithinYear"
	TimelineFlexible      MoveTimeline = "Flexible"
)

type AgreementType string

const (
	AgreementBroker         AgreementType = "BrokerAgreement"
	AgreementCommunityRules AgreementType = "CommunityRules"
)

// VenuePreference captures shul/venue proximity wishes. Distance evaluation
// is handled by an external walking-distance service, not the match scorer.
type VenuePreference struct {
	VenueIDs       []uuid.UUID `json:"venueIds,omitempty"`
	MaxWalkMiles   *float64    `json:"maxWalkMiles,omitempty"`
	MaxWalkMinutes *int        `json:"maxWalkMinutes,omitempty"`
	AnyAcceptable  bool        `json:"anyAcceptable"`
}

type HousingSearch struct {
	BaseUUIDModel
	ApplicantID      uuid.UUID  `gorm:"type:uuid;not null;index"                  json:"applicantId"`
	Applicant        *Applicant `gorm:"foreignKey:ApplicantID"                    json:"applicant,omitempty"`
	Stage            Stage      `gorm:"type:text;not null;default:'AwaitingAgreements'" json:"stage"`
	StageChangedDate time.Time  `                                                 json:"stageChangedDate"`
	StageChangedBy   *uuid.UUID `gorm:"type:uuid"                                 json:"stageChangedBy,omitempty"`
	// Version guards against lost updates between racing stage changes
	Version int `gorm:"not null;default:1" json:"version"`

	// Preferences; nil means "no preference", never zero
	Budget           *decimal.Decimal                             `gorm:"type:decimal(12,2)" json:"budget,omitempty"`
	MinBedrooms      *int                                         `gorm:"type:integer"       json:"minBedrooms,omitempty"`
	MinBathrooms     *decimal.Decimal                             `gorm:"type:decimal(4,1)"  json:"minBathrooms,omitempty"`
	RequiredFeatures datatypes.JSONSlice[string]                  `                          json:"requiredFeatures,omitempty"`
	MoveTimeline     *MoveTimeline                                `gorm:"type:text"          json:"moveTimeline,omitempty"`
	VenuePreference  *datatypes.JSONType[VenuePreference]         `                          json:"venuePreference,omitempty"`

	// Current contract sub-record; populated only while UnderContract/Closed
	ContractPropertyID  *uuid.UUID       `gorm:"type:uuid"          json:"contractPropertyId,omitempty"`
	ContractPrice       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"contractPrice,omitempty"`
	ContractDate        *time.Time       `                          json:"contractDate,omitempty"`
	ExpectedClosingDate *time.Time       `                          json:"expectedClosingDate,omitempty"`
	ActualClosingDate   *time.Time       `                          json:"actualClosingDate,omitempty"`
	MovedInDate         *time.Time       `                          json:"movedInDate,omitempty"`
	FailedContractCount int              `gorm:"not null;default:0" json:"failedContractCount"`

	BrokerAgreementSignedAt *time.Time `json:"brokerAgreementSignedAt,omitempty"`
	BrokerAgreementURL      *string    `gorm:"type:text" json:"brokerAgreementUrl,omitempty"`
	CommunityRulesSignedAt  *time.Time `json:"communityRulesSignedAt,omitempty"`
	CommunityRulesURL       *string    `gorm:"type:text" json:"communityRulesUrl,omitempty"`

	PauseReason string `gorm:"type:text" json:"pauseReason,omitempty"`
	Notes       string `gorm:"type:text" json:"notes"`
	IsActive    bool   `gorm:"type:bool;not null;default:true" json:"isActive"`

	Matches []PropertyMatch `gorm:"foreignKey:HousingSearchID" json:"matches,omitempty"`
}

func (hs *HousingSearch) BeforeCreate(tx *gorm.DB) error {
	if err := hs.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if hs.ApplicantID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if hs.Stage == "" {
		hs.Stage = StageAwaitingAgreements
	}
	if hs.StageChangedDate.IsZero() {
		hs.StageChangedDate = time.Now().UTC()
	}
	return nil
}

// TransitionPayload carries transition-specific data. Missing required fields
// fail the guard for the requested target stage.
type TransitionPayload struct {
	PropertyID          *uuid.UUID       `json:"propertyId,omitempty"`
	ContractPrice       *decimal.Decimal `json:"contractPrice,omitempty"`
	ContractDate        *time.Time       `json:"contractDate,omitempty"`
	ExpectedClosingDate *time.Time       `json:"expectedClosingDate,omitempty"`
	ActualClosingDate   *time.Time       `json:"actualClosingDate,omitempty"`
	MoveInDate          *time.Time       `json:"moveInDate,omitempty"`
	Reason              string           `json:"reason,omitempty"`
}

// RecordAgreementSigned stores one of the two pre-search agreements. Both must
// be on file before the search may enter Searching.
func (hs *HousingSearch) RecordAgreementSigned(
	kind AgreementType,
	documentURL string,
	signedAt time.Time,
) error {
	if documentURL == "" {
		return fmt.Errorf("%w: agreement document URL is required", ErrValidation)
	}

	switch kind {
	case AgreementBroker:
		hs.BrokerAgreementSignedAt = &signedAt
		hs.BrokerAgreementURL = &documentURL
	case AgreementCommunityRules:
		hs.CommunityRulesSignedAt = &signedAt
		hs.CommunityRulesURL = &documentURL
	default:
		return fmt.Errorf("%w: unknown agreement type %q", ErrValidation, kind)
	}
	return nil
}

func (hs *HousingSearch) agreementsSigned() bool {
	return hs.BrokerAgreementSignedAt != nil && hs.CommunityRulesSignedAt != nil
}

// ApplyTransition validates and applies a stage change, returning the previous
// stage. The receiver is untouched when an error is returned, so a rejected
// guard never leaves a partial state change behind.
func (hs *HousingSearch) ApplyTransition(
	target Stage,
	payload TransitionPayload,
	actorID uuid.UUID,
	now time.Time,
) (Stage, error) {
	from := hs.Stage

	switch {
	case from == StageAwaitingAgreements && target == StageSearching:
		if !hs.agreementsSigned() {
			return from, fmt.Errorf(
				"%w: both broker agreement and community rules must be signed before searching",
				ErrValidation,
			)
		}

	case from == StageSearching && target == StagePaused:
		hs.PauseReason = payload.Reason

	case from == StagePaused && target == StageSearching:
		hs.PauseReason = ""

	case from == StageSearching && target == StageUnderContract:
		if payload.ContractPrice == nil || !payload.ContractPrice.IsPositive() {
			return from, fmt.Errorf("%w: contract price must be greater than zero", ErrValidation)
		}
		hs.ContractPropertyID = payload.PropertyID
		hs.ContractPrice = payload.ContractPrice
		contractDate := now
		if payload.ContractDate != nil {
			contractDate = *payload.ContractDate
		}
		hs.ContractDate = &contractDate
		hs.ExpectedClosingDate = payload.ExpectedClosingDate

	case (from == StageUnderContract || from == StageClosed) && target == StageSearching:
		// Contract fell through; a recorded closing can still be reversed
		// before move-in
		hs.FailedContractCount++
		hs.clearContract()

	case from == StageUnderContract && target == StageClosed:
		if payload.ActualClosingDate == nil {
			return from, fmt.Errorf("%w: actual closing date is required to close", ErrValidation)
		}
		hs.ActualClosingDate = payload.ActualClosingDate

	case from == StageClosed && target == StageMovedIn:
		if payload.MoveInDate == nil {
			return from, fmt.Errorf("%w: move-in date is required", ErrValidation)
		}
		hs.MovedInDate = payload.MoveInDate
		hs.IsActive = false

	default:
		return from, fmt.Errorf(
			"%w: invalid stage transition from %s to %s",
			ErrValidation, from, target,
		)
	}

	hs.Stage = target
	hs.StageChangedDate = now
	hs.StageChangedBy = &actorID
	return from, nil
}

func (hs *HousingSearch) clearContract() {
	hs.ContractPropertyID = nil
	hs.ContractPrice = nil
	hs.ContractDate = nil
	hs.ExpectedClosingDate = nil
	hs.ActualClosingDate = nil
}

// MatchPreferences projects the stored preference columns into the scoring
// engine's input value object.
func (hs *HousingSearch) MatchPreferences() matching.Preferences {
	return matching.Preferences{
		Budget:           hs.Budget,
		MinBedrooms:      hs.MinBedrooms,
		MinBathrooms:     hs.MinBathrooms,
		RequiredFeatures: hs.RequiredFeatures,
	}
}
