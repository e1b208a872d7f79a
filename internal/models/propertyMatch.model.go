package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchStatus tracks applicant engagement with a scored pairing. The order
// below is the only forward path; ApplicantRejected is a terminal side-branch
// reachable from any non-terminal status.
type MatchStatus string

const (
	MatchIdentified          MatchStatus = "MatchIdentified"
	MatchShowingRequested    MatchStatus = "ShowingRequested"
	MatchApplicantInterested MatchStatus = "ApplicantInterested"
	MatchOfferMade           MatchStatus = "OfferMade"
	MatchApplicantRejected   MatchStatus = "ApplicantRejected"
)

var matchStatusOrder = map[MatchStatus]int{
	MatchIdentified:          0,
	MatchShowingRequested:    1,
	MatchApplicantInterested: 2,
	MatchOfferMade:           3,
}

func ParseMatchStatus(raw string) (MatchStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "matchidentified":
		return MatchIdentified, nil
	case "showingrequested":
		return MatchShowingRequested, nil
	case "applicantinterested":
		return MatchApplicantInterested, nil
	case "offermade":
		return MatchOfferMade, nil
	case "applicantrejected":
		return MatchApplicantRejected, nil
	}
	return "", fmt.Errorf("%w: unknown match status %q", ErrValidation, raw)
}

type PropertyMatch struct {
	BaseUUIDModel
	HousingSearchID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair" json:"housingSearchId"`
	HousingSearch   *HousingSearch `gorm:"foreignKey:HousingSearchID"                    json:"housingSearch,omitempty"`
	PropertyID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair" json:"propertyId"`
	Property        *Property      `gorm:"foreignKey:PropertyID"                         json:"property,omitempty"`

	MatchScore int `gorm:"type:integer;not null" json:"matchScore"`
	// MatchDetails is the serialized score breakdown for UI explainability
	MatchDetails datatypes.JSON `json:"matchDetails,omitempty"`

	Status        MatchStatus `gorm:"type:text;not null;default:'MatchIdentified'" json:"status"`
	IsAutoMatched bool        `gorm:"type:bool;not null;default:false"             json:"isAutoMatched"`
	CreatedBy     *uuid.UUID  `gorm:"type:uuid"                                    json:"createdBy,omitempty"`
	Notes         string      `gorm:"type:text"                                    json:"notes"`

	Showings []Showing `gorm:"foreignKey:PropertyMatchID" json:"showings,omitempty"`
}

func (pm *PropertyMatch) BeforeCreate(tx *gorm.DB) error {
	if err := pm.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if pm.HousingSearchID == uuid.Nil || pm.PropertyID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if pm.MatchScore < 0 || pm.MatchScore > 100 {
		return gorm.ErrInvalidValue
	}
	if pm.Status == "" {
		pm.Status = MatchIdentified
	}
	return nil
}

// AdvanceStatus moves engagement forward; backwards moves and changes off a
// terminal status are rejected.
func (pm *PropertyMatch) AdvanceStatus(target MatchStatus) error {
	if pm.Status == MatchApplicantRejected || pm.Status == MatchOfferMade {
		return fmt.Errorf(
			"%w: match status %s is terminal",
			ErrValidation, pm.Status,
		)
	}

	if target == MatchApplicantRejected {
		pm.Status = target
		return nil
	}

	currentRank, ok := matchStatusOrder[pm.Status]
	targetRank, ok2 := matchStatusOrder[target]
	if !ok || !ok2 || targetRank <= currentRank {
		return fmt.Errorf(
			"%w: cannot move match status from %s to %s",
			ErrValidation, pm.Status, target,
		)
	}

	pm.Status = target
	return nil
}

// Engaged reports whether the applicant has progressed past the initial
// identification; engaged matches survive re-scoring below the threshold.
func (pm *PropertyMatch) Engaged() bool {
	return pm.Status != MatchIdentified
}
