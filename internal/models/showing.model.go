package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShowingStatus string

const (
	ShowingRequested ShowingStatus = "Requested"
	ShowingConfirmed ShowingStatus = "Confirmed"
	ShowingCompleted ShowingStatus = "Completed"
	ShowingCancelled ShowingStatus = "Cancelled"
)

func ParseShowingStatus(raw string) (ShowingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "requested":
		return ShowingRequested, nil
	case "confirmed":
		return ShowingConfirmed, nil
	case "completed":
		return ShowingCompleted, nil
	case "cancelled":
		return ShowingCancelled, nil
	}
	return "", fmt.Errorf("%w: unknown showing status %q", ErrValidation, raw)
}

// Showing schedules a property visit against an existing match
type Showing struct {
	BaseUUIDModel
	PropertyMatchID uuid.UUID      `gorm:"type:uuid;not null;index" json:"propertyMatchId"`
	PropertyMatch   *PropertyMatch `gorm:"foreignKey:PropertyMatchID" json:"propertyMatch,omitempty"`
	ScheduledAt     time.Time      `gorm:"not null"                 json:"scheduledAt"`
	Status          ShowingStatus  `gorm:"type:text;not null;default:'Requested'" json:"status"`
	Notes           string         `gorm:"type:text"                json:"notes"`
	CreatedBy       *uuid.UUID     `gorm:"type:uuid"                json:"createdBy,omitempty"`
}

func (s *Showing) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if s.PropertyMatchID == uuid.Nil || s.ScheduledAt.IsZero() {
		return gorm.ErrInvalidValue
	}
	if s.Status == "" {
		s.Status = ShowingRequested
	}
	return nil
}
