package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderPriority string

const (
	PriorityLow    ReminderPriority = "Low"
	PriorityNormal ReminderPriority = "Normal"
	PriorityHigh   ReminderPriority = "High"
)

// EntityType identifies the record a reminder is linked to
type EntityType string

const (
	EntityApplicant     EntityType = "Applicant"
	EntityHousingSearch EntityType = "HousingSearch"
	EntityProperty      EntityType = "Property"
	EntityPropertyMatch EntityType = "PropertyMatch"
	EntityShowing       EntityType = "Showing"
)

type Reminder struct {
	BaseUUIDModel
	Title       string           `gorm:"type:text;not null"                 json:"title"`
	DueDate     time.Time        `gorm:"not null;index"                     json:"dueDate"`
	EntityType  EntityType       `gorm:"type:text;not null"                 json:"entityType"`
	EntityID    uuid.UUID        `gorm:"type:uuid;not null;index"           json:"entityId"`
	Priority    ReminderPriority `gorm:"type:text;not null;default:'Normal'" json:"priority"`
	Notes       string           `gorm:"type:text"                          json:"notes"`
	CreatedBy   *uuid.UUID       `gorm:"type:uuid"                          json:"createdBy,omitempty"`
	CompletedAt *time.Time       `                                          json:"completedAt,omitempty"`
	CompletedBy *uuid.UUID       `gorm:"type:uuid"                          json:"completedBy,omitempty"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if err := r.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if r.Title == "" || r.DueDate.IsZero() {
		return gorm.ErrInvalidValue
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
	return nil
}
