package models

import (
	"fmt"
	"strings"

	"homeward/internal/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PropertyStatus string

const (
	PropertyActive        PropertyStatus = "Active"
	PropertyUnderContract PropertyStatus = "UnderContract"
	PropertySold          PropertyStatus = "Sold"
	PropertyOffMarket     PropertyStatus = "OffMarket"
)

func ParsePropertyStatus(raw string) (PropertyStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return PropertyActive, nil
	case "undercontract":
		return PropertyUnderContract, nil
	case "sold":
		return PropertySold, nil
	case "offmarket":
		return PropertyOffMarket, nil
	}
	return "", fmt.Errorf("%w: unknown property status %q", ErrValidation, raw)
}

type Property struct {
	BaseUUIDModel
	Address     string                      `gorm:"type:text;not null"     json:"address"`
	City        string                      `gorm:"type:text;not null;index" json:"city"`
	State       string                      `gorm:"type:text"              json:"state"`
	Zip         string                      `gorm:"type:text"              json:"zip"`
	Price       decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	Bedrooms    int                         `gorm:"type:integer;not null"  json:"bedrooms"`
	Bathrooms   decimal.Decimal             `gorm:"type:decimal(4,1);not null"  json:"bathrooms"`
	SquareFeet  *int                        `gorm:"type:integer"           json:"squareFeet,omitempty"`
	LotAcres    *decimal.Decimal            `gorm:"type:decimal(8,3)"      json:"lotAcres,omitempty"`
	YearBuilt   *int                        `gorm:"type:integer"           json:"yearBuilt,omitempty"`
	AnnualTaxes *decimal.Decimal            `gorm:"type:decimal(10,2)"     json:"annualTaxes,omitempty"`
	Features    datatypes.JSONSlice[string] `                              json:"features,omitempty"`
	Status      PropertyStatus              `gorm:"type:text;not null;default:'Active';index" json:"status"`
	// Photos keeps display order
	Photos   datatypes.JSONSlice[string] `           json:"photos,omitempty"`
	ListedBy *uuid.UUID                  `gorm:"type:uuid" json:"listedBy,omitempty"`
	Notes    string                      `gorm:"type:text" json:"notes"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.Address == "" || p.City == "" {
		return gorm.ErrInvalidValue
	}
	if !p.Price.IsPositive() {
		return gorm.ErrInvalidValue
	}
	if p.Status == "" {
		p.Status = PropertyActive
	}
	return nil
}

// ToListing projects the entity into the scoring engine's input value object
func (p *Property) ToListing() matching.Listing {
	return matching.Listing{
		Price:     p.Price,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		City:      p.City,
		Features:  p.Features,
	}
}
