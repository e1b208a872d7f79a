package models

import (
	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	Email       string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	FirstName   string `gorm:"type:text;not null"             json:"firstName"`
	LastName    string `gorm:"type:text;not null"             json:"lastName"`
	DisplayName string `gorm:"type:text"                      json:"displayName"`
	IsAdmin     bool   `gorm:"type:bool;default:false;not null" json:"isAdmin"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if u.Email == "" {
		return gorm.ErrInvalidValue
	}
	if u.DisplayName == "" {
		u.DisplayName = u.FirstName + " " + u.LastName
	}
	return nil
}
