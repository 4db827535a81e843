package models

import "villas/src/types"

type Account struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	Name         string `json:"name,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'guest'" json:"role,omitempty"`

	types.Timestamps
}
