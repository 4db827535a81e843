package models

import (
	"villas/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Property struct {
	ID          uint    `gorm:"primarykey" json:"-"`
	PublicID    string  `gorm:"-" json:"id"`
	Name        string  `json:"name"`
	Slug        string  `gorm:"uniqueIndex" json:"slug,omitempty"`
	Address     string  `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
	Bedrooms    uint8   `json:"bedrooms,omitempty"`
	Bathrooms   uint8   `json:"bathrooms,omitempty"`
	Guests      uint8   `json:"guests,omitempty"`

	Features     types.StringList     `gorm:"type:jsonb;default:'[]'" json:"features,omitempty"`
	Prices       types.SeasonalPrices `gorm:"type:jsonb;default:'[]'" json:"prices,omitempty"`
	Availability types.BlockedRanges  `gorm:"type:jsonb;default:'[]'" json:"availability"`

	// Base Stripe price reference, used when a seasonal entry carries none.
	PriceID *string `json:"priceId,omitempty"`

	Bookings []*Booking `json:"bookings,omitempty"`

	types.Timestamps
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

// AfterFind normalizes the store identifier into the single string id the API
// exposes. Nothing past the models layer sees the raw primary key column.
func (p *Property) AfterFind(tx *gorm.DB) error {
	p.PublicID = PublicID(p.ID)
	return nil
}
