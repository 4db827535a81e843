package models

import (
	"strconv"
	"time"
	"villas/src/types"
)

type Booking struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	GuestName    string              `json:"guest_name,omitempty"`
	Email        string              `json:"email,omitempty"`
	CheckInDate  time.Time           `json:"check_in_date,omitempty"`
	CheckOutDate time.Time           `json:"check_out_date,omitempty"`
	Status       types.BookingStatus `gorm:"default:'PENDING'" json:"status,omitempty"`
	Confirmation string              `json:"confirmation,omitempty"`
	Guests       uint8               `json:"guests,omitempty"`
	UnitPrice    float64             `json:"unit_price,omitempty"`
	PropertyID   uint                `json:"property_id,omitempty"`

	// Stripe references recorded at confirmation time.
	CheckoutSessionId *string `json:"checkout_session_id,omitempty"`
	EventId           *string `json:"event_id,omitempty"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	types.Timestamps
}

// PublicID renders a store primary key in the canonical string form used at the
// API boundary.
func PublicID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
