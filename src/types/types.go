package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// SeasonalPrice is one (month, nightly rate, Stripe price reference) tuple on a
// property. Month is the calendar month as a string token, "1" through "12".
type SeasonalPrice struct {
	Month   string  `json:"month"`
	Price   float64 `json:"price"`
	PriceID *string `json:"priceId,omitempty"`
}

type SeasonalPrices []SeasonalPrice

func (a SeasonalPrices) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *SeasonalPrices) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// BlockedRange marks a window the property cannot be rebooked. Both endpoints
// are inclusive: a date d is blocked iff From <= d <= To.
type BlockedRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type BlockedRanges []BlockedRange

func (a BlockedRanges) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *BlockedRanges) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type StringList []string

func (a StringList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "PENDING"
	BOOKING_CONFIRMED BookingStatus = "CONFIRMED"
	BOOKING_CANCELLED BookingStatus = "CANCELLED"
)

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

// Quantity accepts either a JSON number or a numeric string.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return fmt.Errorf("quantity must be an integer, got %v", v)
		}
		*q = Quantity(int(v))
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("quantity must be numeric, got %q", v)
		}
		*q = Quantity(n)
	default:
		return errors.New("quantity must be a number or numeric string")
	}
	return nil
}

type BookingData struct {
	CheckInDate  string `json:"checkInDate" binding:"required,villadate"`
	CheckOutDate string `json:"checkOutDate,omitempty" binding:"omitempty,villadate"`
	Guests       string `json:"guests,omitempty"`
	GuestName    string `json:"guestName,omitempty"`
	Email        string `json:"email,omitempty" binding:"omitempty,email"`
}

type CreateCheckoutSessionRequestBody struct {
	PropertyID  string      `json:"propertyId" binding:"required"`
	Quantity    Quantity    `json:"quantity" binding:"required"`
	SuccessURL  string      `json:"success_url" binding:"required,url"`
	CancelURL   string      `json:"cancel_url" binding:"required,url"`
	BookingData BookingData `json:"bookingData" binding:"required"`
}

type ContactRequestBody struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type RegisterRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Metadata map[string]string

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
