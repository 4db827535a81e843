package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"villas/src/common"
	"villas/src/config"
	"villas/src/db"
	"villas/src/lib"
	"villas/src/lib/mailer"
	"villas/src/models"
	"villas/src/types"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNoSeasonalPrice  = errors.New("no price configured for check-in month")
)

var validate = validator.New()

// Gateway calls go through swappable funcs the same way lib clients have
// NewXClient setters, so the fallback path is testable without the network.
var verifyPrice = lib.VerifyPrice
var createCheckoutSession = func(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	sc := lib.GetStripeClient()
	return sc.V1CheckoutSessions.Create(ctx, params)
}

// ParsePropertyID normalizes an API-supplied property id into the store's
// primary key. Empty, "undefined" and non-numeric ids are rejected.
func ParsePropertyID(s string) (uint, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "undefined" {
		return 0, ErrPropertyNotFound
	}
	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, ErrPropertyNotFound
	}
	return uint(id), nil
}

// ResolveSeasonalPrice returns the first seasonal entry whose month token
// matches the check-in month. Duplicate month entries are not validated
// anywhere, so first declared wins.
func ResolveSeasonalPrice(prices types.SeasonalPrices, checkIn time.Time) (*types.SeasonalPrice, error) {
	month := strconv.Itoa(int(checkIn.Month()))
	for i := range prices {
		if prices[i].Month == month {
			return &prices[i], nil
		}
	}
	return nil, ErrNoSeasonalPrice
}

// ConfirmationNumber generates the 6-digit code quoted in confirmation emails.
func ConfirmationNumber() string {
	return strconv.Itoa(rand.IntN(900000) + 100000)
}

// CreateStripeCheckout validates a booking request, resolves the seasonal
// price, and creates a hosted checkout session carrying the booking fields as
// metadata. When the stored price reference is absent or no longer resolvable
// the line item falls back to an inline price specification.
func CreateStripeCheckout(ctx context.Context, params *types.CreateCheckoutSessionRequestBody) (sessionId string, status int, err error) {
	propertyId, err := ParsePropertyID(params.PropertyID)
	if err != nil {
		return "", http.StatusNotFound, err
	}
	if params.Quantity <= 0 {
		return "", http.StatusBadRequest, errors.New("quantity must be a positive integer")
	}
	checkIn, err := common.ParseDate(params.BookingData.CheckInDate)
	if err != nil {
		return "", http.StatusBadRequest, fmt.Errorf("invalid checkInDate: %s", err.Error())
	}

	var property models.Property
	if err := db.GetDb().
		Model(&models.Property{}).
		Where("id = ?", propertyId).
		First(&property).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", http.StatusNotFound, ErrPropertyNotFound
		}
		return "", http.StatusInternalServerError, err
	}

	entry, err := ResolveSeasonalPrice(property.Prices, checkIn)
	if err != nil {
		return "", http.StatusBadRequest, err
	}

	quantity := int64(params.Quantity)
	priceRef := entry.PriceID
	if priceRef == nil {
		priceRef = property.PriceID
	}
	lineItem := &stripe.CheckoutSessionCreateLineItemParams{
		Quantity: stripe.Int64(quantity),
	}
	if priceRef != nil {
		if verr := verifyPrice(ctx, *priceRef); verr == nil {
			lineItem.Price = priceRef
		} else {
			log.Printf("Price reference %s rejected by gateway, falling back to inline price: %s\n", *priceRef, verr.Error())
		}
	}
	if lineItem.Price == nil {
		productName := property.Name
		if productName == "" {
			productName = "Villa stay"
		}
		lineItem.PriceData = &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency:   stripe.String("usd"),
			UnitAmount: stripe.Int64(int64(math.Round(entry.Price * 100))),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name: stripe.String(productName),
			},
		}
	}
	lineItems := []*stripe.CheckoutSessionCreateLineItemParams{lineItem}
	if cleaningFee := os.Getenv("CLEANING_FEE_PRICE_ID"); cleaningFee != "" {
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Price:    stripe.String(cleaningFee),
			Quantity: stripe.Int64(1),
		})
	}

	metadata := types.Metadata{
		"propertyId":   models.PublicID(property.ID),
		"checkInDate":  params.BookingData.CheckInDate,
		"checkOutDate": params.BookingData.CheckOutDate,
		"guests":       params.BookingData.Guests,
		"guestName":    params.BookingData.GuestName,
		"email":        params.BookingData.Email,
		"rawUnitPrice": strconv.FormatFloat(entry.Price, 'f', -1, 64),
	}

	createParams := stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String("payment"),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(fmt.Sprintf("%s?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)),
		CancelURL:          stripe.String(params.CancelURL),
		Metadata:           metadata,
	}
	checkoutSession, err := createCheckoutSession(ctx, &createParams)
	if err != nil {
		log.Printf("CreateStripeCheckout failed: %s\n", err.Error())
		return "", http.StatusInternalServerError, err
	}
	log.Printf("CheckoutSessionID: %s\n", checkoutSession.ID)
	return checkoutSession.ID, http.StatusOK, nil
}

// ConfirmBookingFromSession applies the effects of a completed checkout
// session: one transaction creating the CONFIRMED booking and appending the
// stay to the property's blocked-date list, then a confirmation email whose
// failure is logged but never fails the webhook.
func ConfirmBookingFromSession(cs *stripe.CheckoutSession, eventId string) (status int, err error) {
	md := cs.Metadata
	for _, k := range []string{"guestName", "email", "checkInDate", "checkOutDate", "propertyId"} {
		if md[k] == "" {
			return http.StatusBadRequest, fmt.Errorf("missing required metadata field %s", k)
		}
	}
	propertyId, err := ParsePropertyID(md["propertyId"])
	if err != nil {
		return http.StatusNotFound, err
	}
	checkIn, err := common.ParseDate(md["checkInDate"])
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid checkInDate: %s", err.Error())
	}
	checkOut, err := common.ParseDate(md["checkOutDate"])
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid checkOutDate: %s", err.Error())
	}

	guests, _ := strconv.Atoi(md["guests"])
	unitPrice, _ := strconv.ParseFloat(md["rawUnitPrice"], 64)
	confirmation := ConfirmationNumber()

	var property models.Property
	if err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Property{}).
			Where("id = ?", propertyId).
			First(&property).
			Error; err != nil {
			return err
		}
		booking := models.Booking{
			GuestName:         md["guestName"],
			Email:             md["email"],
			CheckInDate:       checkIn,
			CheckOutDate:      checkOut,
			Status:            types.BOOKING_CONFIRMED,
			Confirmation:      confirmation,
			Guests:            uint8(guests),
			UnitPrice:         unitPrice,
			PropertyID:        property.ID,
			CheckoutSessionId: &cs.ID,
			EventId:           &eventId,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		updated := append(property.Availability, types.BlockedRange{
			From: checkIn.Format(config.DATE_FORMAT),
			To:   checkOut.Format(config.DATE_FORMAT),
		})
		if err := tx.
			Model(&models.Property{}).
			Where("id = ?", property.ID).
			Update("availability", updated).
			Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return http.StatusNotFound, ErrPropertyNotFound
		}
		return http.StatusInternalServerError, err
	}

	if rd := lib.GetRedisClient(); rd != nil {
		if err := rd.Del(context.Background(), config.PROPERTIES_CACHE_KEY).Err(); err != nil {
			log.Printf("Error invalidating property cache: %s\n", err.Error())
		}
	}

	if err := mailer.SendBookingConfirmation(md["email"], &mailer.BookingDetails{
		GuestName:    md["guestName"],
		CheckInDate:  checkIn.Format(config.DISPLAY_DATE_FORMAT),
		CheckOutDate: checkOut.Format(config.DISPLAY_DATE_FORMAT),
		PropertyName: property.Name,
		Nights:       common.Nights(checkIn, checkOut),
		Confirmation: confirmation,
	}); err != nil {
		log.Printf("Error sending confirmation email: %s\n", err.Error())
	}

	return http.StatusOK, nil
}

const (
	maxContactName    = 200
	maxContactSubject = 300
	maxContactMessage = 5000
)

// NormalizeContact trims and validates a contact-form submission. The email
// address is lowercased so replies key off a stable value.
func NormalizeContact(body *types.ContactRequestBody) (*mailer.ContactDetails, error) {
	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	subject := strings.TrimSpace(body.Subject)
	message := strings.TrimSpace(body.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		return nil, errors.New("all fields are required")
	}
	if len(name) > maxContactName {
		return nil, fmt.Errorf("name must be at most %d characters", maxContactName)
	}
	if len(subject) > maxContactSubject {
		return nil, fmt.Errorf("subject must be at most %d characters", maxContactSubject)
	}
	if len(message) > maxContactMessage {
		return nil, fmt.Errorf("message must be at most %d characters", maxContactMessage)
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, errors.New("invalid email address")
	}
	return &mailer.ContactDetails{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}, nil
}
