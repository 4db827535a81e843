package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
	"villas/src/controllers"
	"villas/src/db"
	"villas/src/lib"
	"villas/src/middlewares"
	"villas/src/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

const whsecret = "whsec_test_secret"

type TestSuite struct {
	suite.Suite
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
	os.Setenv("STRIPE_WEBHOOK_SECRET", whsecret)
}

func (s *TestSuite) TearDownSuite() {
	os.Unsetenv("STRIPE_WEBHOOK_SECRET")
}

// signStripePayload computes the signature header the gateway attaches to
// webhook deliveries: an HMAC-SHA256 over "{timestamp}.{payload}".
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, string(payload))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedEvent(eventId string, metadata map[string]string) []byte {
	evt := map[string]any{
		"id":          eventId,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "cs_test_1",
				"object":   "checkout.session",
				"metadata": metadata,
			},
		},
	}
	payload, _ := json.Marshal(&evt)
	return payload
}

func bookingMetadata() map[string]string {
	return map[string]string{
		"propertyId":   "1",
		"checkInDate":  "2026-06-10",
		"checkOutDate": "2026-06-14",
		"guests":       "4",
		"guestName":    "Jane Tester",
		"email":        "jane@example.com",
		"rawUnitPrice": "300",
	}
}

func propertyRow(prices string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "prices", "availability"}).
		AddRow(1, "Villa Gjovana", []byte(prices), []byte(`[]`))
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.NotEmpty(s.T(), w.Header().Get("X-Request-Id"))
	assert.Equal(s.T(), "DENY", w.Header().Get("X-Frame-Options"))
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestPropertiesListCache() {
	cached := `[{"id":"1","name":"Villa Gjovana"}]`
	rdb, rmock := redismock.NewClientMock()
	lib.NewRedisClient(rdb)
	rmock.ExpectGet("properties:list").SetVal(cached)

	router := setupRouter()
	propertyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/properties", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), cached, string(body))
	assert.Nil(s.T(), rmock.ExpectationsWereMet())
}

func (s *TestSuite) TestPropertyNotFound() {
	_, mock := db.GetMockDB()
	mock.ExpectQuery(`SELECT (.+) FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := setupRouter()
	propertyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/properties/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/properties/undefined", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code, "a literal undefined id is treated as missing")
}

func (s *TestSuite) TestPropertyQuote() {
	os.Setenv("CLEANING_FEE_AMOUNT", "150")
	defer os.Unsetenv("CLEANING_FEE_AMOUNT")

	_, mock := db.GetMockDB()
	mock.ExpectQuery(`SELECT (.+) FROM "properties"`).
		WillReturnRows(propertyRow(`[{"month":"6","price":300}]`))

	router := setupRouter()
	propertyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/properties/1/quote?check_in=2026-06-10&check_out=2026-06-14", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, _ := io.ReadAll(w.Body)
	sjson := string(body)
	assert.Equal(s.T(), int64(4), gjson.Get(sjson, "quote.nights").Int())
	assert.Equal(s.T(), 1200.0, gjson.Get(sjson, "quote.subtotal").Float())
	assert.Equal(s.T(), 1350.0, gjson.Get(sjson, "quote.total").Float())
	assert.True(s.T(), gjson.Get(sjson, "available").Bool())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/properties/1/quote?check_in=2026-06-14&check_out=2026-06-10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code, "inverted ranges are rejected before the store is hit")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/properties/1/quote?check_in=garbage&check_out=2026-06-14", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Nil(s.T(), mock.ExpectationsWereMet(), "rejected quotes must not query the store")
}

func (s *TestSuite) TestCheckoutSessionRoute() {
	router := setupRouter()
	checkoutRoutes(router)

	post := func(body map[string]any) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		sbody, _ := json.Marshal(&body)
		req, _ := http.NewRequest("POST", "/api/v1/create-checkout-session", strings.NewReader(string(sbody)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	valid := func() map[string]any {
		return map[string]any{
			"propertyId":  "1",
			"quantity":    "3",
			"success_url": "https://example.com/success",
			"cancel_url":  "https://example.com/cancel",
			"bookingData": map[string]any{
				"checkInDate":  "2026-06-10",
				"checkOutDate": "2026-06-13",
				"guests":       "4",
				"guestName":    "Jane Tester",
				"email":        "jane@example.com",
			},
		}
	}

	s.Run("Should return 400 when required fields are missing", func() {
		body := valid()
		delete(body, "propertyId")
		w := post(body)
		assert.Equal(s.T(), 400, w.Code)

		body = valid()
		body["quantity"] = "abc"
		w = post(body)
		assert.Equal(s.T(), 400, w.Code)

		body = valid()
		body["bookingData"].(map[string]any)["checkInDate"] = "10/06/2026"
		w = post(body)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 404 for an undefined property id", func() {
		body := valid()
		body["propertyId"] = "undefined"
		w := post(body)
		assert.Equal(s.T(), 404, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Equal(s.T(), "property not found", gjson.Get(string(rbytes), "error").String())
	})

	s.Run("Should return 404 when the property does not exist", func() {
		_, mock := db.GetMockDB()
		mock.ExpectQuery(`SELECT (.+) FROM "properties"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := post(valid())
		assert.Equal(s.T(), 404, w.Code)
	})

	s.Run("Should return 400 when no price covers the check-in month", func() {
		_, mock := db.GetMockDB()
		mock.ExpectQuery(`SELECT (.+) FROM "properties"`).
			WillReturnRows(propertyRow(`[{"month":"12","price":180}]`))

		w := post(valid())
		assert.Equal(s.T(), 400, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(rbytes), "error").String()
		assert.Contains(s.T(), errMsg, "no price configured")
	})
}

func (s *TestSuite) TestStripeWebhook() {
	router := setupRouter()
	stripeWebhookRoute(router)

	deliver := func(payload []byte, signature string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/stripe-webhook", strings.NewReader(string(payload)))
		req.Header.Set("Stripe-Signature", signature)
		router.ServeHTTP(w, req)
		return w
	}

	s.Run("Should reject an invalid signature", func() {
		payload := checkoutCompletedEvent("evt_badsig", bookingMetadata())
		w := deliver(payload, signStripePayload(payload, "whsec_wrong_secret"))

		assert.Equal(s.T(), 400, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "Webhook Error", gjson.Get(string(rbytes), "error").String())
	})

	s.Run("Should acknowledge a duplicate delivery without confirming twice", func() {
		rdb, rmock := redismock.NewClientMock()
		lib.NewRedisClient(rdb)
		rmock.ExpectSetNX("stripe:event:evt_dup", 1, stripeEventKeyTTL).SetVal(false)

		payload := checkoutCompletedEvent("evt_dup", bookingMetadata())
		w := deliver(payload, signStripePayload(payload, whsecret))

		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.True(s.T(), gjson.Get(string(rbytes), "received").Bool())
		assert.Nil(s.T(), rmock.ExpectationsWereMet())
	})

	s.Run("Should release the claim when metadata is incomplete", func() {
		rdb, rmock := redismock.NewClientMock()
		lib.NewRedisClient(rdb)
		rmock.ExpectSetNX("stripe:event:evt_badmeta", 1, stripeEventKeyTTL).SetVal(true)
		rmock.ExpectDel("stripe:event:evt_badmeta").SetVal(1)

		md := bookingMetadata()
		delete(md, "guestName")
		payload := checkoutCompletedEvent("evt_badmeta", md)
		w := deliver(payload, signStripePayload(payload, whsecret))

		assert.Equal(s.T(), 400, w.Code)
		assert.Nil(s.T(), rmock.ExpectationsWereMet())
	})

	s.Run("Should confirm the booking and block the dates", func() {
		_, mock := db.GetMockDB()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "properties"`).
			WillReturnRows(propertyRow(`[{"month":"6","price":300}]`))
		mock.ExpectQuery(`INSERT INTO "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`UPDATE "properties" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rdb, rmock := redismock.NewClientMock()
		lib.NewRedisClient(rdb)
		rmock.ExpectSetNX("stripe:event:evt_ok", 1, stripeEventKeyTTL).SetVal(true)
		rmock.ExpectDel("properties:list").SetVal(1)

		payload := checkoutCompletedEvent("evt_ok", bookingMetadata())
		w := deliver(payload, signStripePayload(payload, whsecret))

		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.True(s.T(), gjson.Get(string(rbytes), "received").Bool())
		assert.Nil(s.T(), mock.ExpectationsWereMet())
		assert.Nil(s.T(), rmock.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestContactRoute() {
	router := setupRouter()
	contactRoutes(router)

	post := func(body map[string]any) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		sbody, _ := json.Marshal(&body)
		req, _ := http.NewRequest("POST", "/api/v1/send-contact", strings.NewReader(string(sbody)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	s.Run("Should return 400 for missing fields", func() {
		w := post(map[string]any{"name": "Jane", "email": "jane@x.com"})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 400 for an invalid email", func() {
		w := post(map[string]any{
			"name":    "Jane",
			"email":   "not-an-email",
			"subject": "Hello",
			"message": "Hi",
		})
		assert.Equal(s.T(), 400, w.Code)

		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "invalid email address", gjson.Get(string(rbytes), "error").String())
	})

	s.Run("Should return 500 when no mail transport is configured", func() {
		w := post(map[string]any{
			"name":    "  Jane  ",
			"email":   "JANE@X.COM",
			"subject": "Booking question",
			"message": "Is the villa free in June?",
		})
		assert.Equal(s.T(), 500, w.Code)

		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "Error sending email", gjson.Get(string(rbytes), "error").String())
	})
}

func (s *TestSuite) TestAuthRoutes() {
	router := setupRouter()
	guestAuthRoutes(router)

	post := func(path string, body map[string]any) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		sbody, _ := json.Marshal(&body)
		req, _ := http.NewRequest("POST", path, strings.NewReader(string(sbody)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	s.Run("Should return 400 for an incomplete registration", func() {
		w := post("/api/v1/auth/register", map[string]any{"email": "jane@x.com"})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 401 for an unknown email", func() {
		_, mock := db.GetMockDB()
		mock.ExpectQuery(`SELECT (.+) FROM "accounts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := post("/api/v1/auth/login", map[string]any{
			"email":    "nobody@x.com",
			"password": "password123",
		})
		assert.Equal(s.T(), 401, w.Code)

		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "invalid credentials", gjson.Get(string(rbytes), "error").String())
	})

	s.Run("Should return a token for valid credentials", func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		assert.Nil(s.T(), err)

		_, mock := db.GetMockDB()
		mock.ExpectQuery(`SELECT (.+) FROM "accounts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
				AddRow(7, "jane@x.com", string(hash), "guest"))

		w := post("/api/v1/auth/login", map[string]any{
			"email":    "Jane@X.com",
			"password": "password123",
		})
		assert.Equal(s.T(), 200, w.Code)

		rbytes, _ := io.ReadAll(w.Body)
		assert.NotEmpty(s.T(), gjson.Get(string(rbytes), "token").String())
	})
}

func (s *TestSuite) TestAuthMe() {
	router := setupRouter()
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	authMeRoute(authorized)

	s.Run("Should return 401 without a bearer token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/auth/me", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should return the account for a valid token", func() {
		token, err := controllers.GenerateJWT(&models.Account{
			ID:    7,
			Email: "jane@x.com",
			Role:  "guest",
		})
		assert.Nil(s.T(), err)

		accountRows := func() *sqlmock.Rows {
			return sqlmock.NewRows([]string{"id", "email", "role"}).
				AddRow(7, "jane@x.com", "guest")
		}
		_, mock := db.GetMockDB()
		mock.ExpectQuery(`SELECT (.+) FROM "accounts"`).WillReturnRows(accountRows())
		mock.ExpectQuery(`SELECT (.+) FROM "accounts"`).WillReturnRows(accountRows())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "jane@x.com", gjson.Get(string(rbytes), "data.email").String())
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
