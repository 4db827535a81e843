package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
	"villas/src/db"
	"villas/src/models"
	"villas/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AccountsRegister(ctx *gin.Context) (account *models.Account, status int, err error) {
	var body types.RegisterRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}
	acc := models.Account{
		Email:        email,
		Name:         strings.TrimSpace(body.Name),
		PasswordHash: string(hash),
	}
	if err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("an account with this email already exists")
		}
		return tx.Create(&acc).Error
	}); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &acc, http.StatusCreated, nil
}

func AccountsLogin(ctx *gin.Context) (token string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return "", http.StatusBadRequest, err
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	var account models.Account
	if err := db.GetDb().
		Model(&models.Account{}).
		Where("email = ?", email).
		First(&account).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", http.StatusUnauthorized, errors.New("invalid credentials")
		}
		return "", http.StatusInternalServerError, errors.New("something went wrong")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(body.Password)); err != nil {
		return "", http.StatusUnauthorized, errors.New("invalid credentials")
	}
	token, err = GenerateJWT(&account)
	if err != nil {
		log.Printf("Error generating JWT token: %s\n", err.Error())
		return "", http.StatusInternalServerError, errors.New("something went wrong")
	}
	return token, http.StatusOK, nil
}

func GenerateJWT(account *models.Account) (string, error) {
	claims := types.Claims{
		Email: account.Email,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   models.PublicID(account.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}
