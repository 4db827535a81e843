package main

import (
	"errors"
	"net/http"
	"villas/src/controllers"
	"villas/src/db"
	"villas/src/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	auth := apiv1.Group("/auth")
	auth.
		POST("/register", func(ctx *gin.Context) {
			account, status, err := controllers.AccountsRegister(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"data": account})
		}).
		POST("/login", func(ctx *gin.Context) {
			token, status, err := controllers.AccountsLogin(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"token": token})
		})
	return apiv1
}

// authMeRoute is registered behind the auth middleware.
func authMeRoute(apiv1 *gin.RouterGroup) {
	apiv1.GET("/auth/me", func(ctx *gin.Context) {
		userId := ctx.GetUint("id")
		var account models.Account
		if err := db.GetDb().
			Model(&models.Account{}).
			Where("id = ?", userId).
			First(&account).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": account})
	})
}
