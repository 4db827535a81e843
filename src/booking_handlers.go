package main

import (
	"errors"
	"log"
	"net/http"
	"villas/src/db"
	"villas/src/models"
	"villas/src/types"
	"villas/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func checkoutRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/create-checkout-session", func(ctx *gin.Context) {
		var body types.CreateCheckoutSessionRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sessionId, status, err := utils.CreateStripeCheckout(ctx.Request.Context(), &body)
		if err != nil {
			log.Printf("Error creating checkout session: %s\n", err.Error())
			ctx.JSON(status, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"sessionId": sessionId})
	})
	return apiv1
}

// bookingHandlers registers the authorized admin surface over bookings.
// Deletion is permitted administratively but is not part of any core flow.
func bookingHandlers(apiv1 *gin.RouterGroup) {
	apiv1.
		GET("/bookings", func(ctx *gin.Context) {
			var bookings []models.Booking
			if err := db.GetDb().
				Model(&models.Booking{}).
				Preload("Property").
				Order("created_at desc").
				Find(&bookings).
				Error; err != nil {
				log.Printf("Error fetching bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var booking models.Booking
			if err := db.GetDb().
				Model(&models.Booking{}).
				Preload("Property").
				Where("id = ?", params.ID).
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		DELETE("/bookings/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.GetDb().Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", params.ID).
					First(&booking).
					Error; err != nil {
					return err
				}
				return tx.Delete(&booking).Error
			}); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
					return
				}
				log.Printf("Error deleting booking %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete booking"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
}
