package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
	"villas/src/common"
	"villas/src/config"
	"villas/src/db"
	"villas/src/lib"
	"villas/src/models"
	"villas/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func cleaningFeeAmount() float64 {
	fee, err := strconv.ParseFloat(os.Getenv("CLEANING_FEE_AMOUNT"), 64)
	if err != nil {
		return 0
	}
	return fee
}

func fetchProperty(ctx *gin.Context) (*models.Property, bool) {
	id, err := utils.ParsePropertyID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return nil, false
	}
	var property models.Property
	if err := db.GetDb().
		Model(&models.Property{}).
		Where("id = ?", id).
		First(&property).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return nil, false
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return nil, false
	}
	return &property, true
}

func propertyRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/properties", func(ctx *gin.Context) {
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), config.PROPERTIES_CACHE_KEY).Result()
				if err == nil && cached != "" {
					ctx.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
					return
				}
			}
			var properties []models.Property
			if err := db.GetDb().
				Model(&models.Property{}).
				Order("name").
				Find(&properties).
				Error; err != nil {
				log.Printf("Error fetching properties: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
				return
			}
			if rd != nil {
				body, err := json.Marshal(properties)
				if err == nil {
					if err := rd.SetEx(context.Background(), config.PROPERTIES_CACHE_KEY, string(body), config.PROPERTIES_CACHE_TTL*time.Second).Err(); err != nil {
						log.Printf("Error caching property list: %s\n", err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, properties)
		}).
		GET("/properties/:id", func(ctx *gin.Context) {
			property, ok := fetchProperty(ctx)
			if !ok {
				return
			}
			ctx.JSON(http.StatusOK, property)
		}).
		GET("/properties/:id/availability", func(ctx *gin.Context) {
			property, ok := fetchProperty(ctx)
			if !ok {
				return
			}
			availability := property.Availability
			ctx.JSON(http.StatusOK, gin.H{
				"availability":   availability,
				"disabled_dates": common.DisabledDates(availability, time.Now().UTC(), 365),
			})
		}).
		GET("/properties/:id/quote", func(ctx *gin.Context) {
			var query struct {
				CheckIn  string `form:"check_in" binding:"required"`
				CheckOut string `form:"check_out" binding:"required"`
			}
			if err := ctx.BindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out are required"})
				return
			}
			checkIn, err := common.ParseDate(query.CheckIn)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkOut, err := common.ParseDate(query.CheckOut)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if !checkOut.After(checkIn) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be after check_in"})
				return
			}
			property, ok := fetchProperty(ctx)
			if !ok {
				return
			}
			entry, err := utils.ResolveSeasonalPrice(property.Prices, checkIn)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			quote := common.NewQuote(checkIn, checkOut, entry.Price, cleaningFeeAmount())
			ctx.JSON(http.StatusOK, gin.H{
				"quote":     quote,
				"available": common.RangeAvailable(property.Availability, checkIn, checkOut),
			})
		})
	return apiv1
}
