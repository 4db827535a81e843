package main

import (
	"log"
	"net/http"
	"villas/src/lib/mailer"
	"villas/src/types"
	"villas/src/utils"

	"github.com/gin-gonic/gin"
)

func contactRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/send-contact", func(ctx *gin.Context) {
		var body types.ContactRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		details, err := utils.NormalizeContact(&body)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := mailer.SendContactRelay(details); err != nil {
			log.Printf("Error sending contact email: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending email"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
	})
	return apiv1
}
