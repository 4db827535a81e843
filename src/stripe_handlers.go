package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"
	"villas/src/lib"
	"villas/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const stripeEventKeyTTL = 24 * time.Hour

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/stripe-webhook", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error"})
			return
		}
		log.Printf("[StripeEvent] %s %s\n", event.ID, event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error"})
				return
			}
			log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.Status)

			// Claim the event id before any side effect so a redelivered
			// event cannot duplicate the booking or the blocked range.
			eventKey := "stripe:event:" + event.ID
			rd := lib.GetRedisClient()
			if rd != nil {
				claimed, err := rd.SetNX(context.Background(), eventKey, 1, stripeEventKeyTTL).Result()
				if err != nil {
					log.Printf("Error claiming event %s: %s\n", event.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
					return
				}
				if !claimed {
					log.Printf("Duplicate delivery of event %s, skipping\n", event.ID)
					ctx.JSON(http.StatusOK, gin.H{"received": true})
					return
				}
			}

			status, err := utils.ConfirmBookingFromSession(&cs, event.ID)
			if err != nil {
				log.Printf("Error confirming booking for event %s: %s\n", event.ID, err.Error())
				// Release the claim so the gateway's redelivery can retry.
				if rd != nil {
					if derr := rd.Del(context.Background(), eventKey).Err(); derr != nil {
						log.Printf("Error releasing claim on event %s: %s\n", event.ID, derr.Error())
					}
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return apiv1
}
