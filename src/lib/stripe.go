package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// VerifyPrice confirms a stored price reference is still resolvable on the
// gateway before a checkout session commits to it.
func VerifyPrice(ctx context.Context, priceId string) error {
	sc := GetStripeClient()
	_, err := sc.V1Prices.Retrieve(ctx, priceId, &stripe.PriceRetrieveParams{})
	return err
}
