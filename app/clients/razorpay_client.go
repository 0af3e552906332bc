package client

import (
	"context"
	"errors"
	"math"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/sirupsen/logrus"

	"github.com/salmankavanur/aic-amal-backend/models"
)

// RazorpayClient wraps the payment gateway: one-off orders for manual
// donations, plans and subscriptions for auto billing, cancellation, and
// callback signature verification.
type RazorpayClient struct {
	// Name of the service, shown on gateway dashboards
	Name string
	// Client is the object that contains all gateway functionalities
	Client *razorpay.Client
	secret string
	// custom logger
	L *logrus.Logger
	C context.Context
}

func NewRazorpayClient(l *logrus.Logger) *RazorpayClient {
	key := os.Getenv("RAZORPAY_KEY_ID")
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	return &RazorpayClient{
		Name:   "AIC-Amal",
		Client: razorpay.NewClient(key, secret),
		secret: secret,
		L:      l,
		C:      context.Background(),
	}
}

// AmountToPaise converts rupees to the paise integer the gateway expects.
func AmountToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder creates a one-off gateway order and returns its id.
func (r *RazorpayClient) CreateOrder(amount float64, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   AmountToPaise(amount),
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := r.Client.Order.Create(data, nil)
	if err != nil {
		r.L.Errorf("[Razorpay] order create failed: %s", err.Error())
		return "", err
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", errors.New("gateway order response missing id")
	}
	return id, nil
}

// CreatePlan creates a billing plan for the given amount and period.
func (r *RazorpayClient) CreatePlan(name string, amount float64, period string) (string, error) {
	if err := models.ValidatePeriod(period); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"period":   period,
		"interval": 1,
		"item": map[string]interface{}{
			"name":     name,
			"amount":   AmountToPaise(amount),
			"currency": "INR",
		},
	}
	body, err := r.Client.Plan.Create(data, nil)
	if err != nil {
		r.L.Errorf("[Razorpay] plan create failed: %s", err.Error())
		return "", err
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", errors.New("gateway plan response missing id")
	}
	return id, nil
}

// CreateSubscription binds a gateway subscription to a plan.
func (r *RazorpayClient) CreateSubscription(planId, period string) (string, error) {
	data := map[string]interface{}{
		"plan_id":         planId,
		"total_count":     models.GatewayTotalCount(period),
		"customer_notify": 1,
	}
	body, err := r.Client.Subscription.Create(data, nil)
	if err != nil {
		r.L.Errorf("[Razorpay] subscription create failed: %s", err.Error())
		return "", err
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", errors.New("gateway subscription response missing id")
	}
	return id, nil
}

// CancelSubscription cancels a gateway-billed subscription immediately.
func (r *RazorpayClient) CancelSubscription(subscriptionId string) error {
	data := map[string]interface{}{"cancel_at_cycle_end": 0}
	_, err := r.Client.Subscription.Cancel(subscriptionId, data, nil)
	if err != nil {
		r.L.Errorf("[Razorpay] subscription cancel failed for %s: %s", subscriptionId, err.Error())
	}
	return err
}

// VerifyPayment checks the checkout callback signature for a one-off order.
func (r *RazorpayClient) VerifyPayment(orderId, paymentId, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderId,
		"razorpay_payment_id": paymentId,
	}
	return utils.VerifyPaymentSignature(params, signature, r.secret)
}

// VerifySubscriptionPayment checks the callback signature for a recurring charge.
func (r *RazorpayClient) VerifySubscriptionPayment(subscriptionId, paymentId, signature string) bool {
	params := map[string]interface{}{
		"razorpay_subscription_id": subscriptionId,
		"razorpay_payment_id":      paymentId,
	}
	return utils.VerifySubscriptionSignature(params, signature, r.secret)
}
