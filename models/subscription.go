package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MethodAuto   = "auto"
	MethodManual = "manual"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCancelled = "cancelled"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// ValidatePeriod rejects billing periods the gateway does not support.
func ValidatePeriod(period string) error {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return nil
	}
	return fmt.Errorf("invalid period %q", period)
}

// GatewayTotalCount is the total_count sent with gateway subscription
// creation, sized so every period covers roughly ten years of billing.
func GatewayTotalCount(period string) int {
	switch period {
	case PeriodDaily:
		return 3650
	case PeriodWeekly:
		return 520
	case PeriodMonthly:
		return 120
	case PeriodYearly:
		return 10
	default:
		return 0
	}
}

// Subscription is a recurring-donation commitment, gateway-billed ("auto")
// or manually re-paid each period ("manual").
type Subscription struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DonorId                primitive.ObjectID `json:"donor_id" bson:"donor_id"`
	Amount                 float64            `json:"amount" bson:"amount"`
	Name                   string             `json:"name" bson:"name"`
	Phone                  string             `json:"phone" bson:"phone"`
	Method                 string             `json:"method" bson:"method"`
	Status                 string             `json:"status" bson:"status"`
	Period                 string             `json:"period" bson:"period"`
	District               string             `json:"district,omitempty" bson:"district,omitempty"`
	Panchayat              string             `json:"panchayat,omitempty" bson:"panchayat,omitempty"`
	LastPaymentAt          time.Time          `json:"last_payment_at,omitempty" bson:"last_payment_at,omitempty"`
	PlanId                 string             `json:"plan_id,omitempty" bson:"plan_id,omitempty"`
	RazorpaySubscriptionId string             `json:"razorpay_subscription_id,omitempty" bson:"razorpay_subscription_id,omitempty"`
	UpdatedAt              time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
