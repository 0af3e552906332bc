package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusFailed  = "failed"
	// PaymentStatusReconcilePending marks a paid donation whose campaign
	// total increment has not been applied yet; the reconciler retries it.
	PaymentStatusReconcilePending = "reconcile_pending"
)

// Donation is a single payment record, standalone or tied to a
// subscription, campaign or box. Append-only, one record per charge attempt.
type Donation struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DonorId           primitive.ObjectID `json:"donor_id" bson:"donor_id"`
	SubscriptionId    primitive.ObjectID `json:"subscription_id,omitempty" bson:"subscription_id,omitempty"`
	CampaignId        primitive.ObjectID `json:"campaign_id,omitempty" bson:"campaign_id,omitempty"`
	BoxId             primitive.ObjectID `json:"box_id,omitempty" bson:"box_id,omitempty"`
	Amount            float64            `json:"amount" bson:"amount"`
	Type              string             `json:"type" bson:"type"`
	Name              string             `json:"name" bson:"name"`
	Phone             string             `json:"phone" bson:"phone"`
	Method            string             `json:"method" bson:"method"`
	Status            string             `json:"status" bson:"status"`
	District          string             `json:"district,omitempty" bson:"district,omitempty"`
	Panchayat         string             `json:"panchayat,omitempty" bson:"panchayat,omitempty"`
	RazorpayPaymentId string             `json:"razorpay_payment_id,omitempty" bson:"razorpay_payment_id,omitempty"`
	RazorpayOrderId   string             `json:"razorpay_order_id,omitempty" bson:"razorpay_order_id,omitempty"`
	PaymentStatus     string             `json:"payment_status" bson:"payment_status"`
	PaymentMethod     PaymentMethod      `json:"payment_method" bson:"payment_method"`
	PaymentDate       time.Time          `json:"payment_date" bson:"payment_date"`
	UpdatedAt         time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// DonationStats summarizes a subscription's full donation history. Computed
// with an aggregation over every paid donation, not just the loaded page.
type DonationStats struct {
	TotalAmount    float64   `json:"total_amount" bson:"total_amount"`
	Count          int64     `json:"count" bson:"count"`
	AverageAmount  float64   `json:"average_amount" bson:"average_amount"`
	FirstPaymentAt time.Time `json:"first_payment_at,omitempty" bson:"first_payment_at,omitempty"`
	LastPaymentAt  time.Time `json:"last_payment_at,omitempty" bson:"last_payment_at,omitempty"`
}

// Pagination is the page envelope returned by list endpoints.
type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}
