package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SponsorYatheem = "Sponsor-Yatheem"
	SponsorHafiz   = "Sponsor-Hafiz"
)

// Sponsorship is a fixed-program recurring pledge distinct from general
// subscriptions. PaymentMethod is explicit; legacy rows without it fall back
// to PaymentMethodFromGatewayID on read.
type Sponsorship struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Phone             string             `json:"phone" bson:"phone"`
	Amount            float64            `json:"amount" bson:"amount"`
	Type              string             `json:"type" bson:"type"`
	Period            string             `json:"period" bson:"period"`
	Status            string             `json:"status" bson:"status"`
	PaymentMethod     PaymentMethod      `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	RazorpayPaymentId string             `json:"razorpay_payment_id,omitempty" bson:"razorpay_payment_id,omitempty"`
	RazorpayOrderId   string             `json:"razorpay_order_id,omitempty" bson:"razorpay_order_id,omitempty"`
	RazorpaySignature string             `json:"razorpay_signature,omitempty" bson:"razorpay_signature,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// EffectivePaymentMethod resolves the method for rows written before the
// explicit field existed.
func (s *Sponsorship) EffectivePaymentMethod() PaymentMethod {
	if s.PaymentMethod != "" {
		return s.PaymentMethod
	}
	return PaymentMethodFromGatewayID(s.RazorpayPaymentId)
}
