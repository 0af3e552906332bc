package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleSubscriber = "Subscriber"
	RoleAdmin      = "Admin"
)

// Donor is a registered phone-number identity eligible to hold subscriptions.
// Created on the first successful OTP-gated signup.
type Donor struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Phone     string             `json:"phone" bson:"phone"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Role      string             `json:"role" bson:"role"`
	District  string             `json:"district,omitempty" bson:"district,omitempty"`
	Panchayat string             `json:"panchayat,omitempty" bson:"panchayat,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
