package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionUser is the volunteer snapshot captured when a box is registered.
type SessionUser struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Role  string `json:"role,omitempty" bson:"role,omitempty"`
}

// Box is a physical donation collection box tracked for payment and
// activity status. Independent of subscriptions.
type Box struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SerialNumber   string             `json:"serial_number" bson:"serial_number"`
	Name           string             `json:"name" bson:"name"`
	Phone          string             `json:"phone" bson:"phone"`
	LastPayment    time.Time          `json:"last_payment,omitempty" bson:"last_payment,omitempty"`
	IsActive       bool               `json:"is_active" bson:"is_active"`
	SessionUser    SessionUser        `json:"session_user" bson:"session_user"`
	RegisteredDate time.Time          `json:"registered_date" bson:"registered_date"`
	UpdatedAt      time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
