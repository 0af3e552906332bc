package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OtpVerification holds one pending login challenge per phone number. The
// code itself is never stored, only its bcrypt hash.
type OtpVerification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Phone     string             `json:"phone" bson:"phone"`
	CodeHash  string             `json:"-" bson:"code_hash"`
	Attempts  int                `json:"attempts" bson:"attempts"`
	Verified  bool               `json:"verified" bson:"verified"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// Session is the server-side registry entry behind a JWT. Revoking the row
// invalidates the token regardless of its expiry, which lets subscription
// cancellation terminate the donor's session authoritatively.
type Session struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TokenId   string             `json:"token_id" bson:"token_id"`
	DonorId   primitive.ObjectID `json:"donor_id,omitempty" bson:"donor_id,omitempty"`
	Phone     string             `json:"phone" bson:"phone"`
	Role      string             `json:"role" bson:"role"`
	Revoked   bool               `json:"revoked" bson:"revoked"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// SessionClaims is the JWT payload minted after OTP verification (donors)
// or admin login. ID carries the session registry token_id.
type SessionClaims struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type CheckPhoneRequest struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type CheckPhoneResponse struct {
	Exists bool `json:"exists"`
}

type OtpRequest struct {
	Phone string `json:"phone"`
}

type OtpVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}
