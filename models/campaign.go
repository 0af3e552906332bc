package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CampaignTypeFundraising = "fundraising"
	CampaignTypePhysical    = "physical"
	CampaignTypeFixedAmount = "fixedamount"
)

// Campaign is a time-boxed fundraising or in-kind collection effort with a
// goal or an infinite target. CurrentAmount is only ever mutated through the
// donation saga or the reconciler, never by ad-hoc writes.
type Campaign struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Type          string             `json:"type" bson:"type"`
	Goal          float64            `json:"goal,omitempty" bson:"goal,omitempty"`
	IsInfinite    bool               `json:"is_infinite" bson:"is_infinite"`
	Area          string             `json:"area,omitempty" bson:"area,omitempty"`
	Rate          float64            `json:"rate,omitempty" bson:"rate,omitempty"`
	CurrentAmount float64            `json:"current_amount" bson:"current_amount"`
	Status        string             `json:"status" bson:"status"`
	StartDate     time.Time          `json:"start_date" bson:"start_date"`
	EndDate       time.Time          `json:"end_date" bson:"end_date"`
	UpdatedAt     time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
