package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Saga kinds. AutoSubscribe covers plan -> subscription -> checkout ->
// status-update; DonationCampaign covers donation-save -> campaign-total.
const (
	SagaAutoSubscribe    = "auto_subscribe"
	SagaDonationCampaign = "donation_campaign"
)

type SagaState string

const (
	SagaStarted             SagaState = "started"
	SagaPlanCreated         SagaState = "plan_created"
	SagaSubscriptionCreated SagaState = "subscription_created"
	SagaIncrementPending    SagaState = "increment_pending"
	SagaCompleted           SagaState = "completed"
	SagaFailed              SagaState = "failed"
	SagaExpired             SagaState = "expired"
)

var sagaTransitions = map[SagaState][]SagaState{
	SagaStarted:             {SagaPlanCreated, SagaIncrementPending, SagaCompleted, SagaFailed, SagaExpired},
	SagaPlanCreated:         {SagaSubscriptionCreated, SagaFailed, SagaExpired},
	SagaSubscriptionCreated: {SagaCompleted, SagaFailed, SagaExpired},
	SagaIncrementPending:    {SagaCompleted, SagaFailed, SagaExpired},
}

// CanAdvance reports whether a saga may move from s to next. Terminal states
// never advance.
func (s SagaState) CanAdvance(next SagaState) bool {
	for _, allowed := range sagaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the saga is finished one way or the other.
func (s SagaState) Terminal() bool {
	switch s {
	case SagaCompleted, SagaFailed, SagaExpired:
		return true
	}
	return false
}

// ActiveSagaStates lists every state a saga can still move out of. Used by
// the reconciler to find rows that need sweeping.
func ActiveSagaStates() []SagaState {
	all := []SagaState{
		SagaStarted, SagaPlanCreated, SagaSubscriptionCreated,
		SagaIncrementPending, SagaCompleted, SagaFailed, SagaExpired,
	}
	active := make([]SagaState, 0, len(all))
	for _, s := range all {
		if !s.Terminal() {
			active = append(active, s)
		}
	}
	return active
}

// CheckoutSaga is the persistent record of a multi-step gateway flow. Each
// step writes the saga first, then calls out with the step's idempotency
// key, so a crash between steps leaves a row the reconciler can sweep.
type CheckoutSaga struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Kind                   string             `json:"kind" bson:"kind"`
	State                  SagaState          `json:"state" bson:"state"`
	IdempotencyKey         string             `json:"idempotency_key" bson:"idempotency_key"`
	Name                   string             `json:"name" bson:"name"`
	Phone                  string             `json:"phone" bson:"phone"`
	Amount                 float64            `json:"amount" bson:"amount"`
	Period                 string             `json:"period,omitempty" bson:"period,omitempty"`
	District               string             `json:"district,omitempty" bson:"district,omitempty"`
	Panchayat              string             `json:"panchayat,omitempty" bson:"panchayat,omitempty"`
	PlanId                 string             `json:"plan_id,omitempty" bson:"plan_id,omitempty"`
	RazorpaySubscriptionId string             `json:"razorpay_subscription_id,omitempty" bson:"razorpay_subscription_id,omitempty"`
	DonationId             primitive.ObjectID `json:"donation_id,omitempty" bson:"donation_id,omitempty"`
	CampaignId             primitive.ObjectID `json:"campaign_id,omitempty" bson:"campaign_id,omitempty"`
	LastError              string             `json:"last_error,omitempty" bson:"last_error,omitempty"`
	ExpiresAt              time.Time          `json:"expires_at" bson:"expires_at"`
	UpdatedAt              time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
