package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChannelPush     = "push"
	ChannelEmail    = "email"
	ChannelWhatsapp = "whatsapp"
)

const (
	GroupAll         = "all"
	GroupSubscribers = "subscribers"
	GroupBoxholders  = "boxholders"
	GroupCustom      = "custom"
)

const (
	NotificationQueued    = "queued"
	NotificationScheduled = "scheduled"
	NotificationSent      = "sent"
	NotificationPartial   = "partial"
	NotificationFailed    = "failed"
)

// NotificationTemplate is a reusable message body for a channel.
type NotificationTemplate struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Type      string             `json:"type" bson:"type"`
	Title     string             `json:"title,omitempty" bson:"title,omitempty"`
	Subject   string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Body      string             `json:"body" bson:"body"`
	ImageUrl  string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// NotificationHistory is one row per send attempt, immediate or scheduled.
type NotificationHistory struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Channel        string             `json:"channel" bson:"channel"`
	UserGroup      string             `json:"user_group" bson:"user_group"`
	Title          string             `json:"title,omitempty" bson:"title,omitempty"`
	Subject        string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Body           string             `json:"body" bson:"body"`
	TemplateId     primitive.ObjectID `json:"template_id,omitempty" bson:"template_id,omitempty"`
	RecipientCount int                `json:"recipient_count" bson:"recipient_count"`
	SentCount      int                `json:"sent_count" bson:"sent_count"`
	FailedCount    int                `json:"failed_count" bson:"failed_count"`
	Status         string             `json:"status" bson:"status"`
	ScheduledFor   time.Time          `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	Recipients     []string           `json:"-" bson:"recipients,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// CustomRecipients carries explicit targets for the "custom" group, either
// pasted lines or an uploaded CSV parsed client-side.
type CustomRecipients struct {
	Emails []string `json:"emails,omitempty"`
	Phones []string `json:"phones,omitempty"`
}

// SendNotificationRequest is the admin compose payload.
type SendNotificationRequest struct {
	Channel      string           `json:"channel"`
	UserGroup    string           `json:"userGroup"`
	Title        string           `json:"title,omitempty"`
	Subject      string           `json:"subject,omitempty"`
	Body         string           `json:"body"`
	TemplateId   string           `json:"templateId,omitempty"`
	ScheduledFor *time.Time       `json:"scheduledFor,omitempty"`
	CustomData   CustomRecipients `json:"customData,omitempty"`
}
