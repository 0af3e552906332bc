package handlers

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/models"
)

// Validation messages surfaced to the admin composer.
const (
	MsgPushTitleRequired     = "Push notification title is required"
	MsgEmailSubjectRequired  = "Email subject is required"
	MsgBodyRequired          = "Notification body is required"
	MsgPushCustomUnsupported = "Push notifications cannot target custom recipients"
)

type NotificationHandler struct {
	*Handler
	TemplateDb     *mongo.Collection
	SubscriptionDb *mongo.Collection
	BoxDb          *mongo.Collection
	Push           *client.PushClient
	Email          *client.EmailClient
	Sms            *client.TwilioClient
}

func NewNotificationHandler(l *logrus.Logger, push *client.PushClient, email *client.EmailClient, sms *client.TwilioClient) *NotificationHandler {
	return &NotificationHandler{
		Handler:        NewHandler(os.Getenv("NOTIFICATION_HISTORY_COLLECTION"), l),
		TemplateDb:     database.GetCollection(os.Getenv("NOTIFICATION_TEMPLATE_COLLECTION")),
		SubscriptionDb: database.GetCollection(os.Getenv("SUBSCRIPTION_COLLECTION")),
		BoxDb:          database.GetCollection(os.Getenv("BOX_COLLECTION")),
		Push:           push,
		Email:          email,
		Sms:            sms,
	}
}

// ValidateSendRequest applies the channel-specific field checks before
// anything is resolved or queued.
func ValidateSendRequest(req *models.SendNotificationRequest) error {
	switch req.Channel {
	case models.ChannelPush:
		if strings.TrimSpace(req.Title) == "" {
			return errors.New(MsgPushTitleRequired)
		}
		// push goes out by group topic; an ad-hoc phone list has no topic
		if req.UserGroup == models.GroupCustom {
			return errors.New(MsgPushCustomUnsupported)
		}
	case models.ChannelEmail:
		if strings.TrimSpace(req.Subject) == "" {
			return errors.New(MsgEmailSubjectRequired)
		}
	case models.ChannelWhatsapp:
		// body-only channel
	default:
		return errors.New("invalid channel")
	}
	if strings.TrimSpace(req.Body) == "" {
		return errors.New(MsgBodyRequired)
	}
	switch req.UserGroup {
	case models.GroupAll, models.GroupSubscribers, models.GroupBoxholders, models.GroupCustom:
		return nil
	}
	return errors.New("invalid user group")
}

// NormalizeRecipients trims, drops empties and dedupes while keeping order.
func NormalizeRecipients(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// resolveRecipients returns the concrete target list for a group. Built-in
// groups are live collection queries, not placeholders.
func (n *NotificationHandler) resolveRecipients(channel, group string, custom models.CustomRecipients) ([]string, error) {
	if group == models.GroupCustom {
		if channel == models.ChannelEmail {
			return NormalizeRecipients(custom.Emails), nil
		}
		return NormalizeRecipients(custom.Phones), nil
	}

	field := "phone"
	var db *mongo.Collection
	filter := bson.M{}
	switch group {
	case models.GroupAll:
		db = n.DonorDb
		if channel == models.ChannelEmail {
			field = "email"
			filter["email"] = bson.M{"$nin": bson.A{nil, ""}}
		}
	case models.GroupSubscribers:
		db = n.SubscriptionDb
		filter["status"] = models.StatusActive
	case models.GroupBoxholders:
		db = n.BoxDb
		filter["is_active"] = true
	default:
		return nil, errors.New("invalid user group")
	}

	values, err := db.Distinct(n.C, field, filter)
	if err != nil {
		return nil, err
	}
	recipients := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			recipients = append(recipients, s)
		}
	}
	return NormalizeRecipients(recipients), nil
}

// applyTemplate fills empty compose fields from a stored template.
func (n *NotificationHandler) applyTemplate(req *models.SendNotificationRequest) (primitive.ObjectID, error) {
	if req.TemplateId == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(req.TemplateId)
	if err != nil {
		return primitive.NilObjectID, errors.New("invalid template id")
	}
	var tpl models.NotificationTemplate
	if err = n.TemplateDb.FindOne(n.C, bson.M{"_id": id}).Decode(&tpl); err != nil {
		return primitive.NilObjectID, errors.New("template not found")
	}
	if req.Body == "" {
		req.Body = tpl.Body
	}
	if req.Title == "" {
		req.Title = tpl.Title
	}
	if req.Subject == "" {
		req.Subject = tpl.Subject
	}
	return id, nil
}

// @Summary Send or schedule a notification.
// @Description validates per channel, resolves the recipient group, then
// @Description dispatches now or stores a scheduled row for the worker.
// @Tags notifications
// @Accept json
// @Param notification body models.SendNotificationRequest true "Compose payload"
// @Produce json
// @Success 200
// @Router /api/notifications/send [post]
func SendNotification(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.SendNotificationRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		templateId, err := n.applyTemplate(req)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		if err = ValidateSendRequest(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		recipients, err := n.resolveRecipients(req.Channel, req.UserGroup, req.CustomData)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed resolving recipients", err.Error())
		}

		history := models.NotificationHistory{
			ID:             primitive.NewObjectID(),
			Channel:        req.Channel,
			UserGroup:      req.UserGroup,
			Title:          req.Title,
			Subject:        req.Subject,
			Body:           req.Body,
			TemplateId:     templateId,
			RecipientCount: len(recipients),
			Recipients:     recipients,
			Status:         models.NotificationQueued,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}

		if req.ScheduledFor != nil && req.ScheduledFor.After(time.Now()) {
			history.Status = models.NotificationScheduled
			history.ScheduledFor = *req.ScheduledFor
			if _, err = n.Db.InsertOne(n.C, &history); err != nil {
				return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed scheduling notification", err.Error())
			}
			return FiberJsonResponse(c, fiber.StatusOK, "success", "notification scheduled", fiber.Map{
				"id":           history.ID.Hex(),
				"scheduledFor": history.ScheduledFor,
			})
		}

		sent, failed := n.Dispatch(&history)
		history.SentCount = sent
		history.FailedCount = failed
		history.Status = dispatchStatus(len(recipients), sent, failed)
		if _, err = n.Db.InsertOne(n.C, &history); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording notification", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "notification dispatched", fiber.Map{
			"id":     history.ID.Hex(),
			"sent":   sent,
			"failed": failed,
			"status": history.Status,
		})
	}
}

func dispatchStatus(total, sent, failed int) string {
	switch {
	case total == 0 || failed == 0:
		return models.NotificationSent
	case sent == 0:
		return models.NotificationFailed
	default:
		return models.NotificationPartial
	}
}

// Dispatch fans one history row out over its channel. Also used by the
// scheduled-notification worker.
func (n *NotificationHandler) Dispatch(h *models.NotificationHistory) (sent, failed int) {
	switch h.Channel {
	case models.ChannelPush:
		// one publish per topic reaches every subscribed device
		if err := n.Push.SendToTopic(h.UserGroup, h.Title, h.Body, ""); err != nil {
			return 0, h.RecipientCount
		}
		return h.RecipientCount, 0
	case models.ChannelEmail:
		for _, to := range h.Recipients {
			if err := n.Email.SendEmail(to, h.Subject, h.Body); err != nil {
				failed++
				continue
			}
			sent++
		}
		return sent, failed
	case models.ChannelWhatsapp:
		for _, to := range h.Recipients {
			if _, err := n.Sms.SendWhatsapp("+91"+to, h.Body); err != nil {
				failed++
				continue
			}
			sent++
		}
		return sent, failed
	}
	return 0, h.RecipientCount
}

// @Summary Notification history.
// @Description searchable, filterable, sortable and paginated send log.
// @Tags notifications
// @Produce json
// @Success 200
// @Router /api/notifications/history [get]
func NotificationHistoryList(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		page, limit := ParsePageParams(c)

		filter := bson.M{}
		if search := c.Query("search"); search != "" {
			filter["$or"] = bson.A{
				bson.M{"title": bson.M{"$regex": search, "$options": "i"}},
				bson.M{"subject": bson.M{"$regex": search, "$options": "i"}},
				bson.M{"body": bson.M{"$regex": search, "$options": "i"}},
			}
		}
		if channel := c.Query("channel"); channel != "" {
			filter["channel"] = channel
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		sortBy := c.Query("sortBy", "created_at")
		sortOrder := -1
		if c.Query("sortOrder") == "asc" {
			sortOrder = 1
		}

		totalItems, err := n.Db.CountDocuments(n.C, filter)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed counting history", err.Error())
		}

		rows := make([]models.NotificationHistory, 0)
		opts := options.Find().
			SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := n.Db.Find(n.C, filter, opts)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching history", err.Error())
		}
		if err = cursor.All(n.C, &rows); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding history", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "notification history", fiber.Map{
			"notifications": rows,
			"totalItems":    totalItems,
			"totalPages":    TotalPages(totalItems, limit),
		})
	}
}

// @Summary List notification templates.
// @Tags notifications
// @Produce json
// @Success 200 {object} []models.NotificationTemplate
// @Router /api/notifications/templates [get]
func ListTemplates(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		templates := make([]models.NotificationTemplate, 0)
		cursor, err := n.TemplateDb.Find(n.C, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching templates", err.Error())
		}
		if err = cursor.All(n.C, &templates); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding templates", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "templates", templates)
	}
}

// @Summary Create a notification template.
// @Tags notifications
// @Accept json
// @Param template body models.NotificationTemplate true "Template to create"
// @Produce json
// @Success 200 {object} DBInsertResponse
// @Router /api/notifications/templates [post]
func CreateTemplate(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		tpl := new(models.NotificationTemplate)
		if err := c.BodyParser(tpl); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if tpl.Name == "" || tpl.Body == "" {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "template name and body are required", nil)
		}
		tpl.ID = primitive.NewObjectID()
		tpl.CreatedAt = time.Now()
		tpl.UpdatedAt = time.Now()
		res, err := n.TemplateDb.InsertOne(n.C, tpl)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to create template", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "template created", res.InsertedID)
	}
}

// @Summary Update a notification template.
// @Tags notifications
// @Accept json
// @Param id path string true "Template id"
// @Produce json
// @Success 200
// @Router /api/notifications/templates/:id [put]
func UpdateTemplate(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid template id", err.Error())
		}
		tpl := new(models.NotificationTemplate)
		if err = c.BodyParser(tpl); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		update := bson.M{"$set": bson.M{
			"name":       tpl.Name,
			"type":       tpl.Type,
			"title":      tpl.Title,
			"subject":    tpl.Subject,
			"body":       tpl.Body,
			"image_url":  tpl.ImageUrl,
			"updated_at": time.Now(),
		}}
		res, err := n.TemplateDb.UpdateOne(n.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to update template", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "template not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "template updated", nil)
	}
}

// @Summary Delete a notification template.
// @Tags notifications
// @Param id path string true "Template id"
// @Produce json
// @Success 200
// @Router /api/notifications/templates/:id [delete]
func DeleteTemplate(n *NotificationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid template id", err.Error())
		}
		res, err := n.TemplateDb.DeleteOne(n.C, bson.M{"_id": id})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to delete template", err.Error())
		}
		if res.DeletedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "template not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "template deleted", nil)
	}
}
