package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salmankavanur/aic-amal-backend/models"
)

// @Summary List campaigns.
// @Tags campaigns
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size"
// @Produce json
// @Success 200 {object} []models.Campaign
// @Router /api/campaigns [get]
func ListCampaigns(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		page, limit := ParsePageParams(c)
		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		totalItems, err := h.Db.CountDocuments(h.C, filter)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed counting campaigns", err.Error())
		}

		campaigns := make([]models.Campaign, 0)
		opts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := h.Db.Find(h.C, filter, opts)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching campaigns", err.Error())
		}
		if err = cursor.All(h.C, &campaigns); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding campaigns", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaigns", fiber.Map{
			"data":       campaigns,
			"pagination": NewPagination(page, limit, totalItems),
		})
	}
}

// @Summary Get one campaign.
// @Tags campaigns
// @Param id path string true "Campaign id"
// @Produce json
// @Success 200 {object} models.Campaign
// @Router /api/campaigns/:id [get]
func GetCampaign(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign id", err.Error())
		}
		var campaign models.Campaign
		if err = h.Db.FindOne(h.C, bson.M{"_id": id}).Decode(&campaign); err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "campaign not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaign", campaign)
	}
}

// @Summary Create a campaign.
// @Tags campaigns
// @Accept json
// @Param campaign body models.Campaign true "Campaign to create"
// @Produce json
// @Success 200 {object} DBInsertResponse
// @Router /api/campaigns [post]
func CreateCampaign(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		campaign := new(models.Campaign)
		if err := c.BodyParser(campaign); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if campaign.Name == "" {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "campaign name is required", nil)
		}
		switch campaign.Type {
		case models.CampaignTypeFundraising, models.CampaignTypePhysical, models.CampaignTypeFixedAmount:
		default:
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign type", nil)
		}
		if !campaign.IsInfinite && campaign.Goal <= 0 {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "campaign needs a goal or an infinite target", nil)
		}

		campaign.ID = primitive.NewObjectID()
		campaign.CurrentAmount = 0
		campaign.CreatedAt = time.Now()
		campaign.UpdatedAt = time.Now()
		res, err := h.Db.InsertOne(h.C, campaign)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to create campaign", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaign created", res.InsertedID)
	}
}

// @Summary Update a campaign.
// @Tags campaigns
// @Accept json
// @Param id path string true "Campaign id"
// @Produce json
// @Success 200
// @Router /api/campaigns/:id [put]
func UpdateCampaign(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign id", err.Error())
		}
		campaign := new(models.Campaign)
		if err = c.BodyParser(campaign); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		// current_amount is saga-owned, never writable through the form
		update := bson.M{"$set": bson.M{
			"name":        campaign.Name,
			"type":        campaign.Type,
			"goal":        campaign.Goal,
			"is_infinite": campaign.IsInfinite,
			"area":        campaign.Area,
			"rate":        campaign.Rate,
			"status":      campaign.Status,
			"start_date":  campaign.StartDate,
			"end_date":    campaign.EndDate,
			"updated_at":  time.Now(),
		}}
		res, err := h.Db.UpdateOne(h.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to update campaign", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "campaign not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaign updated", nil)
	}
}

// @Summary Delete a campaign.
// @Tags campaigns
// @Param id path string true "Campaign id"
// @Produce json
// @Success 200
// @Router /api/campaigns/:id [delete]
func DeleteCampaign(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign id", err.Error())
		}
		res, err := h.Db.DeleteOne(h.C, bson.M{"_id": id})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to delete campaign", err.Error())
		}
		if res.DeletedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "campaign not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaign deleted", nil)
	}
}

// @Summary Adjust a campaign's collected total.
// @Description admin correction endpoint; regular donations flow through the
// @Description donation saga instead.
// @Tags campaigns
// @Accept json
// @Param id path string true "Campaign id"
// @Produce json
// @Success 200
// @Router /api/campaigns/:id/update-amount [post]
func UpdateCampaignAmount(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign id", err.Error())
		}
		var body struct {
			Amount float64 `json:"amount"`
		}
		if err = c.BodyParser(&body); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		update := bson.M{"$inc": bson.M{"current_amount": body.Amount}, "$set": bson.M{"updated_at": time.Now()}}
		res, err := h.Db.UpdateOne(h.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to update amount", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "campaign not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "campaign amount updated", nil)
	}
}
