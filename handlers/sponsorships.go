package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salmankavanur/aic-amal-backend/models"
)

// @Summary List sponsorships.
// @Tags sponsorships
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size"
// @Produce json
// @Success 200 {object} []models.Sponsorship
// @Router /api/sponsorships [get]
func ListSponsorships(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		page, limit := ParsePageParams(c)
		filter := bson.M{}
		if t := c.Query("type"); t != "" {
			filter["type"] = t
		}

		totalItems, err := h.Db.CountDocuments(h.C, filter)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed counting sponsorships", err.Error())
		}

		sponsorships := make([]models.Sponsorship, 0)
		opts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := h.Db.Find(h.C, filter, opts)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching sponsorships", err.Error())
		}
		if err = cursor.All(h.C, &sponsorships); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding sponsorships", err.Error())
		}

		// resolve legacy rows that predate the explicit method field
		for i := range sponsorships {
			sponsorships[i].PaymentMethod = sponsorships[i].EffectivePaymentMethod()
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "sponsorships", fiber.Map{
			"data":       sponsorships,
			"pagination": NewPagination(page, limit, totalItems),
		})
	}
}

// @Summary Create a sponsorship pledge.
// @Tags sponsorships
// @Accept json
// @Param sponsorship body models.Sponsorship true "Sponsorship to create"
// @Produce json
// @Success 200 {object} DBInsertResponse
// @Router /api/sponsorships [post]
func CreateSponsorship(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		sp := new(models.Sponsorship)
		if err := c.BodyParser(sp); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if sp.Type != models.SponsorYatheem && sp.Type != models.SponsorHafiz {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid sponsorship type", nil)
		}
		if err := ValidatePhone(sp.Phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		if sp.Amount <= 0 {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "amount must be greater than zero", nil)
		}
		if sp.PaymentMethod == "" {
			// new writes must be explicit; only a gateway payment may default
			if sp.RazorpayPaymentId == "" {
				return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "payment method is required", nil)
			}
			sp.PaymentMethod = models.PaymentMethodOnline
		} else if !sp.PaymentMethod.Valid() {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid payment method", nil)
		}

		sp.ID = primitive.NewObjectID()
		sp.Status = models.StatusActive
		sp.CreatedAt = time.Now()
		sp.UpdatedAt = time.Now()
		res, err := h.Db.InsertOne(h.C, sp)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to create sponsorship", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "sponsorship created", res.InsertedID)
	}
}

// @Summary Update a sponsorship.
// @Tags sponsorships
// @Accept json
// @Param id path string true "Sponsorship id"
// @Produce json
// @Success 200
// @Router /api/sponsorships/:id [put]
func UpdateSponsorship(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid sponsorship id", err.Error())
		}
		sp := new(models.Sponsorship)
		if err = c.BodyParser(sp); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		update := bson.M{"$set": bson.M{
			"name":           sp.Name,
			"phone":          sp.Phone,
			"amount":         sp.Amount,
			"period":         sp.Period,
			"status":         sp.Status,
			"payment_method": sp.PaymentMethod,
			"updated_at":     time.Now(),
		}}
		res, err := h.Db.UpdateOne(h.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to update sponsorship", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "sponsorship not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "sponsorship updated", nil)
	}
}

// @Summary Delete a sponsorship.
// @Tags sponsorships
// @Param id path string true "Sponsorship id"
// @Produce json
// @Success 200
// @Router /api/sponsorships/:id [delete]
func DeleteSponsorship(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid sponsorship id", err.Error())
		}
		res, err := h.Db.DeleteOne(h.C, bson.M{"_id": id})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to delete sponsorship", err.Error())
		}
		if res.DeletedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "sponsorship not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "sponsorship deleted", nil)
	}
}
