package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salmankavanur/aic-amal-backend/models"
)

// @Summary List donation boxes.
// @Tags boxes
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size"
// @Produce json
// @Success 200 {object} []models.Box
// @Router /api/boxes [get]
func ListBoxes(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		page, limit := ParsePageParams(c)
		filter := bson.M{}
		if active := c.Query("isActive"); active != "" {
			filter["is_active"] = active == "true"
		}

		totalItems, err := h.Db.CountDocuments(h.C, filter)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed counting boxes", err.Error())
		}

		boxes := make([]models.Box, 0)
		opts := options.Find().
			SetSort(bson.D{{Key: "registered_date", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := h.Db.Find(h.C, filter, opts)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching boxes", err.Error())
		}
		if err = cursor.All(h.C, &boxes); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding boxes", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "boxes", fiber.Map{
			"data":       boxes,
			"pagination": NewPagination(page, limit, totalItems),
		})
	}
}

// @Summary Register a donation box.
// @Tags boxes
// @Accept json
// @Param box body models.Box true "Box to register"
// @Produce json
// @Success 200 {object} DBInsertResponse
// @Router /api/boxes [post]
func CreateBox(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		box := new(models.Box)
		if err := c.BodyParser(box); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if box.SerialNumber == "" {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "serial number is required", nil)
		}
		if err := ValidatePhone(box.Phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		// serial numbers are unique across the fleet
		count, err := h.Db.CountDocuments(h.C, bson.M{"serial_number": box.SerialNumber})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking serial number", err.Error())
		}
		if count > 0 {
			return FiberJsonResponse(c, fiber.StatusConflict, "error", "serial number already registered", nil)
		}

		box.ID = primitive.NewObjectID()
		box.IsActive = true
		box.RegisteredDate = time.Now()
		box.CreatedAt = time.Now()
		box.UpdatedAt = time.Now()
		res, err := h.Db.InsertOne(h.C, box)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to register box", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "box registered", res.InsertedID)
	}
}

// @Summary Update a donation box.
// @Tags boxes
// @Accept json
// @Param id path string true "Box id"
// @Produce json
// @Success 200
// @Router /api/boxes/:id [put]
func UpdateBox(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid box id", err.Error())
		}
		box := new(models.Box)
		if err = c.BodyParser(box); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		update := bson.M{"$set": bson.M{
			"name":       box.Name,
			"phone":      box.Phone,
			"is_active":  box.IsActive,
			"updated_at": time.Now(),
		}}
		res, err := h.Db.UpdateOne(h.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to update box", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "box not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "box updated", nil)
	}
}

// @Summary Delete a donation box.
// @Tags boxes
// @Param id path string true "Box id"
// @Produce json
// @Success 200
// @Router /api/boxes/:id [delete]
func DeleteBox(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid box id", err.Error())
		}
		res, err := h.Db.DeleteOne(h.C, bson.M{"_id": id})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed to delete box", err.Error())
		}
		if res.DeletedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "box not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "box deleted", nil)
	}
}

// @Summary Record a box collection payment.
// @Description updates last_payment on the box after a collection visit.
// @Tags boxes
// @Accept json
// @Param id path string true "Box id"
// @Produce json
// @Success 200
// @Router /api/boxes/:id/collect [post]
func RecordBoxCollection(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid box id", err.Error())
		}
		update := bson.M{"$set": bson.M{"last_payment": time.Now(), "updated_at": time.Now()}}
		res, err := h.Db.UpdateOne(h.C, bson.M{"_id": id}, update)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording collection", err.Error())
		}
		if res.MatchedCount == 0 {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "box not found", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "collection recorded", nil)
	}
}
