package handlers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/models"
)

type DonationHandler struct {
	*Handler
	CampaignDb     *mongo.Collection
	SagaDb         *mongo.Collection
	SubscriptionDb *mongo.Collection
	Gateway        *client.RazorpayClient
}

func NewDonationHandler(l *logrus.Logger, gw *client.RazorpayClient) *DonationHandler {
	return &DonationHandler{
		Handler:        NewHandler(os.Getenv("DONATION_COLLECTION"), l),
		CampaignDb:     database.GetCollection(os.Getenv("CAMPAIGN_COLLECTION")),
		SagaDb:         database.GetCollection(os.Getenv("SAGA_COLLECTION")),
		SubscriptionDb: database.GetCollection(os.Getenv("SUBSCRIPTION_COLLECTION")),
		Gateway:        gw,
	}
}

// @Summary Create a gateway order for a one-off payment.
// @Description amount is in rupees; the gateway receives paise.
// @Tags donations
// @Accept json
// @Param order body models.CreateOrderRequest true "Order amount"
// @Produce json
// @Success 200
// @Router /api/orders [post]
func CreateOrder(d *DonationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CreateOrderRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if req.Amount <= 0 {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "amount must be greater than zero", nil)
		}
		receipt := req.Receipt
		if receipt == "" {
			receipt = "donation-" + uuid.NewString()
		}
		orderId, err := d.Gateway.CreateOrder(req.Amount, receipt)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadGateway, "error", "failed creating order", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "order created", fiber.Map{"orderId": orderId})
	}
}

// @Summary Record a donation.
// @Description appends the donation; campaign-tied donations also update the
// @Description campaign total through a compensated saga step.
// @Tags donations
// @Accept json
// @Param donation body models.CreateDonationRequest true "Donation fields"
// @Produce json
// @Success 200
// @Router /api/donations [post]
func CreateDonation(d *DonationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CreateDonationRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if req.Amount <= 0 {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "amount must be greater than zero", nil)
		}
		if err := ValidatePhone(req.Phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		method := models.PaymentMethod(req.PaymentMethod)
		if method == "" {
			// legacy clients without the explicit field
			method = models.PaymentMethodFromGatewayID(req.RazorpayPaymentId)
		} else if !method.Valid() {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid payment method", nil)
		}

		// online payments must carry a verifiable gateway signature
		if method == models.PaymentMethodOnline {
			if !d.Gateway.VerifyPayment(req.RazorpayOrderId, req.RazorpayPaymentId, req.RazorpaySignature) {
				return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "payment signature verification failed", nil)
			}
		}

		donation := models.Donation{
			ID:                primitive.NewObjectID(),
			Amount:            req.Amount,
			Type:              req.Type,
			Name:              req.Name,
			Phone:             req.Phone,
			District:          req.District,
			Panchayat:         req.Panchayat,
			RazorpayPaymentId: req.RazorpayPaymentId,
			RazorpayOrderId:   req.RazorpayOrderId,
			PaymentStatus:     models.PaymentStatusPaid,
			PaymentMethod:     method,
			PaymentDate:       time.Now(),
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}
		if id, err := primitive.ObjectIDFromHex(req.DonorId); err == nil {
			donation.DonorId = id
		}
		if id, err := primitive.ObjectIDFromHex(req.SubscriptionId); err == nil {
			donation.SubscriptionId = id
		}
		if id, err := primitive.ObjectIDFromHex(req.BoxId); err == nil {
			donation.BoxId = id
		}

		var campaignId primitive.ObjectID
		if req.CampaignId != "" {
			id, err := primitive.ObjectIDFromHex(req.CampaignId)
			if err != nil {
				return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid campaign id", err.Error())
			}
			// the campaign must exist before anything is written against it
			count, err := d.CampaignDb.CountDocuments(d.C, bson.M{"_id": id})
			if err != nil {
				return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking campaign", err.Error())
			}
			if count == 0 {
				return FiberJsonResponse(c, fiber.StatusNotFound, "error", "campaign not found", nil)
			}
			campaignId = id
			donation.CampaignId = id
		}

		if _, err := d.Db.InsertOne(d.C, &donation); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording donation", err.Error())
		}

		if !campaignId.IsZero() {
			if err := d.applyCampaignIncrement(donation.ID, campaignId, donation.Amount); err != nil {
				// donation is saved; the increment is retried by the reconciler
				d.L.Errorf("campaign increment deferred for donation %s: %s", donation.ID.Hex(), err.Error())
			}
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "donation recorded", fiber.Map{"id": donation.ID.Hex()})
	}
}

// applyCampaignIncrement runs the donation->campaign-total step. The saga row
// goes in first so a failed or crashed increment leaves something to sweep;
// the two writes are never silently allowed to diverge.
func (d *DonationHandler) applyCampaignIncrement(donationId, campaignId primitive.ObjectID, amount float64) error {
	saga := models.CheckoutSaga{
		ID:             primitive.NewObjectID(),
		Kind:           models.SagaDonationCampaign,
		State:          models.SagaIncrementPending,
		IdempotencyKey: uuid.NewString(),
		Amount:         amount,
		DonationId:     donationId,
		CampaignId:     campaignId,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if _, err := d.SagaDb.InsertOne(d.C, &saga); err != nil {
		return err
	}

	res, err := d.CampaignDb.UpdateOne(d.C, bson.M{"_id": campaignId},
		bson.M{"$inc": bson.M{"current_amount": amount}, "$set": bson.M{"updated_at": time.Now()}})
	if err != nil || res.MatchedCount == 0 {
		_, _ = d.Db.UpdateOne(d.C, bson.M{"_id": donationId},
			bson.M{"$set": bson.M{"payment_status": models.PaymentStatusReconcilePending}})
		if err != nil {
			return err
		}
		return mongo.ErrNoDocuments
	}

	_, err = d.SagaDb.UpdateOne(d.C, bson.M{"_id": saga.ID, "state": models.SagaIncrementPending},
		bson.M{"$set": bson.M{"state": models.SagaCompleted, "updated_at": time.Now()}})
	return err
}

// @Summary Paginated donation history for a subscription.
// @Description page past the end returns an empty data array, not an error.
// @Tags donations
// @Param subscriptionId query string true "Subscription id"
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size"
// @Produce json
// @Success 200
// @Router /api/donations/subhistory [get]
func SubscriptionHistory(d *DonationHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		subId, err := primitive.ObjectIDFromHex(c.Query("subscriptionId"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid subscription id", err.Error())
		}

		var sub models.Subscription
		if err = d.SubscriptionDb.FindOne(d.C, bson.M{"_id": subId}).Decode(&sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "subscription not found", nil)
		}
		if !OwnsDonor(CurrentSession(c), sub.DonorId) {
			return FiberJsonResponse(c, fiber.StatusForbidden, "error", "not your subscription", nil)
		}

		page, limit := ParsePageParams(c)

		filter := bson.M{"subscription_id": subId}
		totalItems, err := d.Db.CountDocuments(d.C, filter)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed counting donations", err.Error())
		}

		donations := make([]models.Donation, 0)
		opts := options.Find().
			SetSort(bson.D{{Key: "payment_date", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := d.Db.Find(d.C, filter, opts)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed fetching donations", err.Error())
		}
		if err = cursor.All(d.C, &donations); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed decoding donations", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "donation history", fiber.Map{
			"data":       donations,
			"pagination": NewPagination(page, limit, totalItems),
		})
	}
}
