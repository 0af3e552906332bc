package handlers

import (
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/models"
)

// sagaTTL bounds how long a checkout may sit between steps before the
// reconciler treats it as orphaned.
const sagaTTL = 30 * time.Minute

type SubscriptionHandler struct {
	*Handler
	DonationDb *mongo.Collection
	SagaDb     *mongo.Collection
	Gateway    *client.RazorpayClient
	Auth       *AuthHandler
}

func NewSubscriptionHandler(l *logrus.Logger, gw *client.RazorpayClient, auth *AuthHandler) *SubscriptionHandler {
	return &SubscriptionHandler{
		Handler:    NewHandler(os.Getenv("SUBSCRIPTION_COLLECTION"), l),
		DonationDb: database.GetCollection(os.Getenv("DONATION_COLLECTION")),
		SagaDb:     database.GetCollection(os.Getenv("SAGA_COLLECTION")),
		Gateway:    gw,
		Auth:       auth,
	}
}

// ValidateSignup checks the fields every signup path requires before any
// gateway call is made.
func ValidateSignup(name, phone string, amount float64, period string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	return models.ValidatePeriod(period)
}

func (s *SubscriptionHandler) findByPhone(phone string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.Db.FindOne(s.C, bson.M{"phone": phone, "status": bson.M{"$ne": models.StatusCancelled}}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ensureDonor looks a donor up by phone, creating the record on first signup.
func (s *SubscriptionHandler) ensureDonor(name, phone, district, panchayat string) (*models.Donor, error) {
	donor, err := s.GetDonorByPhone(phone)
	if err == nil {
		return donor, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	d := models.Donor{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Phone:     phone,
		Role:      models.RoleSubscriber,
		District:  district,
		Panchayat: panchayat,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err = s.DonorDb.InsertOne(s.C, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// @Summary Find a subscription by phone number.
// @Description resolve the donor and subscription ids behind a phone.
// @Tags subscriptions
// @Param phone query string true "Donor phone"
// @Produce json
// @Success 200
// @Router /api/subscriptions/search [get]
func SearchSubscription(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		phone := c.Query("phone")
		if err := ValidatePhone(phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		sub, err := s.findByPhone(phone)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "no subscription for this phone", nil)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription found", fiber.Map{
			"donorId":        sub.DonorId.Hex(),
			"subscriptionId": sub.ID.Hex(),
		})
	}
}

// @Summary Subscription detail view.
// @Description donor, subscription, lifetime stats and recent donations.
// @Tags subscriptions
// @Param donorId query string true "Donor id"
// @Param subscriptionId query string true "Subscription id"
// @Produce json
// @Success 200
// @Router /api/subscriptions/details [get]
func SubscriptionDetails(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		donorId, err := primitive.ObjectIDFromHex(c.Query("donorId"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid donor id", err.Error())
		}
		subId, err := primitive.ObjectIDFromHex(c.Query("subscriptionId"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid subscription id", err.Error())
		}

		if !OwnsDonor(CurrentSession(c), donorId) {
			return FiberJsonResponse(c, fiber.StatusForbidden, "error", "not your subscription", nil)
		}

		donor, err := s.GetDonorByID(donorId)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "donor not found", err.Error())
		}
		var sub models.Subscription
		if err = s.Db.FindOne(s.C, bson.M{"_id": subId}).Decode(&sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "subscription not found", err.Error())
		}

		// lifetime stats over the full history, not the loaded page
		stats, err := s.donationStats(subId)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed computing stats", err.Error())
		}

		recent := make([]models.Donation, 0)
		cursor, err := s.DonationDb.Find(s.C, bson.M{"subscription_id": subId},
			mongoFindRecent(10))
		if err != nil {
			s.L.Errorf("failed fetching recent donations for %s: %s", subId.Hex(), err.Error())
		} else if err = cursor.All(s.C, &recent); err != nil {
			s.L.Errorf("failed decoding recent donations for %s: %s", subId.Hex(), err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription details", fiber.Map{
			"donor":        donor,
			"subscription": sub,
			"totalAmount":  stats.TotalAmount,
			"stats":        stats,
			"donations":    recent,
		})
	}
}

func (s *SubscriptionHandler) donationStats(subId primitive.ObjectID) (*models.DonationStats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"subscription_id": subId, "payment_status": models.PaymentStatusPaid}},
		{"$group": bson.M{
			"_id":              nil,
			"total_amount":     bson.M{"$sum": "$amount"},
			"count":            bson.M{"$sum": 1},
			"average_amount":   bson.M{"$avg": "$amount"},
			"first_payment_at": bson.M{"$min": "$payment_date"},
			"last_payment_at":  bson.M{"$max": "$payment_date"},
		}},
	}
	cursor, err := s.DonationDb.Aggregate(s.C, pipeline)
	if err != nil {
		return nil, err
	}
	results := make([]models.DonationStats, 0)
	if err = cursor.All(s.C, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.DonationStats{}, nil
	}
	return &results[0], nil
}

// @Summary Start an auto subscription: create the billing plan.
// @Description rejects duplicate signups before any gateway call, opens a
// @Description checkout saga, then creates the gateway plan.
// @Tags subscriptions
// @Accept json
// @Param plan body models.CreatePlanRequest true "Plan parameters"
// @Produce json
// @Success 200 {object} models.CreatePlanResponse
// @Router /api/create-plan [post]
func CreatePlan(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CreatePlanRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if err := ValidateSignup(req.Name, req.PhoneNumber, req.Amount, req.Period); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		// duplicate signup is rejected before anything reaches the gateway
		if _, err := s.findByPhone(req.PhoneNumber); err == nil {
			return FiberJsonResponse(c, fiber.StatusConflict, "error", "phone already holds a subscription", nil)
		} else if err != mongo.ErrNoDocuments {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking phone", err.Error())
		}

		saga := models.CheckoutSaga{
			ID:             primitive.NewObjectID(),
			Kind:           models.SagaAutoSubscribe,
			State:          models.SagaStarted,
			IdempotencyKey: uuid.NewString(),
			Name:           req.Name,
			Phone:          req.PhoneNumber,
			Amount:         req.Amount,
			Period:         req.Period,
			District:       req.District,
			Panchayat:      req.Panchayat,
			ExpiresAt:      time.Now().Add(sagaTTL),
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if _, err := s.SagaDb.InsertOne(s.C, &saga); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed opening checkout", err.Error())
		}

		planId, err := s.Gateway.CreatePlan(req.Name, req.Amount, req.Period)
		if err != nil {
			_ = s.advanceSaga(saga.ID, saga.State, models.SagaFailed, bson.M{"last_error": err.Error()})
			return FiberJsonResponse(c, fiber.StatusBadGateway, "error", "failed creating plan", err.Error())
		}
		if err = s.advanceSaga(saga.ID, saga.State, models.SagaPlanCreated, bson.M{"plan_id": planId}); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording plan", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "plan created", models.CreatePlanResponse{PlanId: planId})
	}
}

// @Summary Create the gateway subscription for a plan.
// @Description advances the checkout saga from plan_created.
// @Tags subscriptions
// @Accept json
// @Param subscription body models.CreateSubscriptionRequest true "Subscription parameters"
// @Produce json
// @Success 200 {object} models.CreateSubscriptionResponse
// @Router /api/create-subscription [post]
func CreateSubscription(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CreateSubscriptionRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if req.PlanId == "" {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "planId is required", nil)
		}

		var saga models.CheckoutSaga
		err := s.SagaDb.FindOne(s.C, bson.M{"plan_id": req.PlanId, "state": models.SagaPlanCreated}).Decode(&saga)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "no open checkout for this plan", nil)
		}

		subId, err := s.Gateway.CreateSubscription(req.PlanId, saga.Period)
		if err != nil {
			_ = s.advanceSaga(saga.ID, saga.State, models.SagaFailed, bson.M{"last_error": err.Error()})
			return FiberJsonResponse(c, fiber.StatusBadGateway, "error", "failed creating subscription", err.Error())
		}
		if err = s.advanceSaga(saga.ID, saga.State, models.SagaSubscriptionCreated, bson.M{"razorpay_subscription_id": subId}); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording subscription", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription created", models.CreateSubscriptionResponse{SubscriptionId: subId})
	}
}

// @Summary Complete an auto subscription after checkout.
// @Description verifies the gateway callback signature, activates the
// @Description subscription, appends the first donation and closes the saga.
// @Tags subscriptions
// @Accept json
// @Param status body models.UpdateSubscriptionStatusRequest true "Gateway callback fields"
// @Produce json
// @Success 200
// @Router /api/update-subscription-status [post]
func UpdateSubscriptionStatus(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.UpdateSubscriptionStatusRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		if !s.Gateway.VerifySubscriptionPayment(req.RazorpaySubscriptionId, req.RazorpayPaymentId, req.RazorpaySignature) {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "payment signature verification failed", nil)
		}

		var saga models.CheckoutSaga
		err := s.SagaDb.FindOne(s.C, bson.M{
			"razorpay_subscription_id": req.RazorpaySubscriptionId,
			"state":                    models.SagaSubscriptionCreated,
		}).Decode(&saga)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "no open checkout for this subscription", nil)
		}

		donor, err := s.ensureDonor(saga.Name, saga.Phone, saga.District, saga.Panchayat)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed resolving donor", err.Error())
		}

		now := time.Now()
		sub := models.Subscription{
			ID:                     primitive.NewObjectID(),
			DonorId:                donor.ID,
			Amount:                 saga.Amount,
			Name:                   saga.Name,
			Phone:                  saga.Phone,
			Method:                 models.MethodAuto,
			Status:                 models.StatusActive,
			Period:                 saga.Period,
			District:               saga.District,
			Panchayat:              saga.Panchayat,
			LastPaymentAt:          now,
			PlanId:                 saga.PlanId,
			RazorpaySubscriptionId: req.RazorpaySubscriptionId,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if _, err = s.Db.InsertOne(s.C, &sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed creating subscription", err.Error())
		}

		donation := models.Donation{
			ID:                primitive.NewObjectID(),
			DonorId:           donor.ID,
			SubscriptionId:    sub.ID,
			Amount:            saga.Amount,
			Type:              "subscription",
			Name:              saga.Name,
			Phone:             saga.Phone,
			Method:            models.MethodAuto,
			Status:            models.StatusActive,
			District:          saga.District,
			Panchayat:         saga.Panchayat,
			RazorpayPaymentId: req.RazorpayPaymentId,
			RazorpayOrderId:   req.RazorpayOrderId,
			PaymentStatus:     models.PaymentStatusPaid,
			PaymentMethod:     models.PaymentMethodOnline,
			PaymentDate:       now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err = s.DonationDb.InsertOne(s.C, &donation); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording donation", err.Error())
		}

		if err = s.advanceSaga(saga.ID, saga.State, models.SagaCompleted, bson.M{}); err != nil {
			s.L.Errorf("saga %s completed but state write failed: %s", saga.ID.Hex(), err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription active", fiber.Map{"id": sub.ID.Hex()})
	}
}

// @Summary Create a manual subscription after a verified one-off payment.
// @Description duplicate phones are accepted as a no-op with exist true.
// @Tags subscriptions
// @Accept json
// @Param subscription body models.NewSubscriptionRequest true "Signup fields plus payment identifiers"
// @Produce json
// @Success 200
// @Router /api/subscriptions/new [post]
func CreateManualSubscription(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.NewSubscriptionRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if err := ValidateSignup(req.Name, req.Phone, req.Amount, req.Period); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		if !s.Gateway.VerifyPayment(req.RazorpayOrderId, req.RazorpayPaymentId, req.RazorpaySignature) {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "payment signature verification failed", nil)
		}

		if _, err := s.findByPhone(req.Phone); err == nil {
			return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription already exists", fiber.Map{"exist": true})
		} else if err != mongo.ErrNoDocuments {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking phone", err.Error())
		}

		donor, err := s.ensureDonor(req.Name, req.Phone, req.District, req.Panchayat)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed resolving donor", err.Error())
		}

		now := time.Now()
		sub := models.Subscription{
			ID:            primitive.NewObjectID(),
			DonorId:       donor.ID,
			Amount:        req.Amount,
			Name:          req.Name,
			Phone:         req.Phone,
			Method:        models.MethodManual,
			Status:        models.StatusActive,
			Period:        req.Period,
			District:      req.District,
			Panchayat:     req.Panchayat,
			LastPaymentAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err = s.Db.InsertOne(s.C, &sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed creating subscription", err.Error())
		}

		donation := models.Donation{
			ID:                primitive.NewObjectID(),
			DonorId:           donor.ID,
			SubscriptionId:    sub.ID,
			Amount:            req.Amount,
			Type:              "subscription",
			Name:              req.Name,
			Phone:             req.Phone,
			Method:            models.MethodManual,
			Status:            models.StatusActive,
			District:          req.District,
			Panchayat:         req.Panchayat,
			RazorpayPaymentId: req.RazorpayPaymentId,
			RazorpayOrderId:   req.RazorpayOrderId,
			PaymentStatus:     models.PaymentStatusPaid,
			PaymentMethod:     models.PaymentMethodOnline,
			PaymentDate:       now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err = s.DonationDb.InsertOne(s.C, &donation); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording donation", err.Error())
		}

		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription created", fiber.Map{
			"exist":          false,
			"subscriptionId": sub.ID.Hex(),
			"donorId":        donor.ID.Hex(),
			"donationId":     donation.ID.Hex(),
		})
	}
}

// @Summary Cancel a manual subscription.
// @Description deactivates the subscription, then revokes the donor's
// @Description sessions. Revocation only happens after the cancel succeeded.
// @Tags subscriptions
// @Param subscriptionId query string true "Subscription id"
// @Produce json
// @Success 200
// @Router /api/subscriptions/cancel [delete]
func CancelManualSubscription(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		subId, err := primitive.ObjectIDFromHex(c.Query("subscriptionId"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid subscription id", err.Error())
		}

		var sub models.Subscription
		if err = s.Db.FindOne(s.C, bson.M{"_id": subId, "method": models.MethodManual}).Decode(&sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "subscription not found", nil)
		}
		if !OwnsDonor(CurrentSession(c), sub.DonorId) {
			return FiberJsonResponse(c, fiber.StatusForbidden, "error", "not your subscription", nil)
		}

		update := bson.M{"$set": bson.M{"status": models.StatusCancelled, "updated_at": time.Now()}}
		if _, err = s.Db.UpdateOne(s.C, bson.M{"_id": subId}, update); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed cancelling subscription", err.Error())
		}

		if err = s.Auth.RevokeDonorSessions(sub.DonorId); err != nil {
			s.L.Errorf("cancelled subscription %s but session revocation failed: %s", subId.Hex(), err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription cancelled", nil)
	}
}

// @Summary Cancel an auto subscription at the gateway.
// @Description cancels gateway-side billing first; local state and sessions
// @Description only change when the gateway confirmed the cancel.
// @Tags subscriptions
// @Accept json
// @Param cancel body models.CancelSubscriptionRequest true "Subscription id"
// @Produce json
// @Success 200
// @Router /api/cancel-subscription [post]
func CancelAutoSubscription(s *SubscriptionHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CancelSubscriptionRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		subId, err := primitive.ObjectIDFromHex(req.SubscriptionId)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid subscription id", err.Error())
		}

		var sub models.Subscription
		if err = s.Db.FindOne(s.C, bson.M{"_id": subId, "method": models.MethodAuto}).Decode(&sub); err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", "subscription not found", nil)
		}
		if !OwnsDonor(CurrentSession(c), sub.DonorId) {
			return FiberJsonResponse(c, fiber.StatusForbidden, "error", "not your subscription", nil)
		}

		if err = s.Gateway.CancelSubscription(sub.RazorpaySubscriptionId); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadGateway, "error", "gateway cancellation failed", err.Error())
		}

		update := bson.M{"$set": bson.M{"status": models.StatusCancelled, "updated_at": time.Now()}}
		if _, err = s.Db.UpdateOne(s.C, bson.M{"_id": subId}, update); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed recording cancellation", err.Error())
		}

		if err = s.Auth.RevokeDonorSessions(sub.DonorId); err != nil {
			s.L.Errorf("cancelled subscription %s but session revocation failed: %s", subId.Hex(), err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "subscription cancelled", fiber.Map{"success": true})
	}
}

// advanceSaga applies a state transition guarded by the transition table and
// the current state, so replays and races cannot double-apply a step.
func (s *SubscriptionHandler) advanceSaga(id primitive.ObjectID, from, to models.SagaState, extra bson.M) error {
	if !from.CanAdvance(to) {
		return errors.New("illegal saga transition")
	}
	set := bson.M{"state": to, "updated_at": time.Now()}
	for k, v := range extra {
		set[k] = v
	}
	res, err := s.SagaDb.UpdateOne(s.C, bson.M{"_id": id, "state": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("saga state changed concurrently")
	}
	return nil
}
