package workers

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/handlers"
	"github.com/salmankavanur/aic-amal-backend/models"
)

// Reconciler sweeps the leftovers of multi-step flows: checkout sagas that
// never completed, campaign totals that were never incremented, and
// notifications whose send time has arrived.
type Reconciler struct {
	cron          *cron.Cron
	L             *logrus.Logger
	Gateway       *client.RazorpayClient
	Notifications *handlers.NotificationHandler
	SagaDb        *mongo.Collection
	DonationDb    *mongo.Collection
	CampaignDb    *mongo.Collection
	HistoryDb     *mongo.Collection
	C             context.Context
}

func NewReconciler(l *logrus.Logger, gw *client.RazorpayClient, notif *handlers.NotificationHandler) *Reconciler {
	return &Reconciler{
		cron:          cron.New(),
		L:             l,
		Gateway:       gw,
		Notifications: notif,
		SagaDb:        database.GetCollection(os.Getenv("SAGA_COLLECTION")),
		DonationDb:    database.GetCollection(os.Getenv("DONATION_COLLECTION")),
		CampaignDb:    database.GetCollection(os.Getenv("CAMPAIGN_COLLECTION")),
		HistoryDb:     database.GetCollection(os.Getenv("NOTIFICATION_HISTORY_COLLECTION")),
		C:             context.Background(),
	}
}

func (r *Reconciler) Start() {
	_, _ = r.cron.AddFunc("@every 5m", r.ExpireStaleSagas)
	_, _ = r.cron.AddFunc("@every 5m", r.RetryCampaignIncrements)
	_, _ = r.cron.AddFunc("@every 1m", r.DispatchDueNotifications)
	r.cron.Start()
	r.L.Info("reconciler started")
}

// Stop halts scheduling and returns a context that is done once running
// jobs finish.
func (r *Reconciler) Stop() context.Context {
	return r.cron.Stop()
}

// ExpireStaleSagas closes auto-subscribe checkouts abandoned between steps.
// A gateway subscription created but never activated is cancelled so the
// donor is not billed for a signup that never finished.
func (r *Reconciler) ExpireStaleSagas() {
	filter := bson.M{
		"kind":       models.SagaAutoSubscribe,
		"state":      bson.M{"$in": models.ActiveSagaStates()},
		"expires_at": bson.M{"$lt": time.Now()},
	}
	cursor, err := r.SagaDb.Find(r.C, filter)
	if err != nil {
		r.L.Errorf("saga sweep query failed: %s", err.Error())
		return
	}
	sagas := make([]models.CheckoutSaga, 0)
	if err = cursor.All(r.C, &sagas); err != nil {
		r.L.Errorf("saga sweep decode failed: %s", err.Error())
		return
	}

	for _, saga := range sagas {
		if saga.RazorpaySubscriptionId != "" {
			if err = r.Gateway.CancelSubscription(saga.RazorpaySubscriptionId); err != nil {
				// leave the saga for the next sweep
				r.L.Errorf("could not cancel orphaned gateway subscription %s: %s", saga.RazorpaySubscriptionId, err.Error())
				continue
			}
		}
		_, err = r.SagaDb.UpdateOne(r.C,
			bson.M{"_id": saga.ID, "state": saga.State},
			bson.M{"$set": bson.M{"state": models.SagaExpired, "updated_at": time.Now()}})
		if err != nil {
			r.L.Errorf("failed expiring saga %s: %s", saga.ID.Hex(), err.Error())
			continue
		}
		r.L.Infof("expired orphaned checkout %s (was %s)", saga.ID.Hex(), saga.State)
	}
}

// RetryCampaignIncrements re-applies campaign total updates that failed after
// their donation was already saved. The saga state guard makes each
// increment apply at most once.
func (r *Reconciler) RetryCampaignIncrements() {
	filter := bson.M{"kind": models.SagaDonationCampaign, "state": models.SagaIncrementPending}
	cursor, err := r.SagaDb.Find(r.C, filter)
	if err != nil {
		r.L.Errorf("increment sweep query failed: %s", err.Error())
		return
	}
	sagas := make([]models.CheckoutSaga, 0)
	if err = cursor.All(r.C, &sagas); err != nil {
		r.L.Errorf("increment sweep decode failed: %s", err.Error())
		return
	}

	for _, saga := range sagas {
		// claim first so two sweepers cannot both apply
		res, err := r.SagaDb.UpdateOne(r.C,
			bson.M{"_id": saga.ID, "state": models.SagaIncrementPending},
			bson.M{"$set": bson.M{"state": models.SagaCompleted, "updated_at": time.Now()}})
		if err != nil || res.ModifiedCount == 0 {
			continue
		}

		upd, err := r.CampaignDb.UpdateOne(r.C, bson.M{"_id": saga.CampaignId},
			bson.M{"$inc": bson.M{"current_amount": saga.Amount}, "$set": bson.M{"updated_at": time.Now()}})
		if err != nil {
			// roll the claim back so the next sweep retries
			_, _ = r.SagaDb.UpdateOne(r.C, bson.M{"_id": saga.ID},
				bson.M{"$set": bson.M{"state": models.SagaIncrementPending, "last_error": err.Error()}})
			r.L.Errorf("campaign increment retry failed for saga %s: %s", saga.ID.Hex(), err.Error())
			continue
		}
		if upd.MatchedCount == 0 {
			// the campaign is gone; completing would hide the divergence
			_, _ = r.SagaDb.UpdateOne(r.C, bson.M{"_id": saga.ID},
				bson.M{"$set": bson.M{"state": models.SagaFailed, "last_error": "campaign not found", "updated_at": time.Now()}})
			r.L.Errorf("campaign %s missing for saga %s, marked failed", saga.CampaignId.Hex(), saga.ID.Hex())
			continue
		}

		_, _ = r.DonationDb.UpdateOne(r.C, bson.M{"_id": saga.DonationId},
			bson.M{"$set": bson.M{"payment_status": models.PaymentStatusPaid, "updated_at": time.Now()}})
		r.L.Infof("applied deferred campaign increment for donation %s", saga.DonationId.Hex())
	}
}

// DispatchDueNotifications sends scheduled notifications whose time has come.
func (r *Reconciler) DispatchDueNotifications() {
	filter := bson.M{
		"status":        models.NotificationScheduled,
		"scheduled_for": bson.M{"$lte": time.Now()},
	}
	cursor, err := r.HistoryDb.Find(r.C, filter)
	if err != nil {
		r.L.Errorf("notification sweep query failed: %s", err.Error())
		return
	}
	rows := make([]models.NotificationHistory, 0)
	if err = cursor.All(r.C, &rows); err != nil {
		r.L.Errorf("notification sweep decode failed: %s", err.Error())
		return
	}

	for i := range rows {
		row := &rows[i]
		// claim the row so only one worker sends it
		res, err := r.HistoryDb.UpdateOne(r.C,
			bson.M{"_id": row.ID, "status": models.NotificationScheduled},
			bson.M{"$set": bson.M{"status": models.NotificationQueued, "updated_at": time.Now()}})
		if err != nil || res.ModifiedCount == 0 {
			continue
		}

		sent, failed := r.Notifications.Dispatch(row)
		status := models.NotificationSent
		if failed > 0 && sent == 0 {
			status = models.NotificationFailed
		} else if failed > 0 {
			status = models.NotificationPartial
		}
		_, err = r.HistoryDb.UpdateOne(r.C, bson.M{"_id": row.ID}, bson.M{"$set": bson.M{
			"sent_count":   sent,
			"failed_count": failed,
			"status":       status,
			"updated_at":   time.Now(),
		}})
		if err != nil {
			r.L.Errorf("failed recording scheduled send %s: %s", row.ID.Hex(), err.Error())
		}
	}
}
