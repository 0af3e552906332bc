package router

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/handlers"
	"github.com/salmankavanur/aic-amal-backend/models"
)

// Create a new instance of the logger.
var l = logrus.New()

func SetupRoutes(app *fiber.App) {
	gateway := client.NewRazorpayClient(l)
	sms := client.NewTwilioClient(l)
	push := client.NewPushClient(l)
	email := client.NewEmailClient(l)

	authHandler := handlers.NewAuthHandler(l, sms)
	subscriptionHandler := handlers.NewSubscriptionHandler(l, gateway, authHandler)
	donationHandler := handlers.NewDonationHandler(l, gateway)
	notificationHandler := handlers.NewNotificationHandler(l, push, email, sms)
	campaignHandler := handlers.NewHandler(os.Getenv("CAMPAIGN_COLLECTION"), l)
	boxHandler := handlers.NewHandler(os.Getenv("BOX_COLLECTION"), l)
	sponsorshipHandler := handlers.NewHandler(os.Getenv("SPONSORSHIP_COLLECTION"), l)

	rcache := database.GetCache()
	subscriberOnly := RequireSession(authHandler.SessionDb, rcache, models.RoleSubscriber)
	adminOnly := RequireSession(authHandler.SessionDb, rcache, models.RoleAdmin)
	anySession := RequireSession(authHandler.SessionDb, rcache)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Hello, World!",
		})
	})

	app.Get("/health", handlers.HandleHealthCheck)

	api := app.Group("/api")

	// donor identity and login
	api.Post("/check-phone", handlers.CheckPhone(authHandler))
	auth := api.Group("/auth")
	auth.Post("/otp/request", handlers.RequestOtp(authHandler))
	auth.Post("/otp/verify", handlers.VerifyOtp(authHandler))
	auth.Post("/logout", anySession, handlers.Logout(authHandler))
	auth.Post("/admin/login", handlers.AdminLogin(authHandler))

	// auto subscription checkout
	api.Post("/create-plan", handlers.CreatePlan(subscriptionHandler))
	api.Post("/create-subscription", handlers.CreateSubscription(subscriptionHandler))
	api.Post("/update-subscription-status", handlers.UpdateSubscriptionStatus(subscriptionHandler))
	api.Post("/cancel-subscription", subscriberOnly, handlers.CancelAutoSubscription(subscriptionHandler))

	subscriptions := api.Group("/subscriptions")
	subscriptions.Get("/search", handlers.SearchSubscription(subscriptionHandler))
	subscriptions.Get("/details", subscriberOnly, handlers.SubscriptionDetails(subscriptionHandler))
	subscriptions.Post("/new", handlers.CreateManualSubscription(subscriptionHandler))
	subscriptions.Delete("/cancel", subscriberOnly, handlers.CancelManualSubscription(subscriptionHandler))

	// payments
	api.Post("/orders", handlers.CreateOrder(donationHandler))
	donations := api.Group("/donations")
	donations.Post("/", handlers.CreateDonation(donationHandler))
	donations.Get("/subhistory", subscriberOnly, handlers.SubscriptionHistory(donationHandler))

	// admin dashboards
	campaigns := api.Group("/campaigns")
	campaigns.Get("/", handlers.ListCampaigns(campaignHandler))
	campaigns.Get("/:id", handlers.GetCampaign(campaignHandler))
	campaigns.Post("/", adminOnly, handlers.CreateCampaign(campaignHandler))
	campaigns.Put("/:id", adminOnly, handlers.UpdateCampaign(campaignHandler))
	campaigns.Delete("/:id", adminOnly, handlers.DeleteCampaign(campaignHandler))
	campaigns.Post("/:id/update-amount", adminOnly, handlers.UpdateCampaignAmount(campaignHandler))

	boxes := api.Group("/boxes", adminOnly)
	boxes.Get("/", handlers.ListBoxes(boxHandler))
	boxes.Post("/", handlers.CreateBox(boxHandler))
	boxes.Put("/:id", handlers.UpdateBox(boxHandler))
	boxes.Delete("/:id", handlers.DeleteBox(boxHandler))
	boxes.Post("/:id/collect", handlers.RecordBoxCollection(boxHandler))

	sponsorships := api.Group("/sponsorships")
	sponsorships.Post("/", handlers.CreateSponsorship(sponsorshipHandler))
	sponsorships.Get("/", adminOnly, handlers.ListSponsorships(sponsorshipHandler))
	sponsorships.Put("/:id", adminOnly, handlers.UpdateSponsorship(sponsorshipHandler))
	sponsorships.Delete("/:id", adminOnly, handlers.DeleteSponsorship(sponsorshipHandler))

	notifications := api.Group("/notifications", adminOnly)
	notifications.Post("/send", handlers.SendNotification(notificationHandler))
	notifications.Get("/history", handlers.NotificationHistoryList(notificationHandler))
	notifications.Get("/templates", handlers.ListTemplates(notificationHandler))
	notifications.Post("/templates", handlers.CreateTemplate(notificationHandler))
	notifications.Put("/templates/:id", handlers.UpdateTemplate(notificationHandler))
	notifications.Delete("/templates/:id", handlers.DeleteTemplate(notificationHandler))
}
