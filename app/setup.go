package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/config"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/handlers"
	"github.com/salmankavanur/aic-amal-backend/router"
	"github.com/salmankavanur/aic-amal-backend/workers"
)

var l = logrus.New()

// SetupAndRunApp handle app and database start and graceful shutdown
func SetupAndRunApp() error {
	if err := config.LoadENV(); err != nil {
		l.Warnf("no .env file loaded: %s", err.Error())
	}

	// start database
	err := database.StartMongoDB()
	if err != nil {
		return err
	}

	// defer closing database
	defer database.CloseMongoDB()

	// donor/session cache; the app runs without it
	if err = database.StartRedis(); err != nil {
		l.Warnf("redis unavailable, session caching disabled: %s", err.Error())
	}
	defer database.CloseRedis()

	// create app
	app := fiber.New()

	// attach middleware
	FiberMiddleware(app)

	// setup routes
	router.SetupRoutes(app)

	// attach swagger
	config.AddSwaggerRoutes(app)

	// background sweeps for orphaned checkouts and scheduled notifications
	gateway := client.NewRazorpayClient(l)
	sms := client.NewTwilioClient(l)
	notifications := handlers.NewNotificationHandler(l, client.NewPushClient(l), client.NewEmailClient(l), sms)
	reconciler := workers.NewReconciler(l, gateway, notifications)
	reconciler.Start()

	StartServerWithGracefulShutdown(app, reconciler)

	return nil
}
