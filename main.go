package main

import (
	"github.com/salmankavanur/aic-amal-backend/app"
)

// @title AIC Amal Donation Backend API
// @version 0.1
// @description REST backend for the AIC Amal donation platform: subscriptions, campaigns, boxes, sponsorships and notifications.
// @contact.name Salman Kavanur
// @license.name MIT
// @host localhost:3000
// @BasePath /
func main() {
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
