package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFeedRoutes(app *fiber.App, feedService *services.FeedService) {
	// 🔓 Public pages — no user context required, but still behind Gateway auth
	app.Get("/", feedService.Home)
	app.Get("/notifications", feedService.Notifications)
	app.Get("/leaderboard", feedService.Leaderboard)

	// 🔐 Personal cabinet
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/s/profile", feedService.Profile)
}
