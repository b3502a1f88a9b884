package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(app *fiber.App, battleService *services.BattleService) {
	// 🔓 Public listing — user context is optional and only adds the caller's
	// own results on active battles.
	app.Get("/battles", middleware.UserContextMiddleware(), battleService.ListBattles)

	// 🔐 Joining requires user context
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/s/battles/:id/join", battleService.JoinBattleEndpoint)
}
