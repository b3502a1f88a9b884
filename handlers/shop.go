package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupShopRoutes(app *fiber.App, shopService *services.ShopService) {
	// 🔐 The shop shows the caller's balance, so everything is secured
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/s/shop", shopService.ListPrizes)
	secured.Post("/s/shop/:id/purchase", shopService.PurchaseEndpoint)
}
