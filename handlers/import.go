package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupImportRoutes(app *fiber.App, importService *services.ImportService) {
	// 🔒 Performance imports move stars in bulk — staff only
	staff := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.StaffOnly())

	staff.Post("/import", importService.ImportFileEndpoint)
	staff.Post("/import/remote", importService.ImportRemoteEndpoint)
	staff.Get("/import/test", importService.TestExportEndpoint)
	staff.Get("/import/batches", importService.ListBatchesEndpoint)
}
