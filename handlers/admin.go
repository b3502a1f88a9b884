package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	// 🔒 Back-office — staff only
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.StaffOnly())

	// Groups (deleting a group cascades to its levels)
	admin.Get("/groups", adminService.ListGroups)
	admin.Post("/groups", adminService.CreateGroup)
	admin.Put("/groups/:id", adminService.UpdateGroup)
	admin.Delete("/groups/:id", adminService.DeleteGroup)

	// Levels
	admin.Get("/levels", adminService.ListLevels)
	admin.Post("/levels", adminService.CreateLevel)
	admin.Put("/levels/:id", adminService.UpdateLevel)
	admin.Delete("/levels/:id", adminService.DeleteLevel)

	// Tasks
	admin.Post("/tasks", adminService.CreateTask)
	admin.Put("/tasks/:id", adminService.UpdateTask)
	admin.Delete("/tasks/:id", adminService.DeleteTask)

	// Prizes
	admin.Post("/prizes", adminService.CreatePrize)
	admin.Put("/prizes/:id", adminService.UpdatePrize)
	admin.Delete("/prizes/:id", adminService.DeletePrize)

	// Battle types
	admin.Get("/battle-types", adminService.ListBattleTypes)
	admin.Post("/battle-types", adminService.CreateBattleType)
	admin.Delete("/battle-types/:id", adminService.DeleteBattleType)

	// Battles + scoring
	admin.Post("/battles", adminService.CreateBattle)
	admin.Patch("/battles/:id/active", adminService.ToggleBattleActive)
	admin.Delete("/battles/:id", adminService.DeleteBattle)
	admin.Put("/battles/:id/results", adminService.SetBattleResult)

	// Notifications
	admin.Post("/notifications", adminService.CreateNotification)
	admin.Patch("/notifications/:id/deactivate", adminService.DeactivateNotification)

	// Profiles
	admin.Get("/profiles", adminService.ListProfiles)
	admin.Patch("/profiles/:id/group", adminService.SetProfileGroup)
	admin.Post("/profiles/:id/grant", adminService.GrantStars)
}
