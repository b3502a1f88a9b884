package handlers

import (
	"star-rewards-system/middleware"
	"star-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService) {
	// 🔓 Task catalog is public
	app.Get("/tasks", taskService.ListTasks)

	// 🔐 Completing a task requires user context
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/s/tasks/:id/complete", taskService.CompleteTaskEndpoint)
}
