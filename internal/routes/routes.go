package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/streaks-api/internal/handlers"
	"github.com/arnold/streaks-api/internal/middleware"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	protected := api.Group("/", middleware.Protected())

	tabs := protected.Group("/tabs")
	tabs.Get("/", h.GetTabs)
	tabs.Post("/", h.CreateTab)
	tabs.Put("/:id", h.UpdateTab)
	tabs.Delete("/:id", h.DeleteTab)
	tabs.Post("/:id/move", h.MoveTab)

	goals := protected.Group("/goals")
	goals.Get("/", h.GetGoals)
	goals.Post("/", h.CreateGoal)
	goals.Put("/:id", h.UpdateGoal)
	goals.Delete("/:id", h.DeleteGoal)
	goals.Post("/:id/move", h.MoveGoal)
	goals.Put("/:id/progress", h.UpdateProgress)
	goals.Post("/:id/progress/toggle", h.ToggleProgress)
	goals.Put("/:id/notes/:date", h.UpdateNote)
	goals.Get("/:id/completion", h.GetCompletion)

	syncGroup := protected.Group("/sync")
	syncGroup.Post("/push", h.SyncPush)
	syncGroup.Post("/pull", h.SyncPull)
	syncGroup.Post("/merge", h.SyncMerge)

	protected.Get("/export", h.ExportGoals)
	protected.Post("/import", h.ImportGoals)
}
