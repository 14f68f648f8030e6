package classes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/models"
	"github.com/jcruz47/asistenciaqr/app/routes/auth"
)

func SetupClassesRoutes(app *fiber.App) {
	api := app.Group("/api/classes")
	api.Use(auth.AuthMiddleware)

	// Admin-only management
	admin := auth.RoleMiddleware(models.RoleAdmin)
	api.Get("/", admin, GetClassesAPI)
	api.Post("/", admin, CreateClassAPI)
	api.Post("/:id/rotate-token", admin, RotateClassTokenAPI)
	api.Delete("/:id", admin, DeleteClassAPI)

	// Shared with the owning teacher (ownership checked per class)
	staff := auth.RoleMiddleware(models.RoleAdmin, models.RoleTeacher)
	api.Get("/:id", staff, GetClassAPI)
	api.Post("/:id/activate", staff, SetClassActiveAPI)

	// Teacher panel
	my := app.Group("/api/my/classes")
	my.Use(auth.AuthMiddleware, auth.RoleMiddleware(models.RoleTeacher))
	my.Get("/", GetMyClassesAPI)
}
