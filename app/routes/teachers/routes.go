package teachers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/models"
	"github.com/jcruz47/asistenciaqr/app/routes/auth"
)

func SetupTeachersRoutes(app *fiber.App) {
	api := app.Group("/api/teachers")
	api.Use(auth.AuthMiddleware, auth.RoleMiddleware(models.RoleAdmin))

	api.Get("/", GetTeachersAPI)
	api.Post("/", CreateTeacherAPI)
	api.Delete("/:id", DeleteTeacherAPI)
}
