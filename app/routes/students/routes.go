package students

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/models"
	"github.com/jcruz47/asistenciaqr/app/routes/auth"
)

func SetupStudentsRoutes(app *fiber.App) {
	api := app.Group("/api/students")
	api.Use(auth.AuthMiddleware, auth.RoleMiddleware(models.RoleAdmin))

	api.Get("/", GetStudentsAPI)
	api.Post("/", CreateStudentAPI)
	api.Delete("/:id", DeleteStudentAPI)
	api.Post("/:id/enroll", EnrollStudentAPI)

	// Student panel
	my := app.Group("/api/my/attendance")
	my.Use(auth.AuthMiddleware, auth.RoleMiddleware(models.RoleStudent))
	my.Get("/", GetMyAttendanceAPI)
}
