package checkin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/checkin"
)

func SetupCheckinRoutes(app *fiber.App, eng *checkin.Engine) {
	handler := RegisterAttendanceAPI(eng)

	app.Get("/checkin", handler)
	app.Post("/checkin", handler)

	// Printed QR codes point at the site root with ?clase_id=&token=.
	app.Get("/", func(c *fiber.Ctx) error {
		if c.Query("clase_id") == "" && c.Query("token") == "" {
			return c.JSON(fiber.Map{"service": "asistenciaqr", "status": "ok"})
		}
		return handler(c)
	})
}
