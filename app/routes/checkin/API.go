package checkin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/checkin"
	"github.com/jcruz47/asistenciaqr/app/routes/auth"
)

// RegisterAttendanceAPI handles a scanned check-in URL. The two query
// parameters are handed to the engine as-is; the session may be empty and
// the engine reports AuthenticationRequired so the client can show the
// login form and resubmit.
func RegisterAttendanceAPI(eng *checkin.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := checkin.Request{
			ClassID: c.Query("clase_id"),
			Token:   c.Query("token"),
		}
		sess := auth.SessionFromRequest(c)

		result := eng.Submit(c.Context(), req, sess)

		body := fiber.Map{
			"outcome": result.Outcome,
			"message": result.Outcome.Message(),
		}
		if result.Class != nil {
			body["class"] = result.Class.Name
		}
		if result.Outcome == checkin.OutcomeAccepted {
			body["attendance"] = result.Record
		}

		return c.Status(result.Outcome.HTTPStatus()).JSON(body)
	}
}
