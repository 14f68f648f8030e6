package checkin

import "github.com/jcruz47/asistenciaqr/app/models"

// Outcome is the closed set of results a check-in submission can have.
// Every rejection is terminal for that invocation; only the caller decides
// whether to re-prompt (e.g. show the login form on AuthenticationRequired).
type Outcome string

const (
	OutcomeAccepted               Outcome = "accepted"
	OutcomeMalformedRequest       Outcome = "malformed_request"
	OutcomeAuthenticationRequired Outcome = "authentication_required"
	OutcomeRoleForbidden          Outcome = "role_forbidden"
	OutcomeTokenInvalid           Outcome = "token_invalid"
	OutcomeClassInactive          Outcome = "class_inactive"
	OutcomeNotEnrolled            Outcome = "not_enrolled"
	OutcomeAlreadyCheckedIn       Outcome = "already_checked_in"
	OutcomeStorageUnavailable     Outcome = "storage_unavailable"
)

// Result is what Submit returns. Record and Class are set only on
// OutcomeAccepted (Class additionally on the post-lookup rejections that
// resolved one, so callers can name the class in their message).
type Result struct {
	Outcome Outcome
	Record  *models.AttendanceRecord
	Class   *models.Class
}

// HTTPStatus maps an outcome to the status code the HTTP layer serves.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeAccepted:
		return 201
	case OutcomeMalformedRequest:
		return 400
	case OutcomeAuthenticationRequired:
		return 401
	case OutcomeRoleForbidden, OutcomeNotEnrolled:
		return 403
	case OutcomeTokenInvalid:
		return 404
	case OutcomeClassInactive, OutcomeAlreadyCheckedIn:
		return 409
	case OutcomeStorageUnavailable:
		return 503
	default:
		return 500
	}
}

// Message is the user-facing explanation for each outcome. TokenInvalid
// deliberately does not say whether the class id or the token was wrong.
func (o Outcome) Message() string {
	switch o {
	case OutcomeAccepted:
		return "Attendance recorded"
	case OutcomeMalformedRequest:
		return "Invalid check-in link: missing or malformed parameters"
	case OutcomeAuthenticationRequired:
		return "You must log in as a student to record attendance"
	case OutcomeRoleForbidden:
		return "Only students can record attendance"
	case OutcomeTokenInvalid:
		return "Class not found: make sure you scanned the most recent QR code"
	case OutcomeClassInactive:
		return "This class is currently deactivated"
	case OutcomeNotEnrolled:
		return "You are not enrolled in this class"
	case OutcomeAlreadyCheckedIn:
		return "You already recorded attendance for this class"
	case OutcomeStorageUnavailable:
		return "Service temporarily unavailable, try again later"
	default:
		return "Unexpected error"
	}
}
