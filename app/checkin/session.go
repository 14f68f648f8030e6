package checkin

import "github.com/jcruz47/asistenciaqr/app/models"

// Session is the authenticated identity a check-in runs under. It is an
// explicit input to the engine, never ambient state: the zero value means
// nobody is logged in.
type Session struct {
	UserID   int
	Username string
	Name     string
	Role     models.Role
}

func (s Session) Authenticated() bool {
	return s.UserID != 0
}
