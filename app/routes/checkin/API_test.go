package checkin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcruz47/asistenciaqr/app/checkin"
	"github.com/jcruz47/asistenciaqr/app/models"
	"github.com/jcruz47/asistenciaqr/app/routes/auth"
)

type stubRegistry struct {
	class    *models.Class
	enrolled bool
}

func (r *stubRegistry) FindByIDAndToken(ctx context.Context, classID int, token string) (*models.Class, error) {
	if r.class == nil || r.class.ID != classID || r.class.QRToken != token {
		return nil, checkin.ErrNotFound
	}
	copied := *r.class
	return &copied, nil
}

func (r *stubRegistry) IsEnrolled(ctx context.Context, studentID, classID int) (bool, error) {
	return r.enrolled, nil
}

type stubLedger struct {
	mu      sync.Mutex
	records map[[2]int]bool
	nextID  int
}

func (l *stubLedger) HasRecord(ctx context.Context, studentID, classID int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[[2]int{studentID, classID}], nil
}

func (l *stubLedger) Append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := [2]int{studentID, classID}
	if l.records[key] {
		return nil, checkin.ErrDuplicate
	}
	if l.records == nil {
		l.records = make(map[[2]int]bool)
	}
	l.records[key] = true
	l.nextID++
	return &models.AttendanceRecord{ID: l.nextID, StudentID: studentID, ClassID: classID}, nil
}

func newTestApp() *fiber.App {
	registry := &stubRegistry{
		class:    &models.Class{ID: 7, Name: "Historia", TeacherID: 2, QRToken: "abc123", Active: true},
		enrolled: true,
	}
	ledger := &stubLedger{records: make(map[[2]int]bool)}

	app := fiber.New()
	SetupCheckinRoutes(app, checkin.NewEngine(registry, ledger))
	return app
}

func doCheckin(t *testing.T, app *fiber.App, url string, user *models.User) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	if user != nil {
		token, err := auth.GenerateJWT(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func student() *models.User {
	return &models.User{ID: 42, Username: "maria", Name: "María", Role: models.RoleStudent}
}

func TestCheckin_RootWithoutParamsIsServiceInfo(t *testing.T) {
	app := newTestApp()

	status, body := doCheckin(t, app, "/", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "asistenciaqr", body["service"])
}

func TestCheckin_Unauthenticated(t *testing.T) {
	app := newTestApp()

	status, body := doCheckin(t, app, "/?clase_id=7&token=abc123", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, string(checkin.OutcomeAuthenticationRequired), body["outcome"])
}

func TestCheckin_InvalidCookieCountsAsUnauthenticated(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/checkin?clase_id=7&token=abc123", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCheckin_AcceptedThenDuplicate(t *testing.T) {
	app := newTestApp()

	status, body := doCheckin(t, app, "/?clase_id=7&token=abc123", student())
	assert.Equal(t, 201, status)
	assert.Equal(t, string(checkin.OutcomeAccepted), body["outcome"])
	assert.Equal(t, "Historia", body["class"])
	require.NotNil(t, body["attendance"])

	status, body = doCheckin(t, app, "/?clase_id=7&token=abc123", student())
	assert.Equal(t, 409, status)
	assert.Equal(t, string(checkin.OutcomeAlreadyCheckedIn), body["outcome"])
}

func TestCheckin_TeacherForbidden(t *testing.T) {
	app := newTestApp()
	teacher := &models.User{ID: 2, Username: "prof", Name: "Prof", Role: models.RoleTeacher}

	status, body := doCheckin(t, app, "/checkin?clase_id=7&token=abc123", teacher)
	assert.Equal(t, 403, status)
	assert.Equal(t, string(checkin.OutcomeRoleForbidden), body["outcome"])
}

func TestCheckin_StaleToken(t *testing.T) {
	app := newTestApp()

	status, body := doCheckin(t, app, "/?clase_id=7&token=zzz999", student())
	assert.Equal(t, 404, status)
	assert.Equal(t, string(checkin.OutcomeTokenInvalid), body["outcome"])
}

func TestCheckin_MalformedParams(t *testing.T) {
	app := newTestApp()

	tests := []string{
		"/?clase_id=abc&token=abc123",
		"/?clase_id=7",
		"/checkin?token=abc123",
	}
	for _, url := range tests {
		status, body := doCheckin(t, app, url, student())
		assert.Equal(t, 400, status, "url %s", url)
		assert.Equal(t, string(checkin.OutcomeMalformedRequest), body["outcome"], "url %s", url)
	}
}

func TestCheckin_PostAlsoAccepted(t *testing.T) {
	app := newTestApp()

	token, err := auth.GenerateJWT(student())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/checkin?clase_id=7&token=abc123", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 201, resp.StatusCode)
}
