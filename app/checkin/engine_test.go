package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcruz47/asistenciaqr/app/models"
)

type fakeRegistry struct {
	mu       sync.Mutex
	classes  map[int]*models.Class
	enrolled map[[2]int]bool
	err      error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		classes:  make(map[int]*models.Class),
		enrolled: make(map[[2]int]bool),
	}
}

func (r *fakeRegistry) addClass(c *models.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.ID] = c
}

func (r *fakeRegistry) enroll(studentID, classID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrolled[[2]int{studentID, classID}] = true
}

func (r *fakeRegistry) FindByIDAndToken(ctx context.Context, classID int, token string) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	class, ok := r.classes[classID]
	if !ok || class.QRToken != token {
		return nil, ErrNotFound
	}
	copied := *class
	return &copied, nil
}

func (r *fakeRegistry) IsEnrolled(ctx context.Context, studentID, classID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	return r.enrolled[[2]int{studentID, classID}], nil
}

type fakeLedger struct {
	mu      sync.Mutex
	records map[[2]int]*models.AttendanceRecord
	nextID  int
	err     error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[[2]int]*models.AttendanceRecord)}
}

func (l *fakeLedger) HasRecord(ctx context.Context, studentID, classID int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	_, ok := l.records[[2]int{studentID, classID}]
	return ok, nil
}

func (l *fakeLedger) Append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	key := [2]int{studentID, classID}
	if _, ok := l.records[key]; ok {
		return nil, ErrDuplicate
	}
	l.nextID++
	record := &models.AttendanceRecord{
		ID:        l.nextID,
		StudentID: studentID,
		ClassID:   classID,
		CreatedAt: time.Now(),
	}
	l.records[key] = record
	return record, nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func studentSession(id int) Session {
	return Session{UserID: id, Username: "student", Name: "Student", Role: models.RoleStudent}
}

// newTestEngine builds an engine around class 7 / token "abc123", active,
// with student 42 enrolled and no prior records.
func newTestEngine() (*Engine, *fakeRegistry, *fakeLedger) {
	registry := newFakeRegistry()
	registry.addClass(&models.Class{ID: 7, Name: "Math", TeacherID: 2, QRToken: "abc123", Active: true})
	registry.enroll(42, 7)

	ledger := newFakeLedger()
	return NewEngine(registry, ledger), registry, ledger
}

func TestSubmit_Accepted(t *testing.T) {
	eng, _, ledger := newTestEngine()

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))

	require.Equal(t, OutcomeAccepted, res.Outcome)
	require.NotNil(t, res.Record)
	assert.Equal(t, 42, res.Record.StudentID)
	assert.Equal(t, 7, res.Record.ClassID)
	assert.False(t, res.Record.CreatedAt.IsZero())
	require.NotNil(t, res.Class)
	assert.Equal(t, "Math", res.Class.Name)
	assert.Equal(t, 1, ledger.count())
}

func TestSubmit_MalformedRequest(t *testing.T) {
	eng, _, ledger := newTestEngine()
	sess := studentSession(42)

	tests := []struct {
		name    string
		classID string
		token   string
	}{
		{"missing class id", "", "abc123"},
		{"non-numeric class id", "seven", "abc123"},
		{"negative class id", "-7", "abc123"},
		{"zero class id", "0", "abc123"},
		{"missing token", "7", ""},
		{"blank token", "7", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eng.Submit(context.Background(), Request{ClassID: tt.classID, Token: tt.token}, sess)
			assert.Equal(t, OutcomeMalformedRequest, res.Outcome)
		})
	}

	assert.Zero(t, ledger.count(), "rejections must not append")
}

func TestSubmit_AuthenticationRequired(t *testing.T) {
	eng, _, ledger := newTestEngine()

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, Session{})

	assert.Equal(t, OutcomeAuthenticationRequired, res.Outcome)
	assert.Zero(t, ledger.count())
}

func TestSubmit_RoleForbidden(t *testing.T) {
	eng, _, ledger := newTestEngine()

	for _, role := range []models.Role{models.RoleTeacher, models.RoleAdmin} {
		sess := Session{UserID: 9, Role: role}
		res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, sess)
		assert.Equal(t, OutcomeRoleForbidden, res.Outcome, "role %s", role)
	}
	assert.Zero(t, ledger.count())
}

func TestSubmit_TokenInvalid(t *testing.T) {
	eng, _, ledger := newTestEngine()
	sess := studentSession(42)

	// Wrong token for an existing class and a class that does not exist
	// must be indistinguishable.
	resStale := eng.Submit(context.Background(), Request{ClassID: "7", Token: "zzz999"}, sess)
	resNoClass := eng.Submit(context.Background(), Request{ClassID: "999", Token: "abc123"}, sess)

	assert.Equal(t, OutcomeTokenInvalid, resStale.Outcome)
	assert.Equal(t, OutcomeTokenInvalid, resNoClass.Outcome)
	assert.Equal(t, resStale, resNoClass)
	assert.Zero(t, ledger.count())
}

func TestSubmit_TokenRotationInvalidatesOldLinks(t *testing.T) {
	eng, registry, _ := newTestEngine()
	sess := studentSession(42)

	registry.addClass(&models.Class{ID: 7, Name: "Math", TeacherID: 2, QRToken: "rotated456", Active: true})

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, sess)
	assert.Equal(t, OutcomeTokenInvalid, res.Outcome)

	res = eng.Submit(context.Background(), Request{ClassID: "7", Token: "rotated456"}, sess)
	assert.Equal(t, OutcomeAccepted, res.Outcome)
}

func TestSubmit_ClassInactive(t *testing.T) {
	eng, registry, ledger := newTestEngine()
	registry.addClass(&models.Class{ID: 7, Name: "Math", TeacherID: 2, QRToken: "abc123", Active: false})

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))

	assert.Equal(t, OutcomeClassInactive, res.Outcome)
	assert.Zero(t, ledger.count())
}

func TestSubmit_NotEnrolled(t *testing.T) {
	eng, _, ledger := newTestEngine()

	// Student 43 never enrolled, even though the token is valid and the
	// class is active.
	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(43))

	assert.Equal(t, OutcomeNotEnrolled, res.Outcome)
	assert.Zero(t, ledger.count())
}

func TestSubmit_AlreadyCheckedIn(t *testing.T) {
	eng, _, ledger := newTestEngine()
	sess := studentSession(42)
	req := Request{ClassID: "7", Token: "abc123"}

	first := eng.Submit(context.Background(), req, sess)
	second := eng.Submit(context.Background(), req, sess)

	assert.Equal(t, OutcomeAccepted, first.Outcome)
	assert.Equal(t, OutcomeAlreadyCheckedIn, second.Outcome)
	assert.Equal(t, 1, ledger.count(), "exactly one record after duplicate submission")
}

func TestSubmit_ConcurrentDuplicateScans(t *testing.T) {
	eng, _, ledger := newTestEngine()
	sess := studentSession(42)
	req := Request{ClassID: "7", Token: "abc123"}

	const attempts = 8
	results := make(chan Outcome, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- eng.Submit(context.Background(), req, sess).Outcome
		}()
	}
	wg.Wait()
	close(results)

	accepted, duplicates := 0, 0
	for outcome := range results {
		switch outcome {
		case OutcomeAccepted:
			accepted++
		case OutcomeAlreadyCheckedIn:
			duplicates++
		default:
			t.Fatalf("unexpected outcome %q", outcome)
		}
	}

	assert.Equal(t, 1, accepted, "exactly one scan may win")
	assert.Equal(t, attempts-1, duplicates)
	assert.Equal(t, 1, ledger.count())
}

func TestSubmit_AppendRaceMapsToAlreadyCheckedIn(t *testing.T) {
	// The dedup pre-check passes but the append loses to a concurrent
	// identical record: the caller still just sees AlreadyCheckedIn.
	registry := newFakeRegistry()
	registry.addClass(&models.Class{ID: 7, QRToken: "abc123", Active: true})
	registry.enroll(42, 7)

	eng := NewEngine(registry, &racingLedger{})

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))
	assert.Equal(t, OutcomeAlreadyCheckedIn, res.Outcome)
}

// racingLedger reports no prior record but then refuses the append, the way
// a real store behaves when another request commits in between.
type racingLedger struct{}

func (l *racingLedger) HasRecord(ctx context.Context, studentID, classID int) (bool, error) {
	return false, nil
}

func (l *racingLedger) Append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error) {
	return nil, ErrDuplicate
}

func TestSubmit_StorageUnavailable(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("registry failure", func(t *testing.T) {
		eng, registry, _ := newTestEngine()
		registry.err = boom
		res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))
		assert.Equal(t, OutcomeStorageUnavailable, res.Outcome)
	})

	t.Run("ledger failure", func(t *testing.T) {
		eng, _, ledger := newTestEngine()
		ledger.err = boom
		res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))
		assert.Equal(t, OutcomeStorageUnavailable, res.Outcome)
	})
}

func TestSubmit_PreconditionOrder(t *testing.T) {
	// A request failing several checks at once reports the earliest one:
	// an unauthenticated scan of a rotated token for an inactive class is
	// an authentication problem, nothing else.
	eng, registry, _ := newTestEngine()
	registry.addClass(&models.Class{ID: 7, QRToken: "rotated", Active: false})

	res := eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, Session{})
	assert.Equal(t, OutcomeAuthenticationRequired, res.Outcome)

	// Authenticated teacher: role wins over token/active state.
	res = eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, Session{UserID: 2, Role: models.RoleTeacher})
	assert.Equal(t, OutcomeRoleForbidden, res.Outcome)

	// Student with stale token: token wins over active state.
	res = eng.Submit(context.Background(), Request{ClassID: "7", Token: "abc123"}, studentSession(42))
	assert.Equal(t, OutcomeTokenInvalid, res.Outcome)
}

func TestOutcome_HTTPStatus(t *testing.T) {
	tests := []struct {
		outcome Outcome
		status  int
	}{
		{OutcomeAccepted, 201},
		{OutcomeMalformedRequest, 400},
		{OutcomeAuthenticationRequired, 401},
		{OutcomeRoleForbidden, 403},
		{OutcomeNotEnrolled, 403},
		{OutcomeTokenInvalid, 404},
		{OutcomeClassInactive, 409},
		{OutcomeAlreadyCheckedIn, 409},
		{OutcomeStorageUnavailable, 503},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.outcome.HTTPStatus(), "outcome %s", tt.outcome)
	}
}
