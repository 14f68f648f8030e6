// Package checkin implements the attendance verification engine: the
// ordered sequence of checks that decides whether a scanned (class, token)
// pair becomes a recorded attendance event.
package checkin

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jcruz47/asistenciaqr/app/models"
)

// ErrNotFound is how a ClassRegistry reports an unknown (id, token) pair.
var ErrNotFound = errors.New("checkin: not found")

// ErrDuplicate is how a Ledger reports an append that lost the race against
// an identical record.
var ErrDuplicate = errors.New("checkin: duplicate record")

// ClassRegistry is the class/enrollment store the engine consults.
// FindByIDAndToken must match the *current* token only; a rotated token is
// invalid the instant rotation commits.
type ClassRegistry interface {
	FindByIDAndToken(ctx context.Context, classID int, token string) (*models.Class, error)
	IsEnrolled(ctx context.Context, studentID, classID int) (bool, error)
}

// Ledger is the append-only attendance store. Append must be atomic with
// respect to concurrent appends for the same (student, class): at most one
// succeeds, the rest return ErrDuplicate.
type Ledger interface {
	HasRecord(ctx context.Context, studentID, classID int) (bool, error)
	Append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error)
}

// Request carries the two query parameters of a scanned check-in URL,
// still as raw strings.
type Request struct {
	ClassID string
	Token   string
}

// Engine evaluates check-in submissions. Safe for concurrent use.
type Engine struct {
	Registry ClassRegistry
	Ledger   Ledger

	// Timeout bounds each storage call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds individual storage calls made during a submission.
const DefaultTimeout = 5 * time.Second

func NewEngine(registry ClassRegistry, ledger Ledger) *Engine {
	return &Engine{Registry: registry, Ledger: ledger}
}

// Submit runs the verification sequence for one scanned (class, token) pair
// under the given session. Checks run in a fixed order and short-circuit on
// the first failure; the only side effect is a single ledger append when
// every check passes. The dedup policy is one record ever per
// (student, class).
func (e *Engine) Submit(ctx context.Context, req Request, sess Session) Result {
	classID, ok := parseClassID(req.ClassID)
	if !ok || strings.TrimSpace(req.Token) == "" {
		return Result{Outcome: OutcomeMalformedRequest}
	}

	if !sess.Authenticated() {
		return Result{Outcome: OutcomeAuthenticationRequired}
	}

	if sess.Role != models.RoleStudent {
		return Result{Outcome: OutcomeRoleForbidden}
	}

	class, err := e.findClass(ctx, classID, req.Token)
	if errors.Is(err, ErrNotFound) {
		return Result{Outcome: OutcomeTokenInvalid}
	}
	if err != nil {
		return e.storageFailure("class lookup", err)
	}

	if !class.Active {
		return Result{Outcome: OutcomeClassInactive, Class: class}
	}

	enrolled, err := e.isEnrolled(ctx, sess.UserID, class.ID)
	if err != nil {
		return e.storageFailure("enrollment check", err)
	}
	if !enrolled {
		return Result{Outcome: OutcomeNotEnrolled, Class: class}
	}

	exists, err := e.hasRecord(ctx, sess.UserID, class.ID)
	if err != nil {
		return e.storageFailure("dedup check", err)
	}
	if exists {
		return Result{Outcome: OutcomeAlreadyCheckedIn, Class: class}
	}

	record, err := e.append(ctx, sess.UserID, class.ID)
	if errors.Is(err, ErrDuplicate) {
		// Lost the race against a simultaneous scan by the same student.
		return Result{Outcome: OutcomeAlreadyCheckedIn, Class: class}
	}
	if err != nil {
		return e.storageFailure("ledger append", err)
	}

	return Result{Outcome: OutcomeAccepted, Record: record, Class: class}
}

func parseClassID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (e *Engine) findClass(ctx context.Context, classID int, token string) (*models.Class, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.Registry.FindByIDAndToken(ctx, classID, token)
}

func (e *Engine) isEnrolled(ctx context.Context, studentID, classID int) (bool, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.Registry.IsEnrolled(ctx, studentID, classID)
}

func (e *Engine) hasRecord(ctx context.Context, studentID, classID int) (bool, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.Ledger.HasRecord(ctx, studentID, classID)
}

func (e *Engine) append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.Ledger.Append(ctx, studentID, classID)
}

func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storageFailure logs the underlying error with detail; the user only ever
// sees the generic StorageUnavailable message.
func (e *Engine) storageFailure(step string, err error) Result {
	log.Printf("checkin: %s failed: %v", step, err)
	return Result{Outcome: OutcomeStorageUnavailable}
}
