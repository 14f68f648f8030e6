package checkin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jcruz47/asistenciaqr/app/database"
	"github.com/jcruz47/asistenciaqr/app/models"
)

// PostgresRegistry backs ClassRegistry with the classes/enrollments tables.
type PostgresRegistry struct {
	DB *sql.DB
}

func (r *PostgresRegistry) FindByIDAndToken(ctx context.Context, classID int, token string) (*models.Class, error) {
	class, err := database.GetClassByIDAndToken(ctx, r.DB, classID, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (r *PostgresRegistry) IsEnrolled(ctx context.Context, studentID, classID int) (bool, error) {
	return database.IsEnrolled(ctx, r.DB, studentID, classID)
}

// PostgresLedger backs Ledger with the attendances table. Append atomicity
// comes from the table's unique (student_id, class_id) pair.
type PostgresLedger struct {
	DB *sql.DB
}

func (l *PostgresLedger) HasRecord(ctx context.Context, studentID, classID int) (bool, error) {
	return database.HasAttendance(ctx, l.DB, studentID, classID)
}

func (l *PostgresLedger) Append(ctx context.Context, studentID, classID int) (*models.AttendanceRecord, error) {
	record, err := database.AppendAttendance(ctx, l.DB, studentID, classID)
	if errors.Is(err, database.ErrDuplicateAttendance) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}
