package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jcruz47/asistenciaqr/app/models"
)

// ErrDuplicateAttendance is returned when an append hits the unique
// (student_id, class_id) constraint, i.e. the student already checked in.
var ErrDuplicateAttendance = errors.New("attendance already recorded")

func HasAttendance(ctx context.Context, db *sql.DB, studentID, classID int) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendances WHERE student_id = $1 AND class_id = $2)`,
		studentID, classID,
	).Scan(&exists)
	return exists, err
}

// AppendAttendance inserts one attendance record. ON CONFLICT DO NOTHING
// plus the unique pair makes this the atomic half of check-then-insert: of
// two racing duplicate scans exactly one gets a row back, the other gets
// ErrDuplicateAttendance.
func AppendAttendance(ctx context.Context, db *sql.DB, studentID, classID int) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{
		StudentID: studentID,
		ClassID:   classID,
	}

	query := `INSERT INTO attendances (student_id, class_id)
			  VALUES ($1, $2)
			  ON CONFLICT (student_id, class_id) DO NOTHING
			  RETURNING id, created_at`

	err := db.QueryRowContext(ctx, query, studentID, classID).
		Scan(&record.ID, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicateAttendance
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetAttendanceByStudentAndClass lists a student's check-ins for one class,
// newest first.
func GetAttendanceByStudentAndClass(db *sql.DB, studentID, classID int) ([]*models.AttendanceRecord, error) {
	query := `SELECT id, student_id, class_id, created_at
			  FROM attendances
			  WHERE student_id = $1 AND class_id = $2
			  ORDER BY created_at DESC`

	rows, err := db.Query(query, studentID, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AttendanceRecord
	for rows.Next() {
		record := &models.AttendanceRecord{}
		if err := rows.Scan(&record.ID, &record.StudentID, &record.ClassID, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAttendanceByClass lists every check-in for a class with the student's
// name, newest first. Used by teachers reviewing a roster.
func GetAttendanceByClass(db *sql.DB, classID int) ([]*models.AttendanceRecord, error) {
	query := `SELECT a.id, a.student_id, a.class_id, a.created_at, u.name, u.username
			  FROM attendances a
			  JOIN users u ON a.student_id = u.id
			  WHERE a.class_id = $1
			  ORDER BY a.created_at DESC`

	rows, err := db.Query(query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AttendanceRecord
	for rows.Next() {
		record := &models.AttendanceRecord{Student: &models.User{Role: models.RoleStudent}}
		if err := rows.Scan(
			&record.ID, &record.StudentID, &record.ClassID, &record.CreatedAt,
			&record.Student.Name, &record.Student.Username,
		); err != nil {
			return nil, err
		}
		record.Student.ID = record.StudentID
		records = append(records, record)
	}
	return records, rows.Err()
}
