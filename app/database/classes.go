package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jcruz47/asistenciaqr/app/models"
)

// ErrClassNameTaken is returned when a class name collides with an existing class.
var ErrClassNameTaken = errors.New("class name already exists")

// ErrAlreadyEnrolled is returned when enrolling a student twice in the same class.
var ErrAlreadyEnrolled = errors.New("student already enrolled in class")

func CreateClass(db *sql.DB, class *models.Class) error {
	query := `INSERT INTO classes (name, teacher_id, qr_token)
			  VALUES ($1, $2, $3)
			  RETURNING id, active, created_at`

	err := db.QueryRow(query, class.Name, class.TeacherID, class.QRToken).
		Scan(&class.ID, &class.Active, &class.CreatedAt)
	if isUniqueViolation(err) {
		return ErrClassNameTaken
	}
	return err
}

func GetClassByID(db *sql.DB, classID int) (*models.Class, error) {
	class := &models.Class{}
	query := `SELECT id, name, teacher_id, qr_token, active, created_at
			  FROM classes WHERE id = $1`

	err := db.QueryRow(query, classID).Scan(
		&class.ID, &class.Name, &class.TeacherID, &class.QRToken, &class.Active, &class.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return class, nil
}

// GetClassByIDAndToken resolves a scanned (class id, token) pair against the
// current token. One query on purpose: an unknown class and a stale token
// are indistinguishable to the caller, so a scan leaks nothing about which
// half was wrong.
func GetClassByIDAndToken(ctx context.Context, db *sql.DB, classID int, token string) (*models.Class, error) {
	class := &models.Class{}
	query := `SELECT c.id, c.name, c.teacher_id, c.qr_token, c.active, c.created_at
			  FROM classes c
			  WHERE c.id = $1 AND c.qr_token = $2`

	err := db.QueryRowContext(ctx, query, classID, token).Scan(
		&class.ID, &class.Name, &class.TeacherID, &class.QRToken, &class.Active, &class.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return class, nil
}

// GetAllClasses lists every class with its teacher and counts, active first.
func GetAllClasses(db *sql.DB) ([]*models.Class, error) {
	query := `SELECT c.id, c.name, c.teacher_id, c.qr_token, c.active, c.created_at,
					 u.name,
					 (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id),
					 (SELECT COUNT(*) FROM attendances a WHERE a.class_id = c.id)
			  FROM classes c
			  JOIN users u ON c.teacher_id = u.id
			  ORDER BY c.active DESC, c.created_at DESC`

	return scanClassRows(db, query)
}

// GetClassesByTeacher lists the classes one teacher owns, active first.
func GetClassesByTeacher(db *sql.DB, teacherID int) ([]*models.Class, error) {
	query := `SELECT c.id, c.name, c.teacher_id, c.qr_token, c.active, c.created_at,
					 u.name,
					 (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id),
					 (SELECT COUNT(*) FROM attendances a WHERE a.class_id = c.id)
			  FROM classes c
			  JOIN users u ON c.teacher_id = u.id
			  WHERE c.teacher_id = $1
			  ORDER BY c.active DESC, c.created_at DESC`

	return scanClassRows(db, query, teacherID)
}

func scanClassRows(db *sql.DB, query string, args ...interface{}) ([]*models.Class, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		class := &models.Class{Teacher: &models.User{}}
		if err := rows.Scan(
			&class.ID, &class.Name, &class.TeacherID, &class.QRToken, &class.Active, &class.CreatedAt,
			&class.Teacher.Name, &class.EnrolledCount, &class.AttendanceCount,
		); err != nil {
			return nil, err
		}
		class.Teacher.ID = class.TeacherID
		class.Teacher.Role = models.RoleTeacher
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// RotateClassToken replaces the class token. From the instant this commits,
// every previously issued QR code for the class is dead, including scans
// already in flight.
func RotateClassToken(db *sql.DB, classID int, newToken string) error {
	result, err := db.Exec(`UPDATE classes SET qr_token = $1 WHERE id = $2`, newToken, classID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

func SetClassActive(db *sql.DB, classID int, active bool) error {
	result, err := db.Exec(`UPDATE classes SET active = $1 WHERE id = $2`, active, classID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// DeleteClass removes a class with its enrollments and attendance records.
func DeleteClass(db *sql.DB, classID int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM attendances WHERE class_id = $1`, classID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM enrollments WHERE class_id = $1`, classID); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return err
	}
	if err := requireRowsAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// EnrollStudent records that a student may attend a class. Enrolling twice
// is reported as ErrAlreadyEnrolled, not a silent no-op.
func EnrollStudent(db *sql.DB, studentID, classID int) error {
	_, err := db.Exec(
		`INSERT INTO enrollments (student_id, class_id) VALUES ($1, $2)`,
		studentID, classID,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyEnrolled
	}
	return err
}

func IsEnrolled(ctx context.Context, db *sql.DB, studentID, classID int) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2)`,
		studentID, classID,
	).Scan(&exists)
	return exists, err
}

// GetClassesByStudent lists the classes a student is enrolled in, with the
// teacher's name, ordered by class name.
func GetClassesByStudent(db *sql.DB, studentID int) ([]*models.Class, error) {
	query := `SELECT c.id, c.name, c.teacher_id, c.qr_token, c.active, c.created_at,
					 u.name,
					 (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id),
					 (SELECT COUNT(*) FROM attendances a WHERE a.class_id = c.id)
			  FROM enrollments en
			  JOIN classes c ON en.class_id = c.id
			  JOIN users u ON c.teacher_id = u.id
			  WHERE en.student_id = $1
			  ORDER BY c.name ASC`

	return scanClassRows(db, query, studentID)
}
