package database

import (
	"database/sql"
	"errors"
	"log"
	"os"

	"github.com/jcruz47/asistenciaqr/app/models"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// ErrUsernameTaken is returned when a username collides with an existing user.
var ErrUsernameTaken = errors.New("username already exists")

// ErrTeacherHasClasses blocks deleting a teacher that classes still reference.
var ErrTeacherHasClasses = errors.New("teacher still has classes assigned")

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CreateUser inserts a new user, hashing the plaintext password in
// user.Password before it touches the database.
func CreateUser(db *sql.DB, user *models.User) error {
	hashed, err := hashPassword(user.Password)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, password, name, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`

	err = db.QueryRow(query, user.Username, hashed, user.Name, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return err
	}

	user.Password = hashed
	return nil
}

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password, name, role, created_at
			  FROM users WHERE username = $1`

	err := db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.Name, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *sql.DB, userID int) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password, name, role, created_at
			  FROM users WHERE id = $1`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.Password, &user.Name, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUsersByRole(db *sql.DB, role models.Role) ([]*models.User, error) {
	query := `SELECT id, username, name, role, created_at
			  FROM users WHERE role = $1 ORDER BY name ASC`

	rows, err := db.Query(query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Name, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteTeacher removes a teacher account. Refused while any class still
// references the teacher, so classes never end up without one.
func DeleteTeacher(db *sql.DB, teacherID int) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM classes WHERE teacher_id = $1`, teacherID).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTeacherHasClasses
	}

	result, err := db.Exec(`DELETE FROM users WHERE id = $1 AND role = 'teacher'`, teacherID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// DeleteStudent removes a student together with their enrollments and
// attendance records, in one transaction.
func DeleteStudent(db *sql.DB, studentID int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM attendances WHERE student_id = $1`, studentID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM users WHERE id = $1 AND role = 'student'`, studentID)
	if err != nil {
		return err
	}
	if err := requireRowsAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// EnsureAdminUser creates the bootstrap admin account on first start.
// The password comes from ADMIN_PASSWORD (default admin123) and is hashed
// like any other credential.
func EnsureAdminUser(db *sql.DB) error {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE username = 'admin')`).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &models.User{
		Username: "admin",
		Password: password,
		Name:     "Administrador",
		Role:     models.RoleAdmin,
	}
	if err := CreateUser(db, admin); err != nil {
		return err
	}

	log.Println("Bootstrap admin user created")
	return nil
}

func requireRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
