package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates the schema on startup if it is missing.
// The UNIQUE (student_id, class_id) pair on attendances is load-bearing:
// it is what makes the check-then-insert of a check-in atomic under
// concurrent duplicate scans.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('admin', 'teacher', 'student')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			id SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			teacher_id INTEGER NOT NULL REFERENCES users(id),
			qr_token TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			student_id INTEGER NOT NULL REFERENCES users(id),
			class_id INTEGER NOT NULL REFERENCES classes(id),
			PRIMARY KEY (student_id, class_id)
		)`,
		`CREATE TABLE IF NOT EXISTS attendances (
			id SERIAL PRIMARY KEY,
			student_id INTEGER NOT NULL REFERENCES users(id),
			class_id INTEGER NOT NULL REFERENCES classes(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (student_id, class_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("Migration failed: %v", err)
			return err
		}
	}

	log.Println("Database migrations completed")
	return nil
}
