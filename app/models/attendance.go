package models

import "time"

// AttendanceRecord is one successful check-in. Records are append-only:
// the engine never updates or deletes them, they only disappear when the
// student or class they reference is removed.
type AttendanceRecord struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	CreatedAt time.Time `json:"created_at"`

	Student *User  `json:"student,omitempty"`
	Class   *Class `json:"class,omitempty"`
}
