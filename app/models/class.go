package models

import "time"

// Class is a course with exactly one teacher. QRToken is the bearer secret
// embedded in the class's check-in URL; rotating it invalidates every
// previously printed QR code at once. Active gates check-ins independently
// of the token.
type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	TeacherID int       `json:"teacher_id"`
	QRToken   string    `json:"-"` // exposed only through CheckinURL
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	Teacher         *User  `json:"teacher,omitempty"`
	CheckinURL      string `json:"checkin_url,omitempty"`
	EnrolledCount   int    `json:"enrolled_count,omitempty"`
	AttendanceCount int    `json:"attendance_count,omitempty"`
}

// Enrollment authorizes a student to check into a class. Created once,
// never updated; removed when the student or the class goes away.
type Enrollment struct {
	StudentID int `json:"student_id"`
	ClassID   int `json:"class_id"`
}
