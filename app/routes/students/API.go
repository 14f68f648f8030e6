package students

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/database"
	"github.com/jcruz47/asistenciaqr/app/models"
)

func GetStudentsAPI(c *fiber.Ctx) error {
	students, err := database.GetUsersByRole(config.GetDB(), models.RoleStudent)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"count":    len(students),
	})
}

func CreateStudentAPI(c *fiber.Ctx) error {
	type CreateStudentRequest struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.Username == "" || req.Name == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username, name and password are required"})
	}

	student := &models.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RoleStudent,
	}

	if err := database.CreateUser(config.GetDB(), student); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return c.Status(409).JSON(fiber.Map{"error": "Username already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create student"})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// DeleteStudentAPI removes a student and, with them, their enrollments and
// attendance records.
func DeleteStudentAPI(c *fiber.Ctx) error {
	studentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	if err := database.DeleteStudent(config.GetDB(), studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete student"})
	}

	return c.JSON(fiber.Map{"message": "Student deleted"})
}

func EnrollStudentAPI(c *fiber.Ctx) error {
	type EnrollRequest struct {
		ClassID int `json:"class_id"`
	}

	studentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil || req.ClassID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "class_id is required"})
	}

	student, err := database.GetUserByID(config.GetDB(), studentID)
	if err != nil || student.Role != models.RoleStudent {
		return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
	}
	if _, err := database.GetClassByID(config.GetDB(), req.ClassID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Class not found"})
	}

	if err := database.EnrollStudent(config.GetDB(), studentID, req.ClassID); err != nil {
		if errors.Is(err, database.ErrAlreadyEnrolled) {
			return c.Status(409).JSON(fiber.Map{"error": "Student is already enrolled in this class"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to enroll student"})
	}

	return c.Status(201).JSON(fiber.Map{
		"message":    "Student enrolled successfully",
		"enrollment": models.Enrollment{StudentID: studentID, ClassID: req.ClassID},
	})
}

// GetMyAttendanceAPI shows the logged-in student their enrolled classes and
// the check-ins they have recorded in each.
func GetMyAttendanceAPI(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	db := config.GetDB()

	classes, err := database.GetClassesByStudent(db, user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch classes"})
	}

	type classAttendance struct {
		Class      *models.Class              `json:"class"`
		Attendance []*models.AttendanceRecord `json:"attendance"`
	}

	out := make([]classAttendance, 0, len(classes))
	for _, class := range classes {
		records, err := database.GetAttendanceByStudentAndClass(db, user.ID, class.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch attendance"})
		}
		// Counts are class-wide; not the student's business.
		class.EnrolledCount = 0
		class.AttendanceCount = 0
		out = append(out, classAttendance{Class: class, Attendance: records})
	}

	return c.JSON(fiber.Map{
		"classes": out,
		"count":   len(out),
	})
}
