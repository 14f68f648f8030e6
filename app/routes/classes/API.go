package classes

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/database"
	"github.com/jcruz47/asistenciaqr/app/models"
)

func GetClassesAPI(c *fiber.Ctx) error {
	classes, err := database.GetAllClasses(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch classes"})
	}

	return c.JSON(fiber.Map{
		"classes": withCheckinURLs(classes),
		"count":   len(classes),
	})
}

func CreateClassAPI(c *fiber.Ctx) error {
	type CreateClassRequest struct {
		Name      string `json:"name"`
		TeacherID int    `json:"teacher_id"`
	}

	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Class name is required"})
	}

	teacher, err := database.GetUserByID(config.GetDB(), req.TeacherID)
	if err != nil || teacher.Role != models.RoleTeacher {
		return c.Status(400).JSON(fiber.Map{"error": "teacher_id must reference an existing teacher"})
	}

	token, err := GenerateToken()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate class token"})
	}

	class := &models.Class{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		QRToken:   token,
	}

	if err := database.CreateClass(config.GetDB(), class); err != nil {
		if errors.Is(err, database.ErrClassNameTaken) {
			return c.Status(409).JSON(fiber.Map{"error": "A class with that name already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create class"})
	}

	class.Teacher = teacher
	class.CheckinURL = CheckinURL(class.ID, class.QRToken)

	return c.Status(201).JSON(fiber.Map{
		"message": "Class created successfully",
		"class":   class,
	})
}

func GetClassAPI(c *fiber.Ctx) error {
	class, ok := resolveClass(c)
	if !ok {
		return nil
	}

	records, err := database.GetAttendanceByClass(config.GetDB(), class.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch attendance"})
	}

	class.CheckinURL = CheckinURL(class.ID, class.QRToken)
	class.AttendanceCount = len(records)

	return c.JSON(fiber.Map{
		"class":      class,
		"attendance": records,
	})
}

// RotateClassTokenAPI issues a new token, invalidating every QR code
// printed for the previous one.
func RotateClassTokenAPI(c *fiber.Ctx) error {
	class, ok := resolveClass(c)
	if !ok {
		return nil
	}

	token, err := GenerateToken()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate class token"})
	}

	if err := database.RotateClassToken(config.GetDB(), class.ID, token); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to rotate token"})
	}

	class.QRToken = token
	class.CheckinURL = CheckinURL(class.ID, token)

	return c.JSON(fiber.Map{
		"message": "Token rotated, previous QR codes are no longer valid",
		"class":   class,
	})
}

// SetClassActiveAPI toggles whether the class accepts check-ins. Rotation
// and activation are independent: deactivating keeps the current token.
func SetClassActiveAPI(c *fiber.Ctx) error {
	type ActivateRequest struct {
		Active bool `json:"active"`
	}

	class, ok := resolveClass(c)
	if !ok {
		return nil
	}

	var req ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if err := database.SetClassActive(config.GetDB(), class.ID, req.Active); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update class"})
	}

	class.Active = req.Active
	class.CheckinURL = CheckinURL(class.ID, class.QRToken)

	return c.JSON(fiber.Map{
		"message": "Class updated",
		"class":   class,
	})
}

func DeleteClassAPI(c *fiber.Ctx) error {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid class ID"})
	}

	if err := database.DeleteClass(config.GetDB(), classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Class not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete class"})
	}

	return c.JSON(fiber.Map{"message": "Class deleted"})
}

// GetMyClassesAPI lists the classes the logged-in teacher owns, with their
// check-in URLs and counts.
func GetMyClassesAPI(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	classes, err := database.GetClassesByTeacher(config.GetDB(), user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch classes"})
	}

	return c.JSON(fiber.Map{
		"classes": withCheckinURLs(classes),
		"count":   len(classes),
	})
}

// resolveClass loads the :id class and enforces ownership: admins may touch
// any class, teachers only their own. On failure the response is already
// written and ok is false.
func resolveClass(c *fiber.Ctx) (*models.Class, bool) {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		c.Status(400).JSON(fiber.Map{"error": "Invalid class ID"})
		return nil, false
	}

	class, err := database.GetClassByID(config.GetDB(), classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.Status(404).JSON(fiber.Map{"error": "Class not found"})
		} else {
			c.Status(500).JSON(fiber.Map{"error": "Failed to fetch class"})
		}
		return nil, false
	}

	user := c.Locals("user").(*models.User)
	if user.Role != models.RoleAdmin && class.TeacherID != user.ID {
		c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
		return nil, false
	}

	return class, true
}
