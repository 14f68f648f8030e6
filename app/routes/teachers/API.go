package teachers

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/database"
	"github.com/jcruz47/asistenciaqr/app/models"
)

func GetTeachersAPI(c *fiber.Ctx) error {
	teachers, err := database.GetUsersByRole(config.GetDB(), models.RoleTeacher)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"count":    len(teachers),
	})
}

func CreateTeacherAPI(c *fiber.Ctx) error {
	type CreateTeacherRequest struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.Username == "" || req.Name == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username, name and password are required"})
	}

	teacher := &models.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RoleTeacher,
	}

	if err := database.CreateUser(config.GetDB(), teacher); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return c.Status(409).JSON(fiber.Map{"error": "Username already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create teacher"})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Teacher created successfully",
		"teacher": teacher,
	})
}

// DeleteTeacherAPI removes a teacher, unless classes still reference them.
func DeleteTeacherAPI(c *fiber.Ctx) error {
	teacherID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid teacher ID"})
	}

	if err := database.DeleteTeacher(config.GetDB(), teacherID); err != nil {
		if errors.Is(err, database.ErrTeacherHasClasses) {
			return c.Status(409).JSON(fiber.Map{"error": "Cannot delete: teacher still has classes assigned"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete teacher"})
	}

	return c.JSON(fiber.Map{"message": "Teacher deleted"})
}
