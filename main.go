package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/jcruz47/asistenciaqr/app/checkin"
	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/database"
	authroutes "github.com/jcruz47/asistenciaqr/app/routes/auth"
	checkinroutes "github.com/jcruz47/asistenciaqr/app/routes/checkin"
	"github.com/jcruz47/asistenciaqr/app/routes/classes"
	"github.com/jcruz47/asistenciaqr/app/routes/students"
	"github.com/jcruz47/asistenciaqr/app/routes/teachers"
)

// errorHandler keeps every error response in the same JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := config.InitDB(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer config.CloseDB()

	db := config.GetDB()
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	if err := database.EnsureAdminUser(db); err != nil {
		log.Fatal("Failed to ensure admin user: ", err)
	}

	engine := checkin.NewEngine(
		&checkin.PostgresRegistry{DB: db},
		&checkin.PostgresLedger{DB: db},
	)

	app := fiber.New(fiber.Config{
		AppName:      "asistenciaqr",
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup check-in routes (includes the QR landing URL at /)
	checkinroutes.SetupCheckinRoutes(app, engine)

	// Setup auth routes
	authroutes.SetupAuthRoutes(app)

	// Setup management routes
	classes.SetupClassesRoutes(app)
	teachers.SetupTeachersRoutes(app)
	students.SetupStudentsRoutes(app)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server starting on :" + port)
	log.Fatal(app.Listen(":" + port))
}
