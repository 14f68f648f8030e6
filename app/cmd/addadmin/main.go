// Command addadmin creates a user account from the command line, for
// seeding environments where nobody can log in yet.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/database"
	"github.com/jcruz47/asistenciaqr/app/models"
)

func main() {
	username := flag.String("username", "", "login username (required)")
	name := flag.String("name", "", "display name (required)")
	password := flag.String("password", "", "plaintext password, hashed before storage (required)")
	role := flag.String("role", "admin", "admin, teacher or student")
	flag.Parse()

	if *username == "" || *name == "" || *password == "" {
		flag.Usage()
		log.Fatal("username, name and password are required")
	}

	userRole := models.Role(*role)
	if !userRole.Valid() {
		log.Fatalf("invalid role %q", *role)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	if err := config.InitDB(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer config.CloseDB()

	user := &models.User{
		Username: *username,
		Password: *password,
		Name:     *name,
		Role:     userRole,
	}

	if err := database.CreateUser(config.GetDB(), user); err != nil {
		log.Fatal("Failed to create user: ", err)
	}

	fmt.Printf("User created: %s (%s, id=%d)\n", user.Name, user.Role, user.ID)
}
