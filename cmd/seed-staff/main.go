// Provisioning tool to create or update staff accounts
// cmd/seed-staff/main.go
package main

import (
	"flag"
	"log"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/models"
	"citizen-portal-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "", "login name (required)")
	email := flag.String("email", "", "email address (required)")
	password := flag.String("password", "", "initial password (required)")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	department := flag.String("department", "Bürgeramt", "department")
	role := flag.Int("role", models.RoleProcessor, "role id (1=processor, 2=supervisor, 3=admin)")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		log.Fatal("username, email and password are required")
	}
	if *role != models.RoleProcessor && *role != models.RoleSupervisor && *role != models.RoleAdmin {
		log.Fatalf("unknown role id %d", *role)
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()

	var existing models.User
	err = config.DB.Where("username = ?", *username).First(&existing).Error
	if err == nil {
		existing.Password = hashed
		existing.Email = *email
		existing.RoleID = *role
		existing.IsActive = true
		existing.UpdateAt = &now
		if err := config.DB.Save(&existing).Error; err != nil {
			log.Fatal("Failed to update user:", err)
		}
		log.Printf("Updated existing staff account %s\n", *username)
		return
	}

	user := models.User{
		Username:   *username,
		Email:      *email,
		Password:   hashed,
		FirstName:  *firstName,
		LastName:   *lastName,
		Department: *department,
		RoleID:     *role,
		IsActive:   true,
		CreateAt:   &now,
		UpdateAt:   &now,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create user:", err)
	}

	log.Printf("Created staff account %s (role %d)\n", *username, *role)
}
