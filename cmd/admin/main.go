// Package main provides account role utilities for the portal.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>          - Promote user to admin")
		fmt.Println("  go run ./cmd/admin set-role <user_id> <role>  - Set USER, REPORTER or ADMIN")
		fmt.Println("  go run ./cmd/admin demote <user_id>           - Demote user to USER")
		fmt.Println("  go run ./cmd/admin list [role]                - List accounts by role (default ADMIN)")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		requireArgs(3, "promote <user_id>")
		setRole(db, os.Args[2], models.RoleAdmin)

	case "demote":
		requireArgs(3, "demote <user_id>")
		setRole(db, os.Args[2], models.RoleUser)

	case "set-role":
		requireArgs(4, "set-role <user_id> <role>")
		setRole(db, os.Args[2], models.Role(strings.ToUpper(os.Args[3])))

	case "list":
		role := models.RoleAdmin
		if len(os.Args) > 2 {
			role = models.Role(strings.ToUpper(os.Args[2]))
		}
		listByRole(db, role)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func requireArgs(n int, usage string) {
	if len(os.Args) < n {
		fmt.Println("Usage: go run ./cmd/admin " + usage)
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, userID string, role models.Role) {
	if !role.Valid() {
		fmt.Printf("Unknown role %q\n", role)
		os.Exit(1)
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	if err := db.Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	fmt.Printf("✅ %s (ID: %d) is now %s\n", user.Username, user.ID, role)
}

func listByRole(db *gorm.DB, role models.Role) {
	var users []models.User
	if err := db.Where("role = ?", role).Order("id").Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	if len(users) == 0 {
		fmt.Printf("No %s accounts found\n", role)
		return
	}

	fmt.Printf("\n📋 %s accounts:\n", role)
	fmt.Println("─────────────────────────────────────")
	for _, u := range users {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
