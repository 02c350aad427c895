package main

import (
	"log"
	"os"
	"time"

	"perry-be/internal/constant"
	"perry-be/internal/entity"
	"perry-be/internal/model"
	"perry-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a verified demo account with one starter session so the app is
// usable right after migration.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo data...")

	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "demo@perry.local"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("User %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}
	hashStr := string(hash)
	now := time.Now()

	user := model.User{
		Id:              uuid.New(),
		Email:           email,
		PasswordHash:    &hashStr,
		DisplayName:     "Demo",
		Status:          string(entity.UserStatusActive),
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}

	session := model.ChatSession{
		Id:     uuid.New(),
		UserId: user.Id,
		Title:  constant.DefaultSessionTitle,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	color.Green("Created user %s (password: %s)", email, password)
	color.Green("Created session %s", session.Id)
}
