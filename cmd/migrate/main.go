package main

import (
	"log"
	"os"

	"midgpt-be/internal/model"
	"midgpt-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM Migration...")

	// gen_random_uuid() defaults require pgcrypto.
	color.Yellow("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Red("Error: Failed to create extension: %v", err)
		os.Exit(1)
	}

	color.Yellow("Step 2: Migrating tables...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.Message{},
	); err != nil {
		color.Red("Error: Migration failed: %v", err)
		os.Exit(1)
	}

	color.Green("Migration completed successfully")
}
