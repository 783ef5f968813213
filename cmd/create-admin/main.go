package main

import (
	"flag"
	"fmt"
	"os"

	"fundledger/internal/config"
	"fundledger/internal/database"
	"fundledger/internal/logger"
	"fundledger/internal/models"
	"fundledger/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("create-admin error: %v", err)
	}
}

func run() error {
	email := flag.String("email", "", "operator email (required)")
	name := flag.String("name", "", "operator full name")
	role := flag.String("role", string(models.RoleAdmin), "admin or viewer")
	flag.Parse()

	// The password comes from ADMIN_PASSWORD, never from a flag.
	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		return fmt.Errorf("usage: ADMIN_PASSWORD=... create-admin -email <email> [-name <name>] [-role admin|viewer]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	user, err := services.NewUserService(dbManager.DB()).CreateUser(*email, password, *name, models.Role(*role))
	if err != nil {
		return err
	}

	logger.Get().Infow("operator created", "id", user.ID, "email", user.Email, "role", user.Role)
	return nil
}
