package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/database"
	"github.com/evalhub/evalhub-backend/internal/logger"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin Account ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		Email:        email,
		Name:         name,
		Role:         model.RoleAdmin,
		PasswordHash: string(hashedPassword),
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin account")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", admin.Name, admin.Email, admin.ID)
}
