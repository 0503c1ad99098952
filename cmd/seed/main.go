package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/project-tracker-api/config"
	"github.com/oksasatya/project-tracker-api/internal/container"
	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker-api/internal/domain/repository"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
)

// seed creates a verified demo account so login works without a mail provider.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// seeding never sends mail
	cfg.MailSendEnabled = false
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	email := "demo@example.com"
	password := "password123"
	name := "Demo User"

	hash, err := helpers.HashPasswordCost(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Email: email, Name: name, Password: hash, IsEmailVerified: true}
	err = c.Users.Create(ctx, u)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		existing, gerr := c.Users.GetByEmail(ctx, email)
		if gerr != nil {
			log.Fatalf("failed to load existing user: %v", gerr)
		}
		if !existing.IsEmailVerified {
			if err := c.Users.SetVerified(ctx, existing.ID); err != nil {
				log.Fatalf("failed to verify existing user: %v", err)
			}
		}
		fmt.Printf("user already present: id=%s email=%s\n", existing.ID, email)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}

	if c.UserIndex != nil {
		if err := c.UserIndex.IndexUser(ctx, u); err != nil {
			logger.WithError(err).Warn("failed to index seeded user")
		}
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID, email, name, password)
}
