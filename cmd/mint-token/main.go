package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/repository"
	"github.com/cuestionario-pro/quiz-api/internal/service"
	"github.com/cuestionario-pro/quiz-api/pkg/config"
	"github.com/cuestionario-pro/quiz-api/pkg/database"
)

// Prints a signed access token for the given user email. Useful for
// exercising protected endpoints from scripts and manual testing.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <email>\n", os.Args[0])
		os.Exit(1)
	}
	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fail("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, validator.New(), zap.NewNop(), nil, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		fail("failed to find user %s: %v", email, err)
	}

	hydrated, err := userRepo.FindByIDWithRoles(ctx, user.ID)
	if err != nil {
		fail("failed to load roles for %s: %v", email, err)
	}

	token, err := authSvc.IssueToken(hydrated)
	if err != nil {
		fail("failed to sign token: %v", err)
	}

	fmt.Println(token)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
