// Command seeduser creates or refreshes an Admin (or Sub Admin) account.
// Usage: seeduser -email admin@example.com -password secret [-name "Admin"] [-role "Sub Admin"]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/infra"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "admin@crm.local", "account email")
	password := flag.String("password", "", "account password (required)")
	name := flag.String("name", "Admin", "display name")
	roleFlag := flag.String("role", string(authz.RoleAdmin), "Admin or \"Sub Admin\"")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "seeduser: -password is required")
		os.Exit(2)
	}
	role := authz.Role(*roleFlag)
	if !role.FullAccess() {
		fmt.Fprintf(os.Stderr, "seeduser: role %q is not a full-access role\n", role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.NewLogger(cfg)

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	repo := repository.NewUserRepository(db)
	addr := strings.ToLower(strings.TrimSpace(*email))

	u, err := repo.FindByEmail(ctx, addr)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		dept := model.DefaultDepartment
		u = &model.User{
			Name:          *name,
			Email:         addr,
			PasswordHash:  string(hash),
			Role:          string(role),
			Status:        model.UserStatusActive,
			Department:    &dept,
			EmailVerified: true,
		}
		err = repo.Create(ctx, u)
	case err == nil:
		u.Name = *name
		u.PasswordHash = string(hash)
		u.Role = string(role)
		u.Status = model.UserStatusActive
		err = repo.Update(ctx, u)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("seed error")
	}
	fmt.Printf("%s %q (id %d) is ready\n", role, u.Email, u.ID)
}
