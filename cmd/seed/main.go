package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/repository"
	"github.com/cuestionario-pro/quiz-api/pkg/config"
	"github.com/cuestionario-pro/quiz-api/pkg/database"
	"github.com/cuestionario-pro/quiz-api/pkg/logger"
)

// Seeds the privilege catalog, the three system roles and the bootstrap
// administrator account. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	privilegeRepo := repository.NewPrivilegeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)

	for _, entry := range models.PrivilegeCatalog {
		if err := privilegeRepo.Upsert(ctx, entry); err != nil {
			logr.Fatal("failed to seed privilege", zap.String("name", string(entry.Name)), zap.Error(err))
		}
	}
	logr.Info("privilege catalog seeded", zap.Int("count", len(models.PrivilegeCatalog)))

	adminRole, err := seedRoles(ctx, roleRepo, logr)
	if err != nil {
		logr.Fatal("failed to seed roles", zap.Error(err))
	}

	if err := seedAdmin(ctx, userRepo, adminRole, cfg.Seed, logr); err != nil {
		logr.Fatal("failed to seed admin user", zap.Error(err))
	}

	logr.Info("seed complete")
}

func systemRoles() []models.Role {
	all := make(models.RolePrivilegeList, 0, len(models.PrivilegeCatalog))
	for _, entry := range models.PrivilegeCatalog {
		all = append(all, models.RolePrivilege{PrivilegeName: entry.Name, Description: entry.Description})
	}

	return []models.Role{
		{
			Name:        models.RoleAdministrador,
			Description: "Acceso completo al sistema",
			Privileges:  all,
			IsSystem:    true,
			Active:      true,
		},
		{
			Name:        models.RoleEditorPreguntas,
			Description: "Gestion del banco de preguntas",
			Privileges: privilegeList(
				models.PrivCrearPreguntas,
				models.PrivEditarPreguntas,
				models.PrivEliminarPreguntas,
				models.PrivPublicarPreguntas,
				models.PrivRevisarPreguntas,
				models.PrivGestionarCategorias,
			),
			IsSystem: true,
			Active:   true,
		},
		{
			Name:        models.RoleGestorExamenes,
			Description: "Gestion y calificacion de examenes",
			Privileges: privilegeList(
				models.PrivCrearExamenes,
				models.PrivEditarExamenes,
				models.PrivEliminarExamenes,
				models.PrivVerExamenes,
				models.PrivCalificarExamenes,
			),
			IsSystem: true,
			Active:   true,
		},
	}
}

func privilegeList(names ...models.PrivilegeName) models.RolePrivilegeList {
	list := make(models.RolePrivilegeList, 0, len(names))
	for _, name := range names {
		description, _ := models.DescribePrivilege(name)
		list = append(list, models.RolePrivilege{PrivilegeName: name, Description: description})
	}
	return list
}

func seedRoles(ctx context.Context, repo *repository.RoleRepository, logr *zap.Logger) (*models.Role, error) {
	var admin *models.Role

	for _, role := range systemRoles() {
		existing, err := repo.FindByName(ctx, role.Name)
		if err == nil {
			logr.Info("role already present", zap.String("name", role.Name))
			if role.Name == models.RoleAdministrador {
				admin = existing
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		role := role
		role.ID = uuid.NewString()
		if err := repo.Create(ctx, &role); err != nil {
			return nil, err
		}
		logr.Info("role created", zap.String("name", role.Name))
		if role.Name == models.RoleAdministrador {
			admin = &role
		}
	}

	return admin, nil
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, adminRole *models.Role, seed config.SeedConfig, logr *zap.Logger) error {
	if _, err := repo.FindByEmail(ctx, seed.AdminEmail); err == nil {
		logr.Info("admin user already present", zap.String("email", seed.AdminEmail))
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         "Admin",
		Surname:      "Sistema",
		Email:        seed.AdminEmail,
		PasswordHash: string(hash),
		Status:       models.StatusActive,
		RegisteredAt: time.Now().UTC(),
	}

	if err := repo.Create(ctx, admin); err != nil {
		return err
	}

	if adminRole != nil {
		if err := repo.AssignRole(ctx, admin.ID, adminRole.ID); err != nil {
			return err
		}
	}

	logr.Info("admin user created", zap.String("email", admin.Email))
	return nil
}
