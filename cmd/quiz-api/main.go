package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cuestionario-pro/quiz-api/api/swagger"
	"github.com/cuestionario-pro/quiz-api/internal/handler"
	"github.com/cuestionario-pro/quiz-api/internal/middleware"
	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/repository"
	"github.com/cuestionario-pro/quiz-api/internal/service"
	"github.com/cuestionario-pro/quiz-api/pkg/cache"
	"github.com/cuestionario-pro/quiz-api/pkg/config"
	"github.com/cuestionario-pro/quiz-api/pkg/database"
	"github.com/cuestionario-pro/quiz-api/pkg/logger"
	corsmiddleware "github.com/cuestionario-pro/quiz-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cuestionario-pro/quiz-api/pkg/middleware/requestid"
)

// @title Cuestionario Pro API
// @version 1.0.0
// @description Quiz catalog and user management backend
// @BasePath /api/v1
// @schemes http https

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	privilegeRepo := repository.NewPrivilegeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	subcategoryRepo := repository.NewSubcategoryRepository(db)
	difficultyRepo := repository.NewDifficultyRepository(db)
	ageRangeRepo := repository.NewAgeRangeRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, metricsSvc, service.AuthConfig{
		TokenSecret:          cfg.JWT.Secret,
		TokenExpiry:          cfg.JWT.Expiration,
		Issuer:               cfg.JWT.Issuer,
		IncludeInactiveRoles: cfg.RBAC.IncludeInactiveRoles,
	})
	privilegeSvc := service.NewPrivilegeService(privilegeRepo, cacheSvc, logr)
	userSvc := service.NewUserService(userRepo, roleRepo, validate, logr)
	roleSvc := service.NewRoleService(roleRepo, privilegeSvc, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, cacheSvc, validate, logr)
	subcategorySvc := service.NewSubcategoryService(subcategoryRepo, categoryRepo, cacheSvc, validate, logr)
	difficultySvc := service.NewDifficultyService(difficultyRepo, validate, logr)
	ageRangeSvc := service.NewAgeRangeService(ageRangeRepo, validate, logr)
	reportSvc := service.NewReportService(categoryRepo, userRepo, logr, cfg.Reports.Enabled)

	authenticator, err := buildAuthenticator(cfg, authSvc)
	if err != nil {
		logr.Fatal("failed to configure authentication", zap.Error(err))
	}

	router := buildRouter(cfg, logr, authSvc, authenticator, metricsSvc, handlers{
		auth:        handler.NewAuthHandler(authSvc),
		users:       handler.NewUserHandler(userSvc, authSvc),
		roles:       handler.NewRoleHandler(roleSvc),
		privileges:  handler.NewPrivilegeHandler(privilegeSvc),
		categories:  handler.NewCategoryHandler(categorySvc),
		subcats:     handler.NewSubcategoryHandler(subcategorySvc),
		difficulty:  handler.NewDifficultyHandler(difficultySvc),
		ageRanges:   handler.NewAgeRangeHandler(ageRangeSvc),
		reports:     handler.NewReportHandler(reportSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc),
		reportsOn:   reportSvc.Enabled(),
		showSwagger: cfg.Env != config.EnvProduction,
	})

	serve(cfg, logr, router)
}

type handlers struct {
	auth        *handler.AuthHandler
	users       *handler.UserHandler
	roles       *handler.RoleHandler
	privileges  *handler.PrivilegeHandler
	categories  *handler.CategoryHandler
	subcats     *handler.SubcategoryHandler
	difficulty  *handler.DifficultyHandler
	ageRanges   *handler.AgeRangeHandler
	reports     *handler.ReportHandler
	metrics     *handler.MetricsHandler
	reportsOn   bool
	showSwagger bool
}

func buildAuthenticator(cfg *config.Config, authSvc *service.AuthService) (middleware.Authenticator, error) {
	switch cfg.RBAC.Provider {
	case config.AuthProviderReal, "":
		return middleware.NewRealAuthenticator(authSvc), nil
	case config.AuthProviderFake:
		if cfg.Env == config.EnvProduction {
			return nil, fmt.Errorf("fake auth provider is not allowed in production")
		}
		return middleware.NewFakeAuthenticator(devIdentity()), nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", cfg.RBAC.Provider)
	}
}

// devIdentity is the identity the fake provider resolves every request to:
// an active user holding every catalog privilege.
func devIdentity() *models.User {
	privileges := make(models.RolePrivilegeList, 0, len(models.PrivilegeCatalog))
	for _, entry := range models.PrivilegeCatalog {
		privileges = append(privileges, models.RolePrivilege{
			PrivilegeName: entry.Name,
			Description:   entry.Description,
		})
	}

	return &models.User{
		ID:      "00000000-0000-0000-0000-000000000001",
		Name:    "Dev",
		Surname: "Admin",
		Email:   "dev@cuestionario.local",
		Status:  models.StatusActive,
		Roles: []models.Role{{
			ID:         "00000000-0000-0000-0000-000000000002",
			Name:       models.RoleAdministrador,
			Privileges: privileges,
			IsSystem:   true,
			Active:     true,
		}},
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, authenticator middleware.Authenticator, metricsSvc *service.MetricsService, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.metrics.Prometheus)

	if h.showSwagger {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(authenticator))

	authed.GET("/auth/me", h.auth.Me)
	authed.PUT("/auth/password", h.auth.ChangePassword)

	authed.GET("/stats", middleware.RequireAnyPrivilege(authSvc, models.PrivVerReportes), h.metrics.Stats)

	users := authed.Group("/users")
	{
		manage := middleware.RequireAnyPrivilege(authSvc, models.PrivGestionarUsuarios)
		users.GET("", manage, h.users.List)
		users.POST("", manage, h.users.Create)
		users.GET("/:id", middleware.RequireOwnerOrPrivilege(authSvc, "id", models.PrivGestionarUsuarios), h.users.Get)
		users.PUT("/:id", middleware.RequireOwnerOrRole("id", models.RoleAdministrador), h.users.Update)
		users.DELETE("/:id", manage, h.users.Delete)
		users.PUT("/:id/password", middleware.RequireOwnerOrRole("id", models.RoleAdministrador), h.users.SetPassword)
		users.POST("/:id/roles/:roleId", manage, h.users.AssignRole)
		users.DELETE("/:id/roles/:roleId", manage, h.users.RemoveRole)
		users.GET("/:id/privileges", middleware.RequireOwnerOrPrivilege(authSvc, "id", models.PrivGestionarUsuarios, models.PrivGestionarRoles), h.users.Privileges)
		users.POST("/:id/privileges", middleware.RequireAnyPrivilege(authSvc, models.PrivGestionarRoles), h.users.GrantPrivilege)
		users.DELETE("/:id/privileges/:privilege", middleware.RequireAnyPrivilege(authSvc, models.PrivGestionarRoles), h.users.RevokePrivilege)
	}

	roles := authed.Group("/roles")
	roles.Use(middleware.RequireAnyPrivilege(authSvc, models.PrivGestionarRoles))
	{
		roles.GET("", h.roles.List)
		roles.POST("", h.roles.Create)
		roles.GET("/:id", h.roles.Get)
		roles.PUT("/:id", h.roles.Update)
		roles.DELETE("/:id", h.roles.Delete)
		roles.POST("/:id/privileges", h.roles.AddPrivilege)
		roles.DELETE("/:id/privileges/:privilege", h.roles.RemovePrivilege)
		roles.GET("/:id/users", h.roles.Users)
	}

	privileges := authed.Group("/privileges")
	{
		privileges.GET("", h.privileges.List)
		privileges.GET("/grouped", h.privileges.Grouped)
		privileges.GET("/category/:category", h.privileges.ByCategory)
		privileges.GET("/:id", h.privileges.Get)
	}

	manageCatalog := middleware.RequireAnyPrivilege(authSvc, models.PrivGestionarCategorias)

	categories := authed.Group("/categories")
	{
		categories.GET("", h.categories.List)
		categories.GET("/:id", h.categories.Get)
		categories.GET("/:id/stats", h.categories.Stats)
		categories.POST("", manageCatalog, h.categories.Create)
		categories.PUT("/:id", manageCatalog, h.categories.Update)
		categories.DELETE("/:id", manageCatalog, h.categories.Delete)
	}

	subcategories := authed.Group("/subcategories")
	{
		subcategories.GET("", h.subcats.List)
		subcategories.GET("/category/:categoryId", h.subcats.ByCategory)
		subcategories.GET("/category/:categoryId/count", h.subcats.CountByCategory)
		subcategories.GET("/:id", h.subcats.Get)
		subcategories.POST("", manageCatalog, h.subcats.Create)
		subcategories.PUT("/:id", manageCatalog, h.subcats.Update)
		subcategories.DELETE("/:id", manageCatalog, h.subcats.Delete)
	}

	difficulty := authed.Group("/difficulty-levels")
	{
		difficulty.GET("", h.difficulty.List)
		difficulty.GET("/:id", h.difficulty.Get)
		difficulty.POST("", manageCatalog, h.difficulty.Create)
		difficulty.PUT("/:id", manageCatalog, h.difficulty.Update)
		difficulty.DELETE("/:id", manageCatalog, h.difficulty.Delete)
	}

	ageRanges := authed.Group("/age-ranges")
	{
		ageRanges.GET("", h.ageRanges.List)
		ageRanges.GET("/age/:age", h.ageRanges.ForAge)
		ageRanges.GET("/:id", h.ageRanges.Get)
		ageRanges.POST("", manageCatalog, h.ageRanges.Create)
		ageRanges.PUT("/:id", manageCatalog, h.ageRanges.Update)
		ageRanges.DELETE("/:id", manageCatalog, h.ageRanges.Delete)
	}

	if h.reportsOn {
		authed.GET("/reports/:file",
			middleware.RequireAnyPrivilege(authSvc, models.PrivVerReportes),
			middleware.RequireAnyPrivilege(authSvc, models.PrivExportarDatos),
			h.reports.Download)
	}

	return r
}

func serve(cfg *config.Config, logr *zap.Logger, router *gin.Engine) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.TLS.Enabled && !cfg.TLS.HTTP2 {
		// Filling TLSNextProto disables the automatic HTTP/2 upgrade.
		srv.TLSNextProto = map[string]func(*http.Server, *tls.Conn, http.Handler){}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "tls", true, "http2", cfg.TLS.HTTP2)
			errCh <- srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "tls", false)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("shutdown failed", "error", err)
		}
		logr.Info("server stopped")
	}
}
