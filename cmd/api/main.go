package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/admin-portal/backend/internal/config"
	"github.com/admin-portal/backend/internal/db"
	"github.com/admin-portal/backend/internal/events"
	apphttp "github.com/admin-portal/backend/internal/http"
	"github.com/admin-portal/backend/internal/http/handlers"
	"github.com/admin-portal/backend/internal/repositories"
	"github.com/admin-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permRepo := repositories.NewPermissionRepo(pool)
	requestRepo := repositories.NewChangeRequestRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)

	// Services
	runner := db.Runner{Pool: pool}
	userService := services.NewUserService(userRepo, roleRepo, requestRepo, auditRepo, runner, publisher, log)
	roleService := services.NewRoleService(roleRepo, userRepo, requestRepo, auditRepo, runner, publisher, log)
	approvalService := services.NewApprovalService(userRepo, roleRepo, permRepo, requestRepo, auditRepo, runner, publisher, log)

	// Handlers
	userHandler := handlers.NewUserHandler(userService, log)
	roleHandler := handlers.NewRoleHandler(roleService, log)
	approvalHandler := handlers.NewApprovalHandler(approvalService, log)
	metaHandler := handlers.NewMetaHandler(permRepo, auditRepo, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, userHandler, roleHandler, approvalHandler, metaHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
