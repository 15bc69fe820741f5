package http

import (
	"time"

	"github.com/admin-portal/backend/internal/config"
	"github.com/admin-portal/backend/internal/http/handlers"
	"github.com/admin-portal/backend/internal/middleware"
	"github.com/admin-portal/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	userHandler *handlers.UserHandler,
	roleHandler *handlers.RoleHandler,
	approvalHandler *handlers.ApprovalHandler,
	metaHandler *handlers.MetaHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// All endpoints require a signed admin token.
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Meta (reference data for forms)
	protected.Get("/meta/permissions", metaHandler.ListPermissions)
	protected.Get("/meta/actions", metaHandler.ListActions)

	// Users (maker side: every mutation opens a change request)
	manageUsers := middleware.RequirePermission(rbac.PermManageUsers)
	protected.Get("/users", userHandler.SearchUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", manageUsers, userHandler.CreateUser)
	protected.Put("/users/:id", manageUsers, userHandler.UpdateUser)
	protected.Delete("/users/:id", manageUsers, userHandler.DeleteUser)
	protected.Post("/users/:id/activate", manageUsers, userHandler.ActivateUser)
	protected.Post("/users/:id/deactivate", manageUsers, userHandler.DeactivateUser)

	// Roles
	manageRoles := middleware.RequirePermission(rbac.PermManageRoles)
	protected.Get("/roles", roleHandler.ListRoles)
	protected.Get("/roles/:id", roleHandler.GetRole)
	protected.Post("/roles", manageRoles, roleHandler.CreateRole)
	protected.Put("/roles/:id", manageRoles, roleHandler.UpdateRole)
	protected.Delete("/roles/:id", manageRoles, roleHandler.DeleteRole)
	protected.Post("/roles/:id/activate", manageRoles, roleHandler.ActivateRole)
	protected.Post("/roles/:id/deactivate", manageRoles, roleHandler.DeactivateRole)

	// Change requests (checker side)
	review := middleware.RequirePermission(rbac.PermReviewRequests)
	protected.Get("/requests", review, approvalHandler.ListRequests)
	protected.Get("/requests/:id", review, approvalHandler.GetRequest)
	protected.Post("/requests/:id/approve", review, approvalHandler.ApproveRequest)
	protected.Post("/requests/:id/reject", review, approvalHandler.RejectRequest)

	// Audit trail
	protected.Get("/audit/:kind/:id", middleware.RequirePermission(rbac.PermViewAuditLog), metaHandler.GetAuditLog)
}
