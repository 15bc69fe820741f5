package middleware

import (
	"strings"

	"github.com/admin-portal/backend/internal/auth"
	"github.com/admin-portal/backend/internal/config"
	"github.com/admin-portal/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CtxActorID     = "actor_id"
	CtxPermissions = "permissions"
)

// AuthMiddleware extracts the acting admin from the bearer token. Handlers
// pass the actor id explicitly into every service call; nothing downstream
// reaches back into the request context for it.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxActorID, claims.AdminID)
		c.Locals(CtxPermissions, claims.Permissions)

		return c.Next()
	}
}

func GetActorID(c *fiber.Ctx) int {
	id, _ := c.Locals(CtxActorID).(int)
	return id
}

func GetPermissions(c *fiber.Ctx) []string {
	perms, _ := c.Locals(CtxPermissions).([]string)
	return perms
}

// RequirePermission gates a route on a permission carried by the token.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetPermissions(c), permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission required: " + permission})
		}
		return c.Next()
	}
}
