package handlers

import (
	"strconv"

	"github.com/admin-portal/backend/internal/http/dto"
	"github.com/admin-portal/backend/internal/models"
	"github.com/admin-portal/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MetaHandler serves reference data the frontend needs to build forms,
// plus the audit trail per entity.
type MetaHandler struct {
	permRepo  *repositories.PermissionRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewMetaHandler(permRepo *repositories.PermissionRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *MetaHandler {
	return &MetaHandler{permRepo: permRepo, auditRepo: auditRepo, log: log}
}

func (h *MetaHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.permRepo.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: perms})
}

func (h *MetaHandler) ListActions(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: []string{
		models.ActionCreate,
		models.ActionUpdate,
		models.ActionDelete,
		models.ActionActivate,
		models.ActionDeactivate,
	}})
}

func (h *MetaHandler) GetAuditLog(c *fiber.Ctx) error {
	entityType := c.Params("kind")
	if !models.IsValidKind(entityType) && entityType != "change_request" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid entity kind"})
	}
	entityID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid entity id"})
	}

	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	logs, err := h.auditRepo.GetByEntity(c.Context(), entityType, entityID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}
