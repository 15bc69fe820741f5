package handlers

import (
	"context"
	"strconv"

	"github.com/admin-portal/backend/internal/http/dto"
	"github.com/admin-portal/backend/internal/middleware"
	"github.com/admin-portal/backend/internal/models"
	"github.com/admin-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleService *services.RoleService
	log         *zap.Logger
}

func NewRoleHandler(roleService *services.RoleService, log *zap.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, log: log}
}

func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	actorID := middleware.GetActorID(c)
	cr, err := h.roleService.RequestCreate(c.Context(), actorID, models.RolePayload{
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid role id"})
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	actorID := middleware.GetActorID(c)
	cr, err := h.roleService.RequestUpdate(c.Context(), actorID, id, models.RolePayload{
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *RoleHandler) DeleteRole(c *fiber.Ctx) error {
	return h.snapshotAction(c, h.roleService.RequestDelete)
}

func (h *RoleHandler) ActivateRole(c *fiber.Ctx) error {
	return h.snapshotAction(c, h.roleService.RequestActivate)
}

func (h *RoleHandler) DeactivateRole(c *fiber.Ctx) error {
	return h.snapshotAction(c, h.roleService.RequestDeactivate)
}

func (h *RoleHandler) snapshotAction(c *fiber.Ctx, submit func(ctx context.Context, actorID, roleID int) (*models.ChangeRequest, error)) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid role id"})
	}

	cr, err := submit(c.Context(), middleware.GetActorID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid role id"})
	}

	role, err := h.roleService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: role})
}

func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
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

	roles, err := h.roleService.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: roles})
}
