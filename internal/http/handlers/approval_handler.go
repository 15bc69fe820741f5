package handlers

import (
	"strconv"

	"github.com/admin-portal/backend/internal/http/dto"
	"github.com/admin-portal/backend/internal/middleware"
	"github.com/admin-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ApprovalHandler struct {
	approvalService *services.ApprovalService
	log             *zap.Logger
}

func NewApprovalHandler(approvalService *services.ApprovalService, log *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService, log: log}
}

func (h *ApprovalHandler) ApproveRequest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}

	cr, err := h.approvalService.Approve(c.Context(), middleware.GetActorID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *ApprovalHandler) RejectRequest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}

	cr, err := h.approvalService.Reject(c.Context(), middleware.GetActorID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *ApprovalHandler) GetRequest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}

	cr, err := h.approvalService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cr})
}

func (h *ApprovalHandler) ListRequests(c *fiber.Ctx) error {
	limit, offset := 20, 0
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

	requests, err := h.approvalService.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: requests})
}
