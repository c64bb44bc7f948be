package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/service"
	"github.com/maheshrc27/postsheet/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(s service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	post, err := h.s.Create(c.UserContext(), &req)
	if service.IsValidationError(err) {
		return validationResponse(c, err)
	}
	if err != nil {
		slog.Error("error scheduling post", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to schedule post",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.ScheduleResponse{
		OK:      true,
		Item:    post,
		Message: "Post scheduled and added to Google Sheets",
	})
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.s.List(c.UserContext()))
}

func (h *ScheduleHandler) DeleteSchedule(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.s.Delete(c.UserContext(), id); err != nil {
		slog.Error("partial failure deleting post", "post_id", id, "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"message": "Post deleted successfully",
	})
}

func (h *ScheduleHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req transfer.StatusUpdate
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status is required",
		})
	}

	err := h.s.UpdateStatus(c.UserContext(), id, &req)
	switch {
	case service.IsValidationError(err):
		return validationResponse(c, err)
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Post %s not found", id),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update post status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"message": fmt.Sprintf("Post status updated to %s", req.Status),
	})
}

func (h *ScheduleHandler) PostHistory(c *fiber.Ctx) error {
	phs, err := h.s.History(c.UserContext(), c.Params("id"))
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posting history",
		})
	}
	return c.Status(fiber.StatusOK).JSON(phs)
}
