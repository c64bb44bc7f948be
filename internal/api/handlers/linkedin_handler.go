package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/service"
	"github.com/maheshrc27/postsheet/internal/transfer"
)

type LinkedInHandler struct {
	ls service.LinkedInService
}

func NewLinkedInHandler(ls service.LinkedInService) *LinkedInHandler {
	return &LinkedInHandler{ls: ls}
}

func (h *LinkedInHandler) AuthURL(c *fiber.Ctx) error {
	authURL, err := h.ls.GetAuthURL(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(transfer.LinkedInAuthURL{AuthURL: authURL})
}

func (h *LinkedInHandler) Callback(c *fiber.Ctx) error {
	var cb transfer.LinkedInCallback
	if err := c.BodyParser(&cb); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization code is required",
		})
	}

	token, err := h.ls.HandleCallback(c.UserContext(), &cb)
	if service.IsValidationError(err) {
		return validationResponse(c, err)
	}
	if err != nil {
		slog.Error("linkedin oauth error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete LinkedIn authentication",
		})
	}
	return c.Status(fiber.StatusOK).JSON(token)
}

func (h *LinkedInHandler) Tokens(c *fiber.Ctx) error {
	token, err := h.ls.Tokens(c.UserContext())
	switch {
	case errors.Is(err, repository.ErrTokenNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No tokens found"})
	case errors.Is(err, service.ErrTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token expired"})
	case err != nil:
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tokens"})
	}
	return c.Status(fiber.StatusOK).JSON(token)
}

func (h *LinkedInHandler) Refresh(c *fiber.Ctx) error {
	token, err := h.ls.Refresh(c.UserContext())
	if errors.Is(err, repository.ErrTokenNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No tokens found"})
	}
	if err != nil {
		slog.Error("linkedin refresh error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to refresh tokens"})
	}
	return c.Status(fiber.StatusOK).JSON(token)
}
