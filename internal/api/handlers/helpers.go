package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postsheet/internal/service"
)

func validationResponse(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	msg := "invalid payload"
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
