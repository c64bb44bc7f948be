package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/maheshrc27/postsheet/internal/api/handlers"
	"github.com/maheshrc27/postsheet/internal/api/middleware"
)

type Handlers struct {
	Schedule *handlers.ScheduleHandler
	LinkedIn *handlers.LinkedInHandler
	Secret   *middleware.SecretMiddleware
}

func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		Immutable:    true,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    20 * 1024 * 1024, // inline images
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.ScheduleSecretHeader,
		MaxAge:       3600,
	}))
	return app
}

func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	if h.LinkedIn != nil {
		auth := app.Group("/auth/linkedin")
		auth.Get("/url", h.LinkedIn.AuthURL)
		auth.Post("/callback", h.LinkedIn.Callback)
		auth.Get("/tokens", h.LinkedIn.Tokens)
		auth.Post("/refresh", h.LinkedIn.Refresh)
	}

	api := app.Group("/api")
	api.Post("/schedule", h.Secret.RequireScheduleSecret(), h.Schedule.CreateSchedule)
	api.Get("/schedule", h.Schedule.ListSchedules)
	api.Delete("/schedule/:id", h.Schedule.DeleteSchedule)
	api.Put("/schedule/:id/status", h.Schedule.UpdateStatus)
	api.Get("/schedule/:id/history", h.Schedule.PostHistory)
}
