package controller

import (
	"github.com/gofiber/fiber/v2"
)

const ServiceName = "fitai-planner-be"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
}

type healthController struct {
	version string
}

func NewHealthController(version string) IHealthController {
	return &healthController{version: version}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":  "healthy",
			"service": ServiceName,
			"version": c.version,
		})
	})
}
