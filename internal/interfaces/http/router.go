package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Control   ControlService
	FeedPath  string // ruta en disco del XML primario
	JWTSecret string // vacío = endpoints de control abiertos
	AppName   string
}

// Router registra las rutas del servicio.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Feed publicado. Si aún no existe, SendFile responde 404.
	app.Get("/xml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
		return c.SendFile(deps.FeedPath)
	})

	control := app.Group("/control")
	if deps.JWTSecret != "" {
		control.Use(AuthMiddleware(deps.JWTSecret))
	}
	handler := NewControlHandler(deps.Control)
	control.Get("/generate", handler.Generate)
	control.Get("/schedule", handler.Schedule)
	control.Get("/status", handler.Status)
	control.Post("/stop", handler.Stop)
}
