package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kaspi-sync/internal/application/dto"
	appsync "github.com/jhoicas/kaspi-sync/internal/application/sync"
)

// ControlService comandos y estado que el handler expone del orquestador.
type ControlService interface {
	GenerateNow() error
	SetSchedule(minutes int) error
	Stop() error
	Status() (time.Time, string)
}

// ControlHandler maneja las peticiones HTTP de control del ciclo de sincronización.
type ControlHandler struct {
	svc ControlService
}

// NewControlHandler construye el handler.
func NewControlHandler(svc ControlService) *ControlHandler {
	return &ControlHandler{svc: svc}
}

// Generate encola una regeneración inmediata del feed.
func (h *ControlHandler) Generate(c *fiber.Ctx) error {
	if err := h.svc.GenerateNow(); err != nil {
		return queueError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandResponse{Status: "queued", Message: "regeneración encolada"})
}

// Schedule cambia el intervalo del ciclo automático: /control/schedule?minutes=15
func (h *ControlHandler) Schedule(c *fiber.Ctx) error {
	minutes, err := strconv.Atoi(c.Query("minutes"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro minutes inválido"})
	}
	if err := h.svc.SetSchedule(minutes); err != nil {
		if errors.Is(err, appsync.ErrInvalidInterval) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "minutes debe ser un entero positivo"})
		}
		return queueError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandResponse{Status: "queued", Message: "intervalo actualizado"})
}

// Status devuelve el estado del servicio y del último feed publicado.
func (h *ControlHandler) Status(c *fiber.Ctx) error {
	lastGenerated, lastDigest := h.svc.Status()
	out := dto.StatusResponse{Server: true, LastDigest: lastDigest}
	if !lastGenerated.IsZero() {
		s := lastGenerated.Format(time.RFC3339)
		out.LastGenerated = &s
	}
	return c.JSON(out)
}

// Stop detiene el ciclo de sincronización (el servidor HTTP sigue arriba).
func (h *ControlHandler) Stop(c *fiber.Ctx) error {
	if err := h.svc.Stop(); err != nil {
		return queueError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandResponse{Status: "queued", Message: "detención encolada"})
}

func queueError(c *fiber.Ctx, err error) error {
	if errors.Is(err, appsync.ErrQueueFull) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "QUEUE_FULL", Message: "cola de comandos llena, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
