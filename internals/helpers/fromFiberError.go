package helper

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError menulis error hasil service/Transaction sebagai JSON standar.
// Pesan error 5xx tidak dibocorkan ke client.
func FromFiberError(c *fiber.Ctx, err error) error {
	status := StatusFromError(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	if status >= fiber.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		return JsonError(c, status, "Error interno del servidor")
	}
	if status == fiber.StatusConflict && IsUniqueViolation(err) {
		return JsonError(c, status, "El registro ya existe")
	}
	return JsonError(c, status, err.Error())
}

// FromUpdateError sama seperti FromFiberError, tapi konflik konkurensi
// dijawab 400 (jalur update status).
func FromUpdateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrConcurrencyConflict) {
		return JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return FromFiberError(c, err)
}
