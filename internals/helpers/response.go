package helper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Validate menjalankan validator.v10 untuk struct DTO.
func Validate(v any) error {
	return validate.Struct(v)
}

// ✅ Khusus error validasi (validator.v10)
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return JsonValidationError(c, FieldErrors(ve))
}

// FieldErrors: map nama field → pesan.
func FieldErrors(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := strings.ToLower(fe.Field())
		out[name] = append(out[name], describeTag(fe))
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "max":
		return fmt.Sprintf("longitud máxima %s", fe.Param())
	case "min":
		return fmt.Sprintf("valor mínimo %s", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("debe ser <= %s", fe.Param())
	case "email":
		return "email no válido"
	case "uuid", "uuid4":
		return "uuid no válido"
	default:
		return fe.Tag()
	}
}

// ParseAndValidate: BodyParser + Validate, response langsung ditulis kalau gagal.
// ok=false berarti response sudah dikirim.
func ParseAndValidate(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "Payload no válido")
	}
	if err := Validate(dst); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}
