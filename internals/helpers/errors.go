package helper

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kategori error yang dipahami layer HTTP. Error domain membungkus salah satu
// sentinel ini dengan %w.
var (
	ErrNotFound            = errors.New("no encontrado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrValidation          = errors.New("datos no válidos")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrConcurrencyConflict = errors.New("el registro fue modificado por otra operación")
)

// StatusFromError memetakan error ke status HTTP.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict
	}

	if code, ok := pgErrorCode(err); ok {
		switch code {
		case "23505": // unique_violation
			return http.StatusConflict
		case "23503", "23514", "22P02": // fk, check, invalid text repr
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func pgErrorCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// IsUniqueViolation: 23505 dari driver mana pun.
func IsUniqueViolation(err error) bool {
	code, ok := pgErrorCode(err)
	return ok && code == "23505"
}
