package helper

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

var (
	ErrPasswordTooShort = errors.New("la contraseña debe tener al menos 6 caracteres")
	ErrPasswordNoLower  = errors.New("la contraseña debe contener al menos una letra minúscula")
)

// ValidatePassword: minimal 6 karakter dan ada huruf kecil.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if !strings.ContainsFunc(pw, unicode.IsLower) {
		return ErrPasswordNoLower
	}
	return nil
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPasswordHash(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
