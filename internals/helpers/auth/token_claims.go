package helper

import (
	"errors"
	"fmt"
	"time"

	"biblioteca_backend/internals/configs"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AccessClaims: sub = user id, unique_name = username, roles = daftar role.
type AccessClaims struct {
	UniqueName string   `json:"unique_name"`
	Roles      []string `json:"roles"`
	jwt.RegisteredClaims
}

type TokenSettings struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// SettingsFromEnv mengambil konfigurasi JWT dari paket configs.
func SettingsFromEnv() TokenSettings {
	return TokenSettings{
		Secret:   configs.JWTSecret,
		Issuer:   configs.JWTIssuer,
		Audience: configs.JWTAudience,
		TTL:      configs.JWTDuration,
	}
}

// IssueAccessToken menandatangani token HS256 dan mengembalikan waktu kedaluwarsanya.
func IssueAccessToken(s TokenSettings, userID uuid.UUID, userName string, roles []string, now time.Time) (string, time.Time, error) {
	if s.Secret == "" {
		return "", time.Time{}, errors.New("JWT_SECRET kosong")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := now.Add(ttl).UTC()
	claims := AccessClaims{
		UniqueName: userName,
		Roles:      roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.Issuer,
			Audience:  jwt.ClaimStrings{s.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccessToken memverifikasi signature, exp, issuer dan audience.
func ParseAccessToken(s TokenSettings, raw string) (*AccessClaims, error) {
	if s.Secret == "" {
		return nil, errors.New("JWT_SECRET kosong")
	}
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token tidak valid")
	}
	if s.Issuer != "" && !claims.VerifyIssuer(s.Issuer, true) {
		return nil, errors.New("issuer tidak cocok")
	}
	if s.Audience != "" && !claims.VerifyAudience(s.Audience, true) {
		return nil, errors.New("audience tidak cocok")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errors.New("sub bukan uuid")
	}
	return claims, nil
}
