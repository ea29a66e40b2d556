package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	JWTDuration    time.Duration
	GoogleClientID string

	// Tarif denda per hari keterlambatan
	FineRatePerDay decimal.Decimal
)

const (
	defaultJWTIssuer   = "biblioteca-api"
	defaultJWTAudience = "biblioteca-clients"
	defaultJWTMinutes  = 60
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env tidak ditemukan, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	Apply()

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
	if GoogleClientID == "" {
		log.Println("⚠️ GOOGLE_CLIENT_ID kosong, login Google nonaktif")
	}
}

// Apply membaca ulang ENV ke variabel paket (dipakai juga oleh test).
func Apply() {
	JWTSecret = GetEnv("JWT_SECRET")
	JWTIssuer = GetEnv("JWT_ISSUER", defaultJWTIssuer)
	JWTAudience = GetEnv("JWT_AUDIENCE", defaultJWTAudience)
	JWTDuration = time.Duration(GetEnvInt("JWT_DURATION_MINUTES", defaultJWTMinutes)) * time.Minute
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	FineRatePerDay = GetEnvDecimal("FINE_RATE_PER_DAY", decimal.NewFromInt(1))
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️ %s=%q tidak valid, pakai default %d", key, v, def)
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func GetEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		log.Printf("⚠️ %s=%q tidak valid, pakai default %s", key, v, def.String())
		return def
	}
	return d
}
