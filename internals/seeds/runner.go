package seeds

import (
	"context"
	"log"
	"time"

	users "biblioteca_backend/internals/seeds/users/auth"

	"gorm.io/gorm"
)

// RunAllSeeds: error hanya di-log, server tetap jalan.
func RunAllSeeds(db *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	//* Admin
	if err := users.SeedAdmin(ctx, db, users.DefaultAdmin()); err != nil {
		log.Printf("❌ Seed admin gagal: %v", err)
	}
}
